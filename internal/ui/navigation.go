package ui

import (
	"threef/internal/workspace"
)

// position of the focused entry as (column, row).
func (m *Model) focusPosition() (int, int) {
	for col, cat := range workspace.Categories {
		for row, e := range m.board.Entries.Entries(cat) {
			if e.ID == m.focused {
				return col, row
			}
		}
	}
	return 0, 0
}

func (m *Model) focusAt(col, row int) {
	if col < 0 {
		col = 0
	}
	if col >= len(workspace.Categories) {
		col = len(workspace.Categories) - 1
	}
	entries := m.board.Entries.Entries(workspace.Categories[col])
	if len(entries) == 0 {
		return
	}
	if row >= len(entries) {
		row = len(entries) - 1
	}
	if row < 0 {
		row = 0
	}
	m.focused = entries[row].ID
}

func (m *Model) handleNavigation(key string) {
	col, row := m.focusPosition()
	switch key {
	case "h", "left":
		m.focusAt(col-1, row)
	case "l", "right":
		m.focusAt(col+1, row)
	case "k", "up":
		m.focusAt(col, row-1)
	case "j", "down":
		m.focusAt(col, row+1)
	}
}

// cycleFocus moves through entries in column order, wrapping around.
func (m *Model) cycleFocus(step int) {
	all := m.board.Entries.All()
	if len(all) == 0 {
		return
	}
	idx := 0
	for i, e := range all {
		if e.ID == m.focused {
			idx = i
			break
		}
	}
	idx = (idx + step + len(all)) % len(all)
	m.focused = all[idx].ID
}

// ensureFocus points focus at a live entry after entries were removed.
func (m *Model) ensureFocus() {
	if m.board.Entries.Has(m.focused) {
		return
	}
	m.focused = m.board.Entries.All()[0].ID
}
