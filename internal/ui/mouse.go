package ui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"threef/internal/canvas"
	"threef/internal/connect"
	"threef/internal/workspace"
)

// handleMouse drives the drag gesture: press on a handle begins it, motion
// moves the preview, release over a handle tries to connect. Invalid drops
// are ignored without a message.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if m.layout == nil {
		return m
	}
	p := connect.Point{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		if h, ok := m.layout.HandleAt(msg.X, msg.Y); ok {
			if err := m.board.Drag.Begin(h); err != nil {
				m.log.Debug("drag ignored", zap.Error(err))
			}
			return m
		}
		if b, ok := m.layout.BoxAt(msg.X, msg.Y); ok {
			m.focused = b.EntryID
			return m
		}
		if c, ok := canvas.PathAt(m.paths, msg.X, msg.Y); ok {
			if m.board.Connections.RequestRemoval(c) {
				m.confirm(ConfirmDeleteConnection)
			}
		}

	case tea.MouseActionMotion:
		m.board.Drag.Update(p)

	case tea.MouseActionRelease:
		if !m.board.Drag.Active() {
			return m
		}
		var candidate *workspace.Handle
		if h, ok := m.layout.HandleAt(msg.X, msg.Y); ok {
			candidate = &h
		}
		if c, ok := m.board.Drag.End(p, candidate); ok {
			m.successMessage = "Connected " + m.entryLabel(c.From.EntryID) + " to " + m.entryLabel(c.To.EntryID)
		}
	}
	return m
}

// entryLabel names an entry as "Form 2".
func (m Model) entryLabel(id string) string {
	cat, ok := m.board.Entries.CategoryOf(id)
	if !ok {
		return id
	}
	for i, e := range m.board.Entries.Entries(cat) {
		if e.ID == id {
			return cat.Label() + " " + strconv.Itoa(i+1)
		}
	}
	return cat.Label()
}
