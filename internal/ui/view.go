package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"threef/internal/canvas"
)

var helpLines = []string{
	"threef help",
	"===========",
	"",
	"Entries:",
	"--------",
	"  tab / shift+tab   Cycle the focused entry",
	"  h/j/k/l, arrows   Move focus between columns and rows",
	"  enter / e         Edit the focused entry (ctrl+s saves, esc cancels)",
	"  1 / 2 / 3         Add a Form / Function / Feeling entry (3 at most)",
	"  y                 Copy the focused entry",
	"  P                 Paste the clipboard into the focused entry",
	"",
	"Connections:",
	"------------",
	"  drag ▶ to ◀       Connect Form to Function, or Function to Feeling",
	"  click a line      Delete that connection (asks first)",
	"  esc               Cancel a drag",
	"",
	"Assistant:",
	"----------",
	"  p                 Ask for a clarifying question",
	"  a                 Audit the reflection",
	"  [ / ]             Select a suggestion",
	"  D                 Add detail for the selected suggestion",
	"  x                 Dismiss the selected suggestion",
	"  ,                 Set the API key",
	"",
	"General:",
	"--------",
	"  s                 Submit (after a passing audit)",
	"  E / X / V         Export the canvas as text / PNG / SVG",
	"  R                 Reset the workspace",
	"  ?                 Toggle this help screen",
	"  q / ctrl+c        Quit",
}

func (m Model) View() string {
	if m.width == 0 || m.layout == nil {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	var result strings.Builder
	result.WriteString(strings.Join(m.canvasLines(), "\n"))
	result.WriteString("\n")
	result.WriteString(m.panelView())
	result.WriteString("\n")
	result.WriteString(m.statusLine())
	return result.String()
}

func (m Model) canvasLines() []string {
	scene := canvas.Scene{Layout: m.layout, Paths: m.paths, Focused: m.focused}
	if c, ok := m.board.Connections.Pending(); ok {
		scene.Pending = &c
	}
	if source, ok := m.board.Drag.Source(); ok {
		pointer, moved := m.board.Drag.Pointer()
		if p, ok := m.renderer.Preview(m.layout, source, pointer, moved); ok {
			scene.Preview = &p
		}
	}
	return canvas.Render(scene).Styled(m.styles.paint)
}

func (m Model) panelView() string {
	var body string
	switch m.mode {
	case ModeAlert:
		body = m.styles.alert.Render(m.alert) + "\n" + m.styles.muted.Render("press any key")
	case ModeEditing:
		title := "Editing " + m.entryLabel(m.editing) + "  (ctrl+s save, esc cancel)"
		body = m.styles.panelTitle.Render(title) + "\n" + m.editor.View()
	case ModeSettings:
		body = m.styles.modal.Render(
			m.styles.panelTitle.Render("API key") + "\n" + m.settings.View() + "\n" +
				m.styles.muted.Render("enter save, esc close"))
	default:
		half := m.width / 2
		left := lipgloss.NewStyle().Width(half).Render(m.suggestionsView(half))
		right := lipgloss.NewStyle().Width(m.width - half).Render(m.report)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}
	return m.styles.panel.Width(m.width).Render(clipLines(body, panelRows-1))
}

func (m Model) suggestionsView(width int) string {
	list := m.board.Suggestions.List()
	var lines []string
	lines = append(lines, m.styles.panelTitle.Render(fmt.Sprintf("Suggestions (%d)", len(list))))
	if len(list) == 0 {
		lines = append(lines, m.styles.muted.Render("none yet, press p to ask"))
	}
	for i, s := range list {
		text := s.Text
		if s.Category != "" {
			text = "[" + s.Category.Label() + "] " + text
		}
		if limit := width - 3; limit > 1 && len([]rune(text)) > limit {
			text = string([]rune(text)[:limit-1]) + "…"
		}
		if i == m.selected {
			lines = append(lines, m.styles.selected.Render("> "+text))
		} else {
			lines = append(lines, "  "+text)
		}
	}
	return strings.Join(lines, "\n")
}

// clipLines keeps the panel at a fixed height so the canvas never moves.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) statusLine() string {
	if m.mode == ModeConfirm {
		return m.styles.status.Render("Mode: CONFIRM | " + m.confirmAction.prompt())
	}

	submit := "locked"
	if m.board.Gate.CanSubmit() {
		submit = "ready"
	}
	status := fmt.Sprintf("Mode: %s | Focus: %s | Connections: %d | Submit: %s",
		m.mode, m.entryLabel(m.focused), m.board.Connections.Len(), submit)
	if !m.cfg.HasCredential() {
		status += " | offline"
	}
	if m.busyLabel != "" {
		status += " | " + m.spinner.View() + " " + m.busyLabel + "..."
	}
	if m.board.Drag.Active() {
		status += " | Connecting (release on a handle)"
	}

	line := m.styles.status.Render(status)
	switch {
	case m.errorMessage != "":
		line += m.styles.errorText.Render(" | ERROR: " + m.errorMessage)
	case m.successMessage != "":
		line += m.styles.success.Render(" | " + m.successMessage)
	default:
		line += m.styles.muted.Render(" | ? for help | q to quit")
	}
	return line
}

func (m Model) helpView() string {
	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	start := m.helpScroll
	if start > len(helpLines)-1 {
		start = len(helpLines) - 1
	}
	end := start + visible
	if end > len(helpLines) {
		end = len(helpLines)
	}
	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, any other key to close",
		start+1, end, len(helpLines))
	return strings.Join(helpLines[start:end], "\n") + "\n" + status
}
