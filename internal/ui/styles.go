package ui

import (
	"github.com/charmbracelet/lipgloss"

	"threef/internal/canvas"
)

type styles struct {
	header   lipgloss.Style
	form     lipgloss.Style
	function lipgloss.Style
	feeling  lipgloss.Style
	focused  lipgloss.Style
	handle   lipgloss.Style
	path     lipgloss.Style
	pending  lipgloss.Style
	preview  lipgloss.Style

	panel      lipgloss.Style
	panelTitle lipgloss.Style
	selected   lipgloss.Style
	muted      lipgloss.Style
	status     lipgloss.Style
	errorText  lipgloss.Style
	success    lipgloss.Style
	alert      lipgloss.Style
	modal      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		form:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		function: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		feeling:  lipgloss.NewStyle().Foreground(lipgloss.Color("170")),
		focused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		handle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		path:     lipgloss.NewStyle().Foreground(lipgloss.Color("109")),
		pending:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		preview:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		panel:      lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(lipgloss.Color("240")),
		panelTitle: lipgloss.NewStyle().Bold(true),
		selected:   lipgloss.NewStyle().Reverse(true),
		muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		status:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		errorText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		success:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		alert:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("124")).Padding(0, 1),
		modal:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
	}
}

// paint styles one run of equally tagged canvas cells.
func (s styles) paint(k canvas.Kind, text string) string {
	switch k {
	case canvas.KindHeader:
		return s.header.Render(text)
	case canvas.KindForm:
		return s.form.Render(text)
	case canvas.KindFunction:
		return s.function.Render(text)
	case canvas.KindFeeling:
		return s.feeling.Render(text)
	case canvas.KindFocused:
		return s.focused.Render(text)
	case canvas.KindHandle:
		return s.handle.Render(text)
	case canvas.KindPath:
		return s.path.Render(text)
	case canvas.KindPending:
		return s.pending.Render(text)
	case canvas.KindPreview:
		return s.preview.Render(text)
	}
	return text
}
