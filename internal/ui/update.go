package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"threef/internal/config"
	"threef/internal/workspace"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	// a drag only lives in normal mode
	if next.mode != ModeNormal || next.help {
		next.board.Drag.Cancel()
	}
	if next.width > 0 {
		next.refresh()
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(msg.Width / 2)
		m.settings.Width = msg.Width / 2
		m.renderReport()
		return m, nil

	case tickMsg:
		return m, m.tick()

	case spinner.TickMsg:
		if !m.busy.Held() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConfigMsg:
		m.applyConfig(msg.Config)
		return m, nil

	case polishDoneMsg:
		return m.finishPolish(msg), nil

	case auditDoneMsg:
		return m.finishAudit(msg), nil

	case tea.MouseMsg:
		if m.mode != ModeNormal || m.help {
			return m, nil
		}
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.help {
			return m.handleHelpKey(msg.String()), nil
		}
		switch m.mode {
		case ModeAlert:
			m.mode = m.alertReturn
			m.alertReturn = ModeNormal
			m.alert = ""
			return m, nil
		case ModeConfirm:
			return m.handleConfirmKey(msg.String())
		case ModeEditing:
			return m.handleEditingKey(msg)
		case ModeSettings:
			return m.handleSettingsKey(msg)
		default:
			return m.handleNormalKey(msg.String())
		}
	}
	return m, nil
}

func (m Model) handleNormalKey(key string) (Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "?":
		m.help = true
		m.helpScroll = 0
	case "tab":
		m.cycleFocus(1)
	case "shift+tab":
		m.cycleFocus(-1)
	case "h", "j", "k", "l", "left", "right", "up", "down":
		m.handleNavigation(key)
	case "enter", "e":
		m.startEditing(m.focused)
	case "1", "2", "3":
		m.addEntry(workspace.Categories[key[0]-'1'])
	case "p":
		return m.startPolish()
	case "a":
		return m.startAudit()
	case "s":
		m.submit()
	case ",":
		m.mode = ModeSettings
		m.settings.SetValue("")
		m.settings.Focus()
	case "R":
		m.confirm(ConfirmReset)
	case "q":
		m.confirm(ConfirmQuit)
		if m.mode != ModeConfirm {
			return m, tea.Quit
		}
	case "y":
		m.copyFocused()
	case "P":
		return m.pasteFocused()
	case "E":
		m.export("txt")
	case "X":
		m.export("png")
	case "V":
		m.export("svg")
	case "x":
		m.dismissSuggestion()
	case "[":
		m.selectSuggestion(-1)
	case "]":
		m.selectSuggestion(1)
	case "D":
		m.addDetail()
	case "esc":
		m.board.Drag.Cancel()
	}
	return m, nil
}

// confirm asks before a destructive action, unless confirmations are off.
// Connection removal always asks.
func (m *Model) confirm(action ConfirmAction) {
	if action != ConfirmDeleteConnection && !m.cfg.Confirmations {
		if action == ConfirmReset {
			m.resetWorkspace()
		}
		return
	}
	m.mode = ModeConfirm
	m.confirmAction = action
}

func (m Model) handleConfirmKey(key string) (Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmDeleteConnection:
			if c, ok := m.board.Connections.ConfirmRemoval(); ok {
				m.log.Info("connection removed", zap.String("connection", c.String()))
				m.successMessage = "Connection deleted"
			}
		case ConfirmReset:
			m.resetWorkspace()
		case ConfirmQuit:
			return m, tea.Quit
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
		if m.confirmAction == ConfirmDeleteConnection {
			m.board.Connections.CancelRemoval()
		}
	}
	return m, nil
}

func (m *Model) resetWorkspace() {
	m.board.Reset()
	m.ensureFocus()
	m.selected = 0
	m.report = ""
	m.successMessage = "Workspace reset"
}

func (m Model) handleHelpKey(key string) Model {
	switch key {
	case "j", "down":
		if m.helpScroll < len(helpLines)-1 {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m
}

func (m *Model) startEditing(id string) {
	e, ok := m.board.Entries.Entry(id)
	if !ok {
		return
	}
	m.focused = id
	m.editing = id
	m.editor.SetValue(e.Content)
	m.editor.Focus()
	m.mode = ModeEditing
}

func (m Model) handleEditingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editor.Blur()
		m.mode = ModeNormal
		m.editing = ""
		return m, nil
	case "ctrl+s":
		m.editor.Blur()
		m.mode = ModeNormal
		id := m.editing
		m.editing = ""
		return m.saveContent(id, m.editor.Value())
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// saveContent stores an edit and runs the content-change hooks: offline
// triggers without a credential, auto-polish with one.
func (m Model) saveContent(id, text string) (Model, tea.Cmd) {
	changed, err := m.board.SetContent(id, text)
	if err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	if !changed {
		return m, nil
	}
	cat, _ := m.board.Entries.CategoryOf(id)

	if !m.cfg.HasCredential() {
		for _, s := range m.triggers.Check(cat, text) {
			m.board.Suggestions.Prepend(s)
			m.selected = 0
		}
		return m, nil
	}
	if m.cfg.AutoPolish && !m.busy.Held() && m.debounce.Allow(m.now()) {
		return m.startPolish()
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.settings.Blur()
		m.mode = ModeNormal
		return m, nil
	case "enter":
		m.settings.Blur()
		m.mode = ModeNormal
		m.saveCredential(m.settings.Value())
		m.settings.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.settings, cmd = m.settings.Update(msg)
	return m, cmd
}

func (m *Model) saveCredential(key string) {
	key = strings.TrimSpace(key)
	if m.cfgPath == "" {
		m.cfg.APIKey = key
		m.successMessage = "API key set for this session"
		return
	}
	c, err := config.SaveCredential(m.cfgPath, key)
	if err != nil {
		m.errorMessage = fmt.Sprintf("Saving API key: %v", err)
		return
	}
	m.applyConfig(c)
	m.successMessage = "API key saved"
}

func (m *Model) addEntry(cat workspace.Category) {
	e, err := m.board.AddEntry(cat)
	if errors.Is(err, workspace.ErrCategoryFull) {
		m.errorMessage = fmt.Sprintf("%s already has %d entries", cat.Label(), workspace.MaxPerCategory)
		return
	}
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.focused = e.ID
}
