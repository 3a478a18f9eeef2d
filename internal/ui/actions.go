package ui

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"threef/internal/assist"
	"threef/internal/board"
	"threef/internal/canvas"
	"threef/internal/config"
	"threef/internal/workspace"
)

const noCredential = "No API key configured. Press , to add one."

// showAlert takes over the panel until the next key press. An open editor
// or settings prompt comes back once the alert is dismissed; a pending
// confirmation is abandoned.
func (m *Model) showAlert(text string) {
	switch m.mode {
	case ModeEditing, ModeSettings:
		m.alertReturn = m.mode
	case ModeConfirm:
		if m.confirmAction == ConfirmDeleteConnection {
			m.board.Connections.CancelRemoval()
		}
		m.alertReturn = ModeNormal
	case ModeNormal:
		m.alertReturn = ModeNormal
	}
	m.board.Drag.Cancel()
	m.mode = ModeAlert
	m.alert = text
}

// generator acquires the busy flag and builds a backend. ok is false when
// the call must not go out; the reason is already on screen.
func (m *Model) generator() (assist.Generator, bool) {
	if !m.cfg.HasCredential() {
		m.showAlert(noCredential)
		return nil, false
	}
	if !m.busy.TryAcquire() {
		m.errorMessage = "The assistant is still working"
		return nil, false
	}
	gen, err := m.newGenerator(m.cfg)
	if err != nil {
		m.busy.Release()
		m.showAlert(fmt.Sprintf("Assistant unavailable: %v", err))
		return nil, false
	}
	return gen, true
}

func (m Model) startPolish() (Model, tea.Cmd) {
	gen, ok := m.generator()
	if !ok {
		return m, nil
	}
	m.busyLabel = "Polishing"
	texts := assist.TextsFrom(m.board.Entries)
	timeout := m.cfg.Timeout.D()
	log := m.log
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Info("polish requested")
		text, err := assist.Polish(ctx, gen, texts, 0)
		return polishDoneMsg{text: text, err: err}
	})
}

func (m Model) finishPolish(msg polishDoneMsg) Model {
	m.busy.Release()
	m.busyLabel = ""
	if msg.err != nil {
		m.log.Warn("polish failed", zap.Error(msg.err))
		m.showAlert(fmt.Sprintf("Polish failed: %v", msg.err))
		return m
	}
	if msg.text == "" {
		m.successMessage = "No suggestion this time"
		return m
	}
	m.board.Suggestions.Prepend(workspace.Suggestion{Text: msg.text, Source: workspace.SourceAI})
	m.selected = 0
	return m
}

func (m Model) startAudit() (Model, tea.Cmd) {
	if missing := m.board.Entries.Missing(); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, cat := range missing {
			labels[i] = cat.Label()
		}
		m.showAlert(fmt.Sprintf("Fill in %s before running an audit.", strings.Join(labels, ", ")))
		return m, nil
	}
	gen, ok := m.generator()
	if !ok {
		return m, nil
	}
	m.busyLabel = "Auditing"
	texts := assist.TextsFrom(m.board.Entries)
	timeout := m.cfg.Timeout.D()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := assist.Audit(ctx, gen, texts)
		return auditDoneMsg{texts: texts, result: res, err: err}
	})
}

func (m Model) finishAudit(msg auditDoneMsg) Model {
	m.busy.Release()
	m.busyLabel = ""
	if msg.err != nil {
		m.log.Warn("audit failed", zap.Error(msg.err))
		m.showAlert(fmt.Sprintf("Audit failed: %v", msg.err))
		return m
	}
	if !maps.Equal(msg.texts, assist.TextsFrom(m.board.Entries)) {
		m.errorMessage = "Entries changed during the audit, run it again"
		return m
	}
	res := msg.result
	m.board.Gate.Record(res.Pass, res.Reason, res.Improvements)
	m.log.Info("audit verdict", zap.Bool("pass", res.Pass), zap.String("reason", res.Reason))
	m.renderReport()
	if res.Pass {
		m.successMessage = "Audit passed, press s to submit"
	} else {
		m.errorMessage = "Audit did not pass"
	}
	return m
}

// renderReport renders the last verdict for the panel width. Blank rows
// are dropped so the verdict fits the panel.
func (m *Model) renderReport() {
	g := m.board.Gate
	if !g.Audited {
		m.report = ""
		return
	}
	md := assist.AuditResult{Pass: g.Passed, Reason: g.Reason, Improvements: g.Improvements}.Report()
	var lines []string
	for _, line := range strings.Split(m.markdown(md, m.width/2-2), "\n") {
		if strings.TrimSpace(ansi.Strip(line)) != "" {
			lines = append(lines, line)
		}
	}
	m.report = strings.Join(lines, "\n")
}

func (m *Model) submit() {
	r, err := m.board.Submit(m.now())
	if errors.Is(err, board.ErrAuditRequired) {
		m.errorMessage = "Submit is locked until an audit passes"
		return
	}
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.resetWorkspace()
	m.successMessage = fmt.Sprintf("Submitted, receipt %s", r.ID)
}

func (m *Model) applyConfig(c *config.Config) {
	if c == nil {
		return
	}
	m.cfg = c
	m.debounce.SetInterval(c.Debounce.D())
	m.log.Info("config applied", zap.Bool("credential", c.HasCredential()), zap.String("backend", c.Backend))
}

func (m *Model) copyFocused() {
	e, ok := m.board.Entries.Entry(m.focused)
	if !ok {
		return
	}
	if err := m.clip.Write(e.Content); err != nil {
		m.errorMessage = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.successMessage = "Copied to clipboard"
}

func (m Model) pasteFocused() (Model, tea.Cmd) {
	e, ok := m.board.Entries.Entry(m.focused)
	if !ok {
		return m, nil
	}
	text, err := m.clip.Read()
	if err != nil {
		m.errorMessage = fmt.Sprintf("Paste failed: %v", err)
		return m, nil
	}
	text = cleanPasted(text)
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	content := e.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += " "
	}
	return m.saveContent(e.ID, content+text)
}

func (m Model) exportName(ext string) (string, error) {
	return m.cfg.SavePath(fmt.Sprintf("threef-%s.%s", m.now().Format("20060102-150405"), ext))
}

// export writes the current canvas in the format named by ext.
func (m *Model) export(ext string) {
	if m.layout == nil {
		return
	}
	path, err := m.exportName(ext)
	if err == nil {
		switch ext {
		case "png":
			err = canvas.ExportPNG(path, m.layout, m.paths)
		case "svg":
			err = canvas.ExportSVG(path, m.layout, m.paths)
		default:
			err = canvas.ExportVisualTXT(path, canvas.Render(canvas.Scene{Layout: m.layout, Paths: m.paths}))
		}
	}
	if err != nil {
		m.log.Warn("export failed", zap.String("format", ext), zap.Error(err))
		m.errorMessage = fmt.Sprintf("Export failed: %v", err)
		return
	}
	m.log.Info("exported", zap.String("path", path))
	m.successMessage = "Exported " + path
}

func (m *Model) selectSuggestion(step int) {
	n := m.board.Suggestions.Len()
	if n == 0 {
		m.selected = 0
		return
	}
	m.selected += step
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= n {
		m.selected = n - 1
	}
}

func (m *Model) selectedSuggestion() (workspace.Suggestion, bool) {
	list := m.board.Suggestions.List()
	if len(list) == 0 {
		return workspace.Suggestion{}, false
	}
	if m.selected >= len(list) {
		m.selected = len(list) - 1
	}
	return list[m.selected], true
}

func (m *Model) dismissSuggestion() {
	s, ok := m.selectedSuggestion()
	if !ok {
		return
	}
	m.board.Suggestions.Dismiss(s.ID)
	m.selectSuggestion(0)
}

// addDetail opens the editor on the entry a suggestion is about.
func (m *Model) addDetail() {
	s, ok := m.selectedSuggestion()
	if !ok {
		return
	}
	if s.Category != "" {
		if entries := m.board.Entries.Entries(s.Category); len(entries) > 0 {
			m.focused = entries[0].ID
		}
	}
	m.startEditing(m.focused)
}
