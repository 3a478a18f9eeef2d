// Package ui is the terminal canvas: three columns of entry boxes, mouse
// drag-to-connect, the assistant panel and the submit flow.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"threef/internal/assist"
	"threef/internal/board"
	"threef/internal/canvas"
	"threef/internal/config"
)

// GeneratorFunc builds the assistant backend for a config.
type GeneratorFunc func(*config.Config) (assist.Generator, error)

// Options configures New. Zero values fall back to the real
// implementations.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Log        *zap.Logger
	Generator  GeneratorFunc
	Clipboard  Clipboard
	Now        func() time.Time
}

// ConfigMsg carries a config reloaded from disk.
type ConfigMsg struct {
	Config *config.Config
}

type tickMsg time.Time

type polishDoneMsg struct {
	text string
	err  error
}

type auditDoneMsg struct {
	texts  assist.Texts
	result assist.AuditResult
	err    error
}

type Model struct {
	cfg          *config.Config
	cfgPath      string
	log          *zap.Logger
	newGenerator GeneratorFunc
	clip         Clipboard
	now          func() time.Time
	styles       styles

	board    *board.Board
	renderer *canvas.Renderer
	triggers *assist.Triggers
	busy     assist.Busy
	debounce *assist.Debouncer

	width  int
	height int
	layout *canvas.Layout
	paths  []canvas.Path

	mode          Mode
	help          bool
	helpScroll    int
	focused       string
	editing       string
	editor        textarea.Model
	settings      textinput.Model
	spinner       spinner.Model
	busyLabel     string
	confirmAction ConfirmAction
	selected      int
	report        string
	alert         string
	alertReturn   Mode

	errorMessage   string
	successMessage string
}

func New(opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Generator == nil {
		opts.Generator = defaultGenerator(opts.Log)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = systemClipboard{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	b := board.New(opts.Log.Named("board"))
	triggers := assist.NewTriggers()
	b.OnReset(triggers)

	editor := textarea.New()
	editor.Placeholder = "Describe it..."
	editor.ShowLineNumbers = false
	editor.SetHeight(editorRows)

	settings := textinput.New()
	settings.Placeholder = "API key"
	settings.EchoMode = textinput.EchoPassword
	settings.EchoCharacter = '•'
	settings.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		cfg:          opts.Config,
		cfgPath:      opts.ConfigPath,
		log:          opts.Log,
		newGenerator: opts.Generator,
		clip:         opts.Clipboard,
		now:          opts.Now,
		styles:       defaultStyles(),
		board:        b,
		renderer:     canvas.NewRenderer(opts.Log.Named("render")),
		triggers:     triggers,
		debounce:     assist.NewDebouncer(opts.Config.Debounce.D()),
		editor:       editor,
		settings:     settings,
		spinner:      sp,
	}
	m.focused = b.Entries.All()[0].ID
	return m
}

func defaultGenerator(log *zap.Logger) GeneratorFunc {
	return func(c *config.Config) (assist.Generator, error) {
		return assist.NewGenerator(context.Background(), assist.Options{
			Backend: c.Backend,
			APIKey:  c.APIKey,
			Model:   c.Model,
			BaseURL: c.BaseURL,
			Timeout: c.Timeout.D(),
			Log:     log.Named("assist"),
		})
	}
}

// Board exposes the workspace, mainly for the CLI and tests.
func (m Model) Board() *board.Board {
	return m.board
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// tick schedules the next unconditional refresh. It catches layout drift
// that no message reported.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.RefreshInterval.D(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// canvasSize is the part of the screen the canvas grid occupies.
func (m Model) canvasSize() (int, int) {
	h := m.height - panelRows - statusRows
	if h < minCanvasH {
		h = minCanvasH
	}
	w := m.width
	if w < 1 {
		w = 1
	}
	return w, h
}

// refresh re-lays out the entries and re-renders every connection from a
// pruned snapshot.
func (m *Model) refresh() {
	w, h := m.canvasSize()
	m.layout = canvas.Arrange(m.board.Entries.All(), w, h)
	m.paths = m.renderer.RenderAll(m.board.Connections, m.board.Entries, m.layout)
}

func (m Model) markdown(md string, width int) string {
	if width < minReportWidth {
		width = minReportWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
