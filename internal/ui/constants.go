package ui

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeSettings
	ModeConfirm
	ModeAlert
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeEditing:
		return "EDIT"
	case ModeSettings:
		return "SETTINGS"
	case ModeConfirm:
		return "CONFIRM"
	case ModeAlert:
		return "ALERT"
	default:
		return "UNKNOWN"
	}
}

type ConfirmAction int

const (
	ConfirmDeleteConnection ConfirmAction = iota
	ConfirmReset
	ConfirmQuit
)

func (a ConfirmAction) prompt() string {
	switch a {
	case ConfirmDeleteConnection:
		return "Delete this connection? (y/n)"
	case ConfirmReset:
		return "Reset the workspace? All entries and connections will be cleared. (y/n)"
	case ConfirmQuit:
		return "Quit threef? (y/n)"
	}
	return "(y/n)"
}

const (
	panelRows      = 8
	statusRows     = 1
	minCanvasH     = 8
	editorRows     = 5
	minReportWidth = 20
)
