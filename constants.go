package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeTextInput
	ModeConfirm
)

// TextTarget is what a text input commits to.
type TextTarget int

const (
	TextLabel TextTarget = iota
	TextMemo
	TextFilename
)

type ConfirmAction int

const (
	ConfirmDelete ConfirmAction = iota
	ConfirmDeleteLane
	ConfirmQuit
	ConfirmOverwriteFile
)

const (
	// Rows below the canvas: the info bar and the status line.
	chromeLines = 2
	// Cells per pan key press.
	panStep        = 4
	defaultName    = "Untitled"
	defaultBase    = "diagram"
	projectExt     = ".json"
	explorerIndent = "  "
)

// paletteKeys maps the number row to element kinds in palette order.
var paletteKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}
