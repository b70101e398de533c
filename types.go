package main

import (
	"github.com/rs/zerolog"

	"flowlane/internal/diagram"
	"flowlane/internal/interact"
	"flowlane/internal/workspace"
	"flowlane/pkg/geometry"
)

// document is the editing state shared by every copy of the model.
type document struct {
	store    *diagram.Store
	view     *geometry.Viewport
	machine  *interact.Machine
	ws       *workspace.Manager
	filename string
	name     string
	dirty    bool
}

type model struct {
	width          int
	height         int
	config         *Config
	log            zerolog.Logger
	doc            *document
	mouseX         int
	mouseY         int
	pressed        bool
	mode           Mode
	help           bool
	helpScroll     int
	explorer       bool
	textTarget     TextTarget
	inputText      []rune
	inputCursorPos int
	confirmAction  ConfirmAction
	pendingPath    string
	errorMessage   string
	successMessage string
}
