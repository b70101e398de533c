package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"flowlane/internal/bpmn"
	"flowlane/internal/diagram"
	"flowlane/internal/interact"
	"flowlane/internal/logger"
	"flowlane/internal/project"
	"flowlane/internal/workspace"
)

var (
	appConfig *Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "flowlane [file]",
	Short: "flowlane is a terminal editor for swimlane process diagrams",
	Long: `flowlane edits process diagrams made of events, tasks, gateways and data
objects laid out in pools and lanes. Without a subcommand it opens the
interactive editor.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appConfig = loadConfig()
		closer, err := logger.Init(appConfig.Log)
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: runEdit,
}

var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Opens the interactive editor",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	m, err := initialModel(appConfig, path)
	if err != nil {
		return err
	}
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}

// initialModel opens path when it exists. A missing path starts an empty
// diagram that will be saved there.
func initialModel(config *Config, path string) (model, error) {
	m := model{config: config, log: logger.Named("editor")}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			d, err := openDocument(path, config.Canvas)
			if err != nil {
				return model{}, err
			}
			m.doc = d
			m.log.Info().Str("file", path).Msg("opened project")
			return m, nil
		}
	}
	m.doc = newDocument(config.Canvas)
	if path != "" {
		m.doc.filename = path
		m.doc.name = m.baseName()
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.help {
			m.handleHelpKey(msg.String())
			return m, nil
		}
		switch m.mode {
		case ModeTextInput:
			m.handleTextInput(msg)
			return m, nil
		case ModeConfirm:
			return m, m.handleConfirm(msg.String())
		}
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

// handleMouse feeds presses, drags and releases to the gesture machine and
// turns the wheel into zoom steps.
func (m *model) handleMouse(msg tea.MouseMsg) {
	m.mouseX, m.mouseY = msg.X, msg.Y
	pt := m.screenPoint(msg.X, msg.Y)
	machine := m.doc.machine

	switch msg.Type {
	case tea.MouseWheelUp:
		machine.Wheel(pt, 1)
	case tea.MouseWheelDown:
		machine.Wheel(pt, -1)
	case tea.MouseLeft:
		if m.pressed {
			machine.PointerMove(pt)
			return
		}
		if m.mode != ModeNormal || msg.Y >= m.canvasHeight() {
			return
		}
		m.errorMessage, m.successMessage = "", ""
		m.pressed = machine.PointerDown(pt)
	case tea.MouseMotion:
		if m.pressed {
			machine.PointerMove(pt)
		}
	case tea.MouseRelease:
		if m.pressed {
			machine.PointerUp(pt)
			m.pressed = false
		}
	}
}

func (m *model) handleKey(key string) tea.Cmd {
	m.errorMessage, m.successMessage = "", ""
	sel := m.doc.machine.Selection()

	for i, k := range paletteKeys {
		if key == k {
			m.dropNode(diagram.NodeTypes[i])
			return nil
		}
	}

	switch key {
	case "q", "ctrl+c":
		if m.doc.dirty && m.config.Confirmations {
			m.confirm(ConfirmQuit)
			return nil
		}
		return tea.Quit
	case "?":
		m.help = true
		m.helpScroll = 0
	case "esc":
		m.doc.machine.Cancel()
		m.pressed = false
		m.doc.machine.Select(interact.Selection{})
	case "p":
		pool := m.doc.store.CreatePool(m.pointerCanvas())
		m.doc.machine.Select(interact.Selection{Kind: interact.SelectPool, ID: pool.ID})
	case "L":
		if sel.Kind != interact.SelectPool {
			m.errorMessage = "select a pool first"
			return nil
		}
		l, err := m.doc.store.AddLane(sel.ID, nil)
		if err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.doc.machine.Select(interact.Selection{Kind: interact.SelectPool, ID: sel.ID, LaneID: l.ID})
	case "D":
		if sel.LaneID == "" {
			m.errorMessage = "select a lane first"
			return nil
		}
		if m.config.Confirmations {
			m.confirm(ConfirmDeleteLane)
			return nil
		}
		m.deleteLane()
	case "[", "]":
		if sel.LaneID == "" {
			m.errorMessage = "select a lane first"
			return nil
		}
		move := m.doc.store.MoveLaneUp
		if key == "]" {
			move = m.doc.store.MoveLaneDown
		}
		if !move(sel.ID, sel.LaneID) {
			m.errorMessage = "lane cannot move further"
		}
	case "d", "delete":
		if sel.Empty() {
			return nil
		}
		if m.config.Confirmations {
			m.confirm(ConfirmDelete)
			return nil
		}
		m.deleteSelection()
	case "e":
		m.startInput(TextLabel)
	case "m":
		m.startInput(TextMemo)
	case "s":
		if m.doc.filename == "" {
			m.startInput(TextFilename)
			return nil
		}
		m.save(m.doc.filename)
	case "S":
		m.exportAs("png", ".png")
	case "x":
		m.exportAs("bpmn", ".bpmn")
	case "T":
		m.exportAs("txt", ".txt")
	case "y", "Y":
		m.copyDocument(key == "Y")
	case "enter":
		m.openSubDiagram(sel)
	case "u":
		m.openParent()
	case "E":
		m.explorer = !m.explorer
	case "+", "=":
		m.handleZoom(1)
	case "-":
		m.handleZoom(-1)
	case "z":
		m.resetView()
	default:
		m.handlePan(key)
	}
	return nil
}

func (m *model) dropNode(t diagram.NodeType) {
	n, err := m.doc.store.CreateNode(t, m.pointerCanvas())
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.doc.machine.Select(interact.Selection{Kind: interact.SelectNode, ID: n.ID})
}

func (m *model) deleteSelection() {
	sel := m.doc.machine.Selection()
	if !m.doc.store.Delete(sel.ID) {
		m.errorMessage = "nothing to delete"
		return
	}
	m.doc.machine.Select(interact.Selection{})
}

func (m *model) deleteLane() {
	sel := m.doc.machine.Selection()
	if !m.doc.store.DeleteLane(sel.ID, sel.LaneID) {
		m.errorMessage = "a pool keeps at least one lane"
		return
	}
	m.doc.machine.Select(interact.Selection{Kind: interact.SelectPool, ID: sel.ID})
}

func (m *model) confirm(action ConfirmAction) {
	m.mode = ModeConfirm
	m.confirmAction = action
}

func (m *model) handleConfirm(key string) tea.Cmd {
	m.mode = ModeNormal
	if key != "y" && key != "Y" {
		m.pendingPath = ""
		return nil
	}
	switch m.confirmAction {
	case ConfirmDelete:
		m.deleteSelection()
	case ConfirmDeleteLane:
		m.deleteLane()
	case ConfirmQuit:
		return tea.Quit
	case ConfirmOverwriteFile:
		m.save(m.pendingPath)
		m.pendingPath = ""
	}
	return nil
}

// currentText returns the text a label or memo edit starts from.
func (m *model) currentText(target TextTarget) (string, bool) {
	if target == TextFilename {
		return m.baseName(), true
	}
	sel := m.doc.machine.Selection()
	memo := target == TextMemo
	switch sel.Kind {
	case interact.SelectNode:
		if n, ok := m.doc.store.Node(sel.ID); ok {
			if memo {
				return n.Memo, true
			}
			return n.Label, true
		}
	case interact.SelectConnection:
		if c, ok := m.doc.store.Connection(sel.ID); ok {
			if memo {
				return c.Memo, true
			}
			return c.Name, true
		}
	case interact.SelectPool:
		if p, ok := m.doc.store.Pool(sel.ID); ok {
			if memo {
				return p.Memo, true
			}
			if l, ok := p.Lane(sel.LaneID); ok {
				return l.Name, true
			}
			return p.Name, true
		}
	}
	return "", false
}

func (m *model) startInput(target TextTarget) {
	text, ok := m.currentText(target)
	if !ok {
		m.errorMessage = "select something first"
		return
	}
	m.mode = ModeTextInput
	m.textTarget = target
	m.inputText = []rune(text)
	m.inputCursorPos = len(m.inputText)
}

func (m *model) handleTextInput(msg tea.KeyMsg) {
	if msg.String() == "alt+enter" {
		m.insertText([]rune{'\n'})
		return
	}
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.inputText = nil
		m.inputCursorPos = 0
	case tea.KeyEnter:
		m.mode = ModeNormal
		m.commitText(string(m.inputText))
		m.inputText = nil
		m.inputCursorPos = 0
	case tea.KeyLeft:
		if m.inputCursorPos > 0 {
			m.inputCursorPos--
		}
	case tea.KeyRight:
		if m.inputCursorPos < len(m.inputText) {
			m.inputCursorPos++
		}
	case tea.KeyBackspace:
		if m.inputCursorPos > 0 {
			m.inputText = append(m.inputText[:m.inputCursorPos-1], m.inputText[m.inputCursorPos:]...)
			m.inputCursorPos--
		}
	case tea.KeyDelete:
		if m.inputCursorPos < len(m.inputText) {
			m.inputText = append(m.inputText[:m.inputCursorPos], m.inputText[m.inputCursorPos+1:]...)
		}
	case tea.KeyCtrlV:
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.insertText([]rune(cleanClipboardText(text)))
	case tea.KeySpace:
		m.insertText([]rune{' '})
	case tea.KeyRunes:
		m.insertText(msg.Runes)
	}
}

func (m *model) insertText(rs []rune) {
	out := make([]rune, 0, len(m.inputText)+len(rs))
	out = append(out, m.inputText[:m.inputCursorPos]...)
	out = append(out, rs...)
	out = append(out, m.inputText[m.inputCursorPos:]...)
	m.inputText = out
	m.inputCursorPos += len(rs)
}

func (m *model) commitText(text string) {
	if m.textTarget == TextFilename {
		m.saveAs(text)
		return
	}
	s := m.doc.store
	sel := m.doc.machine.Selection()
	memo := m.textTarget == TextMemo
	var ok bool
	switch sel.Kind {
	case interact.SelectNode:
		if memo {
			ok = s.SetMemo(sel.ID, text)
		} else {
			ok = s.SetLabel(sel.ID, text)
		}
	case interact.SelectConnection:
		if memo {
			ok = s.SetConnectionMemo(sel.ID, text)
		} else {
			ok = s.SetConnectionName(sel.ID, text)
		}
	case interact.SelectPool:
		switch {
		case memo:
			ok = s.SetPoolMemo(sel.ID, text)
		case sel.LaneID != "":
			ok = s.SetLaneName(sel.ID, sel.LaneID, text)
		default:
			ok = s.SetPoolName(sel.ID, text)
		}
	}
	if !ok {
		m.errorMessage = "selection no longer exists"
	}
}

// saveAs saves under a new name inside the save directory, asking before
// overwriting an existing file.
func (m *model) saveAs(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		m.errorMessage = "file name is empty"
		return
	}
	if filepath.Ext(name) == "" {
		name += projectExt
	}
	path := m.config.GetSavePath(name)
	if _, err := os.Stat(path); err == nil && m.config.Confirmations {
		m.pendingPath = path
		m.confirm(ConfirmOverwriteFile)
		return
	}
	m.save(path)
}

func (m *model) save(path string) {
	if m.doc.name == defaultName {
		m.doc.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := project.New(m.doc.name, m.doc.ws.All()).Save(path); err != nil {
		m.log.Error().Err(err).Str("file", path).Msg("save failed")
		m.errorMessage = err.Error()
		return
	}
	m.doc.filename = path
	m.doc.dirty = false
	m.successMessage = "Saved " + path
	m.log.Info().Str("file", path).Msg("saved project")
}

func (m *model) copyDocument(asBPMN bool) {
	var text string
	if asBPMN {
		var b strings.Builder
		if err := bpmn.Export(&b, m.doc.name, m.doc.store); err != nil {
			m.errorMessage = err.Error()
			return
		}
		text = b.String()
	} else {
		data, err := project.New(m.doc.name, m.doc.ws.All()).Encode()
		if err != nil {
			m.errorMessage = err.Error()
			return
		}
		text = string(data)
	}
	if err := copyToClipboard(text); err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return
	}
	m.successMessage = "Copied to clipboard"
}

func (m *model) openSubDiagram(sel interact.Selection) {
	if sel.Kind != interact.SelectNode {
		m.errorMessage = "select a task first"
		return
	}
	n, ok := m.doc.store.Node(sel.ID)
	if !ok || n.Type.Category() != diagram.CategoryTask {
		m.errorMessage = "only tasks have sub-processes"
		return
	}
	m.doc.machine.Cancel()
	m.pressed = false
	id, err := m.doc.ws.OpenChildOf(n.ID)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.doc.machine.Select(interact.Selection{})
	if d, ok := m.doc.ws.Diagram(id); ok {
		m.successMessage = "Opened " + d.Name
	}
}

func (m *model) openParent() {
	m.doc.machine.Cancel()
	m.pressed = false
	if err := m.doc.ws.OpenParent(); err != nil {
		if errors.Is(err, workspace.ErrAtRoot) {
			m.errorMessage = "already at the main process"
			return
		}
		m.errorMessage = err.Error()
		return
	}
	m.doc.machine.Select(interact.Selection{})
}
