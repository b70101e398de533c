package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"flowlane/internal/interact"
	"flowlane/internal/render"
)

const explorerWidth = 28

var (
	barStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255"))
	crumbStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	promptStyle  = lipgloss.NewStyle().Bold(true)
	explorerBox  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

var helpLines = []string{
	"flowlane help",
	"=============",
	"",
	"Mouse:",
	"------",
	"  click            Select a node, pool, lane or flow",
	"  drag node        Move it; dropping it on a lane puts it in that lane",
	"  drag port        Drag from a node's side to another node to connect them",
	"  drag handle      Reshape a flow through its middle handle",
	"  drag pool edge   Resize the pool or the lane under the pointer",
	"  drag empty space Pan the canvas",
	"  wheel            Zoom around the pointer",
	"",
	"Palette (drops at the pointer):",
	"-------------------------------",
	"  1 start event    2 end event      3 intermediate event",
	"  4 task           5 user task      6 service task",
	"  7 exclusive      8 parallel       9 data object    0 system",
	"",
	"Pools and lanes:",
	"----------------",
	"  p                Create a pool at the pointer",
	"  L                Add a lane to the selected pool",
	"  D                Delete the selected lane",
	"  [ / ]            Move the selected lane up or down",
	"",
	"Editing:",
	"--------",
	"  e                Edit the name of the selection",
	"  m                Edit the memo of the selection",
	"  d/Delete         Delete the selection",
	"  Alt+Enter        Newline while editing text",
	"  Ctrl+V           Paste while editing text",
	"",
	"Sub-processes:",
	"--------------",
	"  Enter            Open the sub-process of the selected task",
	"  u                Return to the parent process",
	"  E                Toggle the process explorer",
	"",
	"View:",
	"-----",
	"  h/j/k/l/arrows   Pan (Shift+arrows pans faster)",
	"  +/-              Zoom in and out",
	"  z                Reset pan and zoom",
	"",
	"Files:",
	"------",
	"  s                Save the project",
	"  S                Export the current process as PNG",
	"  x                Export the current process as BPMN XML",
	"  T                Export the current process as text",
	"  y / Y            Copy the project JSON / BPMN XML to the clipboard",
	"",
	"General:",
	"--------",
	"  Esc              Clear the selection or cancel a gesture",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m *model) handleHelpKey(key string) {
	maxScroll := max(len(helpLines)-max(m.height-1, 1), 0)
	switch key {
	case "j", "down":
		if m.helpScroll < maxScroll {
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
}

func (m model) View() string {
	if m.doc == nil {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	sel := m.doc.machine.Selection()
	opt := render.Options{Selected: sel.ID}
	if sel.LaneID != "" {
		opt.Selected = sel.LaneID
	}
	if from, to, ok := m.doc.machine.Preview(); ok {
		opt.Preview = &render.Preview{From: from, To: to}
	}

	height := m.canvasHeight()
	lines := render.Render(m.doc.store, *m.doc.view, m.config.Canvas, m.canvasWidth(), height, opt)
	body := strings.Join(lines, "\n")
	if m.explorer {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.explorerView(height))
	}

	var result strings.Builder
	result.WriteString(body)
	result.WriteString("\n")
	result.WriteString(m.infoBar())
	result.WriteString("\n")
	result.WriteString(m.statusLine())
	return result.String()
}

// infoBar shows where the user is and what is selected.
func (m model) infoBar() string {
	crumb := crumbStyle.Render(strings.Join(m.doc.ws.Path(), " › "))
	name := m.doc.name
	if m.doc.dirty {
		name += " *"
	}
	parts := []string{
		name,
		crumb,
		fmt.Sprintf("%d%%", m.doc.view.Zoom()),
		m.doc.machine.Mode().String(),
	}
	if s := m.selectionText(); s != "" {
		parts = append(parts, s)
	}
	return barStyle.Width(max(m.width, 1)).Render(strings.Join(parts, " | "))
}

func (m model) selectionText() string {
	sel := m.doc.machine.Selection()
	switch sel.Kind {
	case interact.SelectNode:
		if n, ok := m.doc.store.Node(sel.ID); ok {
			return fmt.Sprintf("%s %q", n.Type, n.Label)
		}
	case interact.SelectConnection:
		if c, ok := m.doc.store.Connection(sel.ID); ok {
			return fmt.Sprintf("flow %s → %s", c.SourceID, c.TargetID)
		}
	case interact.SelectPool:
		if p, ok := m.doc.store.Pool(sel.ID); ok {
			if l, ok := p.Lane(sel.LaneID); ok {
				return fmt.Sprintf("lane %q in %q", l.Name, p.Name)
			}
			return fmt.Sprintf("pool %q", p.Name)
		}
	}
	return ""
}

func (m model) statusLine() string {
	switch m.mode {
	case ModeTextInput:
		var prompt string
		switch m.textTarget {
		case TextLabel:
			prompt = "Name"
		case TextMemo:
			prompt = "Memo"
		case TextFilename:
			prompt = "Save as"
		}
		return promptStyle.Render(prompt+": ") + cursorText(m.inputText, m.inputCursorPos) + " | Enter=ok, Esc=cancel"
	case ModeConfirm:
		var question string
		switch m.confirmAction {
		case ConfirmDelete:
			question = "Delete the selection?"
		case ConfirmDeleteLane:
			question = "Delete the selected lane?"
		case ConfirmQuit:
			question = "Quit without saving?"
		case ConfirmOverwriteFile:
			question = fmt.Sprintf("Overwrite %s?", m.pendingPath)
		}
		return promptStyle.Render(question + " (y/n)")
	}
	if m.errorMessage != "" {
		return errorStyle.Render(m.errorMessage)
	}
	if m.successMessage != "" {
		return successStyle.Render(m.successMessage)
	}
	return "1-0 add node | p pool | drag ports to connect | ? help | q quit"
}

// cursorText shows the edit text on one line with a block cursor.
func cursorText(text []rune, pos int) string {
	display := []rune(strings.ReplaceAll(string(text), "\n", "⏎"))
	pos = min(max(pos, 0), len(display))
	if pos == len(display) {
		return string(display) + "█"
	}
	display[pos] = '█'
	return string(display)
}

// explorerView lists the process tree, indented by depth.
func (m model) explorerView(height int) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("Processes"))
	for _, e := range m.doc.ws.Tree() {
		line := strings.Repeat(explorerIndent, e.Depth) + e.Name
		if r := []rune(line); len(r) > explorerWidth-4 {
			line = string(r[:explorerWidth-5]) + "…"
		}
		if e.Current {
			line = currentStyle.Render(line)
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return explorerBox.
		Width(explorerWidth - 2).
		Height(max(height-2, 1)).
		Render(b.String())
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)
	startLine := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	endLine := min(startLine+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[startLine:endLine], "\n")
	statusLine := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, any other key to close",
		startLine+1, endLine, len(helpLines))
	return result + "\n" + barStyle.Width(max(m.width, 1)).Render(statusLine)
}
