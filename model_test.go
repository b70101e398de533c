package main

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowlane/internal/diagram"
	"flowlane/internal/interact"
	"flowlane/internal/project"
	"flowlane/internal/render"
)

func testModel(t *testing.T, confirmations bool) model {
	t.Helper()
	config := &Config{
		SaveDirectory: t.TempDir(),
		Confirmations: confirmations,
		Canvas:        render.DefaultCell,
		Export:        render.DefaultPNGOptions(),
	}
	m, err := initialModel(config, "")
	require.NoError(t, err)
	return send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func send(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func hover(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Type: tea.MouseMotion}
}

func drag(fromX, fromY, toX, toY int) []tea.Msg {
	return []tea.Msg{
		tea.MouseMsg{X: fromX, Y: fromY, Type: tea.MouseLeft},
		tea.MouseMsg{X: toX, Y: toY, Type: tea.MouseLeft},
		tea.MouseMsg{X: toX, Y: toY, Type: tea.MouseRelease},
	}
}

func TestPaletteDropsAtPointer(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"))

	nodes := m.doc.store.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, diagram.Task, nodes[0].Type)
	// Cell (20,10) is centered on pixel (164,168).
	assert.Equal(t, 164.0, nodes[0].Center().X)
	assert.Equal(t, 168.0, nodes[0].Center().Y)

	sel := m.doc.machine.Selection()
	assert.Equal(t, interact.SelectNode, sel.Kind)
	assert.Equal(t, nodes[0].ID, sel.ID)
	assert.True(t, m.doc.dirty)
}

func TestDragMovesNode(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"))
	m = send(t, m, drag(20, 10, 30, 10)...)

	n := m.doc.store.Nodes()[0]
	assert.Equal(t, 244.0, n.Center().X)
	assert.Equal(t, 168.0, n.Center().Y)
	assert.False(t, m.pressed)
	assert.Equal(t, interact.Idle, m.doc.machine.Mode())
}

func TestDragBetweenPortsConnects(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(10, 10), key("4"), hover(40, 10), key("4"))
	nodes := m.doc.store.Nodes()
	require.Len(t, nodes, 2)

	// The first task spans x 24..144, the second 264..384.
	m = send(t, m, drag(18, 10, 33, 10)...)

	conns := m.doc.store.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, nodes[0].ID, conns[0].SourceID)
	assert.Equal(t, diagram.PortRight, conns[0].SourcePort)
	assert.Equal(t, nodes[1].ID, conns[0].TargetID)
	assert.Equal(t, diagram.PortLeft, conns[0].TargetPort)
}

func TestPoolAndLaneKeys(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(40, 15), key("p"))

	pools := m.doc.store.Pools()
	require.Len(t, pools, 1)
	lanes := len(pools[0].Lanes)
	sel := m.doc.machine.Selection()
	assert.Equal(t, interact.SelectPool, sel.Kind)

	m = send(t, m, key("L"))
	require.Len(t, pools[0].Lanes, lanes+1)
	sel = m.doc.machine.Selection()
	assert.Equal(t, pools[0].Lanes[lanes].ID, sel.LaneID)

	m = send(t, m, key("["))
	assert.Equal(t, sel.LaneID, pools[0].Lanes[lanes-1].ID)

	m = send(t, m, key("D"))
	assert.Len(t, pools[0].Lanes, lanes)
	assert.Empty(t, m.doc.machine.Selection().LaneID)
}

func TestLaneKeysNeedSelection(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, key("L"))
	assert.Equal(t, "select a pool first", m.errorMessage)
	m = send(t, m, key("D"))
	assert.Equal(t, "select a lane first", m.errorMessage)
}

func TestDeleteSelection(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"), key("d"))
	assert.Empty(t, m.doc.store.Nodes())
	assert.True(t, m.doc.machine.Selection().Empty())
}

func TestDeleteAsksFirst(t *testing.T) {
	m := testModel(t, true)
	m = send(t, m, hover(20, 10), key("4"), key("d"))
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete the selection?")

	m = send(t, m, key("n"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Len(t, m.doc.store.Nodes(), 1)

	m = send(t, m, key("d"), key("y"))
	assert.Empty(t, m.doc.store.Nodes())
}

func TestEditLabel(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"), key("e"))
	require.Equal(t, ModeTextInput, m.mode)
	assert.Equal(t, "task", string(m.inputText))

	m = send(t, m, key("backspace"), key("backspace"), key("sk"), key("!"), key("enter"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "task!", m.doc.store.Nodes()[0].Label)
}

func TestEditCancel(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"), key("m"), key("note"), key("esc"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.doc.store.Nodes()[0].Memo)
}

func TestSavePromptsForName(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"), key("s"))
	require.Equal(t, ModeTextInput, m.mode)
	assert.Equal(t, TextFilename, m.textTarget)
	assert.Equal(t, defaultBase, string(m.inputText))

	m = send(t, m, key("enter"))
	path := filepath.Join(m.config.SaveDirectory, "diagram.json")
	assert.Equal(t, path, m.doc.filename)
	assert.False(t, m.doc.dirty)
	assert.Equal(t, "diagram", m.doc.name)

	f, err := project.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "diagram", f.Name)
	require.Len(t, f.Workspace(), 1)
	assert.Len(t, f.Workspace()[0].Snapshot.Nodes, 1)

	// Later saves reuse the file name.
	m = send(t, m, key("4"), key("s"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.False(t, m.doc.dirty)
}

func TestSaveAsksBeforeOverwrite(t *testing.T) {
	m := testModel(t, true)
	path := filepath.Join(m.config.SaveDirectory, "taken.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	m = send(t, m, hover(20, 10), key("4"), key("s"))
	m.inputText = []rune("taken")
	m.inputCursorPos = len(m.inputText)
	m = send(t, m, key("enter"))
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, ConfirmOverwriteFile, m.confirmAction)

	m = send(t, m, key("y"))
	assert.Equal(t, path, m.doc.filename)
	_, err := project.Load(path)
	assert.NoError(t, err)
}

func TestQuit(t *testing.T) {
	m := testModel(t, true)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = send(t, m, hover(20, 10), key("4"), key("q"))
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, ConfirmQuit, m.confirmAction)
	_, cmd = m.Update(key("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSubProcessNavigation(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"), key("enter"))
	require.Len(t, m.doc.ws.Path(), 2)
	assert.Empty(t, m.doc.store.Nodes())

	m = send(t, m, key("u"))
	assert.Len(t, m.doc.ws.Path(), 1)
	assert.Len(t, m.doc.store.Nodes(), 1)

	m = send(t, m, key("u"))
	assert.Equal(t, "already at the main process", m.errorMessage)
}

func TestSubProcessNeedsTask(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("1"), key("enter"))
	assert.Equal(t, "only tasks have sub-processes", m.errorMessage)
	assert.Len(t, m.doc.ws.Path(), 1)
}

func TestZoomAndPanKeys(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, key("+"))
	assert.Greater(t, m.doc.view.Scale, 1.0)
	m = send(t, m, key("z"))
	assert.Equal(t, 1.0, m.doc.view.Scale)

	m = send(t, m, key("l"))
	assert.Equal(t, -float64(panStep)*render.DefaultCell.Width, m.doc.view.Pan.X)
}

func TestExportKeys(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"), key("x"), key("T"))
	for _, name := range []string{"diagram.bpmn", "diagram.txt"} {
		_, err := os.Stat(filepath.Join(m.config.SaveDirectory, name))
		assert.NoError(t, err, name)
	}
}

func TestViewShowsDiagram(t *testing.T) {
	m := testModel(t, false)
	m = send(t, m, hover(20, 10), key("4"))
	out := m.View()
	assert.Contains(t, out, "task")
	assert.Contains(t, out, "100%")

	m = send(t, m, key("?"))
	assert.Contains(t, m.View(), "flowlane help")
	m = send(t, m, key("q"))
	assert.False(t, m.help)
}

func TestInitialModelWithNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.json")
	m, err := initialModel(&Config{Canvas: render.DefaultCell}, path)
	require.NoError(t, err)
	assert.Equal(t, path, m.doc.filename)
	assert.Equal(t, "order", m.doc.name)
	assert.False(t, m.doc.dirty)
}
