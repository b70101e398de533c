package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowlane/internal/diagram"
	"flowlane/pkg/geometry"
)

var testCell = Cell{Width: 10, Height: 20}

func node(t *testing.T, s *diagram.Store, id string, typ diagram.NodeType, x, y, w, h float64) *diagram.Node {
	t.Helper()
	n, err := s.RestoreNode(diagram.NodeRecord{ID: id, Type: typ, X: x, Y: y, Width: w, Height: h, Label: id})
	require.NoError(t, err)
	return n
}

func draw(s *diagram.Store, opt Options) *Grid {
	g := NewGrid(100, 40, geometry.NewViewport(), testCell)
	g.Draw(s, opt)
	return g
}

func row(g *Grid, y, from, to int) string {
	return string([]rune(g.Lines()[y])[from:to])
}

func TestTaskBox(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "task", diagram.Task, 100, 100, 120, 80)

	g := draw(s, Options{})
	assert.Equal(t, '+', g.At(10, 5))
	assert.Equal(t, '+', g.At(21, 8))
	assert.Equal(t, '-', g.At(15, 5))
	assert.Equal(t, '|', g.At(10, 6))
	assert.Equal(t, "task", row(g, 6, 14, 18))
	assert.Equal(t, ' ', g.At(22, 5))

	g = draw(s, Options{Selected: "task"})
	assert.Equal(t, '#', g.At(10, 5))
	assert.Equal(t, '#', g.At(10, 6))
}

func TestShapesPerCategory(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "ev", diagram.StartEvent, 100, 100, 50, 60)
	node(t, s, "gw", diagram.ExclusiveGateway, 300, 100, 60, 60)

	g := draw(s, Options{})
	assert.Equal(t, '(', g.At(10, 6))
	assert.Equal(t, ')', g.At(14, 6))
	assert.Equal(t, '<', g.At(30, 6))
	assert.Equal(t, '>', g.At(35, 6))
	// Small shapes carry their label underneath.
	assert.Equal(t, "ev", row(g, 8, 11, 13))
}

func TestStraightConnection(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "A", diagram.Task, 100, 100, 80, 60)
	node(t, s, "B", diagram.Task, 400, 100, 80, 60)
	c, ok := s.CreateConnection("A", diagram.PortRight, "B", diagram.PortLeft)
	require.True(t, ok)

	g := draw(s, Options{})
	assert.Equal(t, '─', g.At(18, 6))
	assert.Equal(t, '─', g.At(25, 6))
	assert.Equal(t, '▶', g.At(39, 6))
	assert.Equal(t, '|', g.At(40, 6))

	s.SetConnectionStyle(c.ID, diagram.StyleDashed)
	g = draw(s, Options{})
	assert.Equal(t, '┄', g.At(25, 6))

	g = draw(s, Options{Selected: c.ID})
	assert.Equal(t, '━', g.At(25, 6))
}

func TestRoundedCorner(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "A", diagram.Task, 100, 100, 80, 60)
	node(t, s, "B", diagram.Task, 400, 300, 80, 60)
	_, ok := s.CreateConnection("A", diagram.PortBottom, "B", diagram.PortLeft)
	require.True(t, ok)

	g := draw(s, Options{})
	assert.Equal(t, '│', g.At(14, 8))
	assert.Equal(t, '│', g.At(14, 12))
	assert.Equal(t, '╰', g.At(14, 16))
	assert.Equal(t, '─', g.At(30, 16))
	assert.Equal(t, '▶', g.At(39, 16))
}

func TestConnectionLabel(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "A", diagram.Task, 100, 100, 80, 60)
	node(t, s, "B", diagram.Task, 400, 100, 80, 60)
	c, _ := s.CreateConnection("A", diagram.PortRight, "B", diagram.PortLeft)
	s.SetConnectionName(c.ID, "yes")

	// Label centered on (290, 130).
	g := draw(s, Options{})
	assert.Equal(t, "yes", row(g, 6, 28, 31))
}

func TestCrossingLines(t *testing.T) {
	g := NewGrid(10, 10, geometry.NewViewport(), testCell)
	g.segment([2]int{0, 5}, [2]int{9, 5}, solidLine)
	g.segment([2]int{4, 0}, [2]int{4, 9}, solidLine)
	assert.Equal(t, '┼', g.At(4, 5))
	assert.Equal(t, '─', g.At(3, 5))
	assert.Equal(t, '│', g.At(4, 4))
}

func TestPoolAndLanes(t *testing.T) {
	s := diagram.NewStore()
	p := s.CreatePool(geometry.Pt(500, 200))
	l2, err := s.AddLane(p.ID, nil)
	require.NoError(t, err)

	g := draw(s, Options{})
	assert.Equal(t, '+', g.At(10, 5))
	assert.Equal(t, " Pool ", row(g, 5, 12, 18))
	assert.Equal(t, '|', g.At(14, 10))
	assert.Equal(t, "Lane 1", row(g, 6, 15, 21))
	assert.Equal(t, '-', g.At(50, 15))
	assert.Equal(t, "Lane 2", row(g, 16, 15, 21))

	g = draw(s, Options{Selected: l2.ID})
	assert.Equal(t, '#', g.At(50, 15))
	assert.Equal(t, "[Lane 2]", row(g, 16, 15, 23))
}

func TestPreview(t *testing.T) {
	s := diagram.NewStore()
	g := draw(s, Options{Preview: &Preview{From: geometry.Pt(100, 100), To: geometry.Pt(300, 100)}})
	assert.Equal(t, '·', g.At(10, 5))
	assert.Equal(t, '·', g.At(30, 5))
}

func TestViewportShiftsGrid(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "task", diagram.Task, 100, 100, 120, 80)
	view := geometry.NewViewport()
	view.PanBy(-50, -40)

	g := NewGrid(100, 40, view, testCell)
	g.Draw(s, Options{})
	assert.Equal(t, '+', g.At(5, 3))
	assert.Equal(t, ' ', g.At(10, 5))
}

func TestText(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "task", diagram.Task, 100, 100, 120, 80)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, s, DefaultCell))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "  +"+strings.Repeat("-", 13)+"+", lines[2])
	assert.Equal(t, "  |    task     |", lines[4])
	assert.Equal(t, "", lines[0])

	assert.ErrorIs(t, Text(&buf, diagram.NewStore(), DefaultCell), ErrEmpty)
}

func TestBounds(t *testing.T) {
	s := diagram.NewStore()
	_, ok := Bounds(s)
	assert.False(t, ok)

	node(t, s, "A", diagram.Task, 100, 100, 80, 60)
	node(t, s, "B", diagram.Task, 400, 300, 80, 60)
	b, ok := Bounds(s)
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 380, Height: 260}, b)
}

func TestPNG(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "task", diagram.Task, 100, 100, 120, 80)

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, s, DefaultPNGOptions()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, 440, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy())
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "background is transparent")
	_, _, _, a = img.At(110, 110).RGBA()
	assert.Equal(t, uint32(0xffff), a, "task body is filled")

	assert.ErrorIs(t, PNG(&buf, diagram.NewStore(), DefaultPNGOptions()), ErrEmpty)
}

func TestPNGDrawsEveryKind(t *testing.T) {
	s := diagram.NewStore()
	p := s.CreatePool(geometry.Pt(500, 300))
	_, err := s.AddLane(p.ID, nil)
	require.NoError(t, err)
	var prev *diagram.Node
	for i, typ := range diagram.NodeTypes {
		n, err := s.CreateNode(typ, geometry.Pt(200+float64(i)*70, 250))
		require.NoError(t, err)
		if prev != nil {
			c, ok := s.CreateConnection(prev.ID, diagram.PortBottom, n.ID, diagram.PortTop)
			require.True(t, ok)
			s.SetConnectionName(c.ID, "next")
			if i%2 == 0 {
				s.SetConnectionStyle(c.ID, diagram.StyleDashed)
			}
		}
		prev = n
	}

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, s, PNGOptions{Scale: 1}))
	_, err = png.Decode(&buf)
	require.NoError(t, err)
}

func TestExportsRejectHugeExtent(t *testing.T) {
	s := diagram.NewStore()
	node(t, s, "near", diagram.Task, 0, 0, 120, 80)
	node(t, s, "far", diagram.Task, 1e7, 0, 120, 80)

	var buf bytes.Buffer
	assert.ErrorIs(t, Text(&buf, s, DefaultCell), ErrTooLarge)
	assert.Zero(t, buf.Len())
	assert.ErrorIs(t, PNG(&buf, s, DefaultPNGOptions()), ErrTooLarge)
	assert.Zero(t, buf.Len())
}
