// Package render draws a diagram store onto a terminal rune grid and into
// PNG images.
package render

import (
	"errors"
	"math"
	"strings"

	"flowlane/internal/diagram"
	"flowlane/pkg/geometry"
)

var (
	// ErrEmpty is returned by exporters when there is nothing to draw.
	ErrEmpty    = errors.New("render: nothing to export")
	// ErrTooLarge is returned when the diagram extent exceeds the export limits.
	ErrTooLarge = errors.New("render: diagram too large to export")
)

// Cell is the size in screen pixels of one terminal character.
type Cell struct {
	Width  float64 `yaml:"cell_width"`
	Height float64 `yaml:"cell_height"`
}

var DefaultCell = Cell{Width: 8, Height: 16}

// Preview is an in-progress connection in canvas space.
type Preview struct {
	From, To geometry.Point
}

// Options controls what the grid highlights.
type Options struct {
	// Selected is a node, pool, lane or connection id.
	Selected string
	Preview  *Preview
}

// Grid is a rune canvas covering the visible part of the diagram.
type Grid struct {
	cells [][]rune
	view  geometry.Viewport
	cell  Cell
}

// NewGrid returns a blank grid of width x height characters.
func NewGrid(width, height int, view geometry.Viewport, cell Cell) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if cell.Width <= 0 || cell.Height <= 0 {
		cell = DefaultCell
	}
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", width))
	}
	return &Grid{cells: cells, view: view, cell: cell}
}

// Render draws s into a fresh grid and returns its lines.
func Render(s *diagram.Store, view geometry.Viewport, cell Cell, width, height int, opt Options) []string {
	g := NewGrid(width, height, view, cell)
	g.Draw(s, opt)
	return g.Lines()
}

// Lines returns the grid rows.
func (g *Grid) Lines() []string {
	out := make([]string, len(g.cells))
	for i, row := range g.cells {
		out[i] = string(row)
	}
	return out
}

// At returns the rune at column x, row y, or a space outside the grid.
func (g *Grid) At(x, y int) rune {
	if !g.valid(x, y) {
		return ' '
	}
	return g.cells[y][x]
}

// CellOf maps a canvas point to the character containing it.
func (g *Grid) CellOf(p geometry.Point) (int, int) {
	s := g.view.ToScreen(p)
	return int(math.Floor(s.X / g.cell.Width)), int(math.Floor(s.Y / g.cell.Height))
}

// Draw paints pools, connections, nodes and labels in that order, so shapes
// sit on top of the lines that attach to them.
func (g *Grid) Draw(s *diagram.Store, opt Options) {
	for _, p := range s.Pools() {
		g.drawPool(p, opt.Selected)
	}
	type arrow struct {
		route diagram.Route
		conn  *diagram.Connection
	}
	var arrows []arrow
	for _, c := range s.Connections() {
		r, ok := s.Route(c.ID)
		if !ok {
			continue
		}
		g.drawRoute(r, c.Style, c.ID == opt.Selected)
		arrows = append(arrows, arrow{r, c})
	}
	if opt.Preview != nil {
		g.drawPreview(opt.Preview.From, opt.Preview.To)
	}
	for _, n := range s.Nodes() {
		g.drawNode(n, n.ID == opt.Selected)
	}
	for _, a := range arrows {
		target, _ := s.Node(a.conn.TargetID)
		g.drawArrow(a.route, target)
		if a.route.Label != nil {
			x, y := g.CellOf(a.route.Label.Position)
			g.text(x-len([]rune(a.route.Label.Text))/2, y, a.route.Label.Text, -1)
		}
		if a.conn.ID == opt.Selected && a.route.Handle != nil {
			x, y := g.CellOf(*a.route.Handle)
			g.set(x, y, '◆')
		}
	}
}

func (g *Grid) valid(x, y int) bool {
	return y >= 0 && y < len(g.cells) && x >= 0 && x < len(g.cells[y])
}

func (g *Grid) set(x, y int, r rune) {
	if g.valid(x, y) {
		g.cells[y][x] = r
	}
}

// text writes s starting at x. A non-negative limit truncates it.
func (g *Grid) text(x, y int, s string, limit int) {
	runes := []rune(s)
	if limit >= 0 && len(runes) > limit {
		runes = runes[:limit]
	}
	for i, r := range runes {
		g.set(x+i, y, r)
	}
}

// box returns the character rectangle covering r, at least 2x2.
func (g *Grid) box(r geometry.Rect) (x, y, w, h int) {
	x, y = g.CellOf(r.TopLeft())
	x1, y1 := g.CellOf(geometry.Pt(r.Right(), r.Bottom()))
	return x, y, max(x1-x, 2), max(y1-y, 2)
}

type frame struct {
	tl, tr, bl, br rune
	top, bottom    rune
	left, right    rune
}

var (
	taskFrame    = frame{'+', '+', '+', '+', '-', '-', '|', '|'}
	eventFrame   = frame{'.', '.', '\'', '\'', '-', '-', '(', ')'}
	gatewayFrame = frame{'/', '\\', '\\', '/', '-', '-', '<', '>'}
	dataFrame    = frame{'+', '\\', '+', '+', '-', '-', '|', '|'}
	systemFrame  = frame{'+', '+', '+', '+', '=', '=', '|', '|'}
	hashFrame    = frame{'#', '#', '#', '#', '#', '#', '#', '#'}
)

func (g *Grid) drawFrame(x, y, w, h int, f frame) {
	for i := x; i < x+w; i++ {
		g.set(i, y, f.top)
		g.set(i, y+h-1, f.bottom)
	}
	for j := y; j < y+h; j++ {
		g.set(x, j, f.left)
		g.set(x+w-1, j, f.right)
	}
	g.set(x, y, f.tl)
	g.set(x+w-1, y, f.tr)
	g.set(x, y+h-1, f.bl)
	g.set(x+w-1, y+h-1, f.br)
}

func (g *Grid) fill(x, y, w, h int) {
	for j := y + 1; j < y+h-1; j++ {
		for i := x + 1; i < x+w-1; i++ {
			g.set(i, j, ' ')
		}
	}
}

func (g *Grid) drawNode(n *diagram.Node, selected bool) {
	x, y, w, h := g.box(n.Bounds())
	f := taskFrame
	switch n.Type.Category() {
	case diagram.CategoryEvent:
		f = eventFrame
	case diagram.CategoryGateway:
		f = gatewayFrame
	case diagram.CategoryData:
		f = dataFrame
	case diagram.CategorySystem:
		f = systemFrame
	}
	if selected {
		f = hashFrame
	}
	g.fill(x, y, w, h)
	g.drawFrame(x, y, w, h, f)

	lines := strings.Split(n.Label, "\n")
	switch n.Type.Category() {
	case diagram.CategoryTask, diagram.CategorySystem:
		inner := w - 2
		top := y + 1 + max(h-2-len(lines), 0)/2
		for i, line := range lines {
			if top+i >= y+h-1 {
				break
			}
			pad := max(inner-len([]rune(line)), 0) / 2
			g.text(x+1+pad, top+i, line, inner)
		}
	default:
		// Small shapes carry their label underneath.
		for i, line := range lines {
			g.text(x+w/2-len([]rune(line))/2, y+h+i, line, -1)
		}
	}
}

func (g *Grid) drawPool(p *diagram.Pool, selected string) {
	x, y, w, h := g.box(p.Bounds())
	f := taskFrame
	if p.ID == selected {
		f = hashFrame
	}
	g.drawFrame(x, y, w, h, f)
	if p.Name != "" {
		g.text(x+2, y, " "+p.Name+" ", w-4)
	}

	hx, _ := g.CellOf(geometry.Pt(p.Position.X+diagram.PoolHeaderWidth, p.Position.Y))
	for j := y + 1; j < y+h-1; j++ {
		g.set(hx, j, '|')
	}
	for i, l := range p.Lanes {
		_, ly := g.CellOf(geometry.Pt(p.Position.X, p.LaneTop(i)))
		if i > 0 {
			sep := '-'
			if l.ID == selected {
				sep = '#'
			}
			for k := hx; k < x+w-1; k++ {
				g.set(k, ly, sep)
			}
		}
		name := l.Name
		if l.ID == selected {
			name = "[" + name + "]"
		}
		g.text(hx+1, ly+1, name, max(x+w-2-hx, 0))
	}
}

type line struct {
	h, v rune
}

var (
	solidLine    = line{'─', '│'}
	dashedLine   = line{'┄', '┆'}
	selectedLine = line{'━', '┃'}
)

func (g *Grid) cellsOf(points []geometry.Point) [][2]int {
	out := make([][2]int, 0, len(points))
	for _, p := range points {
		x, y := g.CellOf(p)
		c := [2]int{x, y}
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (g *Grid) drawRoute(r diagram.Route, style diagram.Style, selected bool) {
	ln := solidLine
	if style == diagram.StyleDashed {
		ln = dashedLine
	}
	if selected {
		ln = selectedLine
	}
	pts := g.cellsOf(r.Points)
	for i := 1; i < len(pts); i++ {
		g.segment(pts[i-1], pts[i], ln)
	}
	for i := 1; i < len(pts)-1; i++ {
		g.corner(pts[i-1], pts[i], pts[i+1])
	}
}

// segment draws an axis-aligned run of line runes. A diagonal pair, which
// only rounding can produce, is drawn horizontally first.
func (g *Grid) segment(a, b [2]int, ln line) {
	if a[0] != b[0] && a[1] != b[1] {
		mid := [2]int{b[0], a[1]}
		g.segment(a, mid, ln)
		g.segment(mid, b, ln)
		return
	}
	if a[1] == b[1] {
		for x := min(a[0], b[0]); x <= max(a[0], b[0]); x++ {
			g.plot(x, a[1], ln.h, ln)
		}
		return
	}
	for y := min(a[1], b[1]); y <= max(a[1], b[1]); y++ {
		g.plot(a[0], y, ln.v, ln)
	}
}

// plot writes r, turning a perpendicular crossing into a cross.
func (g *Grid) plot(x, y int, r rune, ln line) {
	if !g.valid(x, y) {
		return
	}
	cur := g.cells[y][x]
	if (r == ln.h && isVertical(cur)) || (r == ln.v && isHorizontal(cur)) {
		r = '┼'
	}
	g.cells[y][x] = r
}

func isHorizontal(r rune) bool { return r == '─' || r == '┄' || r == '━' }

func isVertical(r rune) bool { return r == '│' || r == '┆' || r == '┃' }

// corner rounds the bend at cur given where the line comes from and goes to.
func (g *Grid) corner(prev, cur, next [2]int) {
	from := side(cur, prev)
	to := side(cur, next)
	var r rune
	switch {
	case has(from, to, 'l', 'd'):
		r = '╮'
	case has(from, to, 'l', 'u'):
		r = '╯'
	case has(from, to, 'r', 'd'):
		r = '╭'
	case has(from, to, 'r', 'u'):
		r = '╰'
	default:
		return
	}
	g.set(cur[0], cur[1], r)
}

// side names the direction of other as seen from c.
func side(c, other [2]int) byte {
	switch {
	case other[0] < c[0]:
		return 'l'
	case other[0] > c[0]:
		return 'r'
	case other[1] < c[1]:
		return 'u'
	default:
		return 'd'
	}
}

func has(a, b, x, y byte) bool {
	return (a == x && b == y) || (a == y && b == x)
}

// drawArrow puts the arrowhead on the last cell of the route outside the
// target shape.
func (g *Grid) drawArrow(r diagram.Route, target *diagram.Node) {
	pts := g.cellsOf(r.Points)
	if len(pts) < 2 || target == nil {
		return
	}
	a, b := pts[len(pts)-2], pts[len(pts)-1]
	dx, dy := sign(b[0]-a[0]), sign(b[1]-a[1])
	if dx != 0 && dy != 0 {
		// Rounded diagonal: the final leg is the vertical one.
		dx = 0
	}
	var head rune
	switch {
	case dx > 0:
		head = '▶'
	case dx < 0:
		head = '◀'
	case dy > 0:
		head = '▼'
	default:
		head = '▲'
	}
	x, y, w, h := g.box(target.Bounds())
	cx, cy := b[0], b[1]
	for steps := 0; cx >= x && cx < x+w && cy >= y && cy < y+h && steps < w+h; steps++ {
		cx -= dx
		cy -= dy
	}
	g.set(cx, cy, head)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (g *Grid) drawPreview(from, to geometry.Point) {
	ax, ay := g.CellOf(from)
	bx, by := g.CellOf(to)
	g.segment([2]int{ax, ay}, [2]int{bx, by}, line{'·', '·'})
}
