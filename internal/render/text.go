package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"flowlane/internal/diagram"
	"flowlane/pkg/geometry"
)

// Bounds returns the canvas box covering every pool, node and routed
// connection. It reports false for an empty store.
func Bounds(s *diagram.Store) (geometry.Rect, bool) {
	var r geometry.Rect
	found := false
	add := func(b geometry.Rect) {
		if !found {
			r, found = b, true
			return
		}
		r = r.Union(b)
	}
	for _, p := range s.Pools() {
		add(p.Bounds())
	}
	for _, n := range s.Nodes() {
		add(n.Bounds())
	}
	for _, c := range s.Connections() {
		if route, ok := s.Route(c.ID); ok {
			add(geometry.BoundingBox(route.Points))
		}
	}
	return r, found
}

const (
	// textPadding is the margin in characters around a text export.
	textPadding  = 2
	// maxTextCells bounds each side of a text export, in characters.
	maxTextCells = 4000
)

// Text writes the whole diagram as it appears on the terminal at 100% zoom,
// without selection or preview.
func Text(w io.Writer, s *diagram.Store, cell Cell) error {
	b, ok := Bounds(s)
	if !ok {
		return ErrEmpty
	}
	if cell.Width <= 0 || cell.Height <= 0 {
		cell = DefaultCell
	}
	view := geometry.NewViewport()
	view.Pan = geometry.Pt(
		-b.X+textPadding*cell.Width,
		-b.Y+textPadding*cell.Height,
	)
	cols := math.Ceil(b.Width/cell.Width) + 2*textPadding + 1
	rows := math.Ceil(b.Height/cell.Height) + 2*textPadding + 1
	if cols > maxTextCells || rows > maxTextCells {
		return fmt.Errorf("%w: %.0fx%.0f characters", ErrTooLarge, cols, rows)
	}
	width, height := int(cols), int(rows)

	for _, line := range Render(s, view, cell, width, height, Options{}) {
		if _, err := io.WriteString(w, strings.TrimRight(line, " ")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
