package diagram

import (
	"math"

	"flowlane/pkg/geometry"
)

// Route is the derived presentation of a connection.
type Route struct {
	// Points is the orthogonal polyline from the source anchor to the target anchor.
	Points []geometry.Point
	// Path is Points with rounded interior corners.
	Path geometry.Path
	// Label is nil when the connection has no name.
	Label *LabelPlacement
	// Handle is where the bend can be grabbed. It is nil when the
	// connection has no midpoint.
	Handle *geometry.Point
}

// LabelPlacement is the anchor point of a connection label.
type LabelPlacement struct {
	Text     string
	Position geometry.Point
}

// Route computes the path of a connection from the current geometry of its
// endpoints. It reports false when either endpoint node is missing.
func (s *Store) Route(connID string) (Route, bool) {
	c, ok := s.conns[connID]
	if !ok {
		return Route{}, false
	}
	src, ok1 := s.nodes[c.SourceID]
	dst, ok2 := s.nodes[c.TargetID]
	if !ok1 || !ok2 {
		return Route{}, false
	}
	a := src.Anchor(c.SourcePort)
	b := dst.Anchor(c.TargetPort)

	var r Route
	var logical geometry.Point
	switch {
	case !c.sameOrientation():
		corner := geometry.Pt(a.X, b.Y)
		if c.SourcePort.Horizontal() {
			corner = geometry.Pt(b.X, a.Y)
		}
		r.Points = []geometry.Point{a, corner, b}
		logical = geometry.Mid(a, b)
	case c.MidPoint == nil:
		// Anchors already aligned on the bend axis: a straight segment.
		r.Points = []geometry.Point{a, b}
		logical = geometry.Mid(a, b)
	default:
		coord := s.midPointCoord(c.MidPoint)
		if c.MidPoint.Vertical {
			r.Points = geometry.Simplify([]geometry.Point{a, geometry.Pt(coord, a.Y), geometry.Pt(coord, b.Y), b})
			logical = geometry.Pt(coord, (a.Y+b.Y)/2)
		} else {
			r.Points = geometry.Simplify([]geometry.Point{a, geometry.Pt(a.X, coord), geometry.Pt(b.X, coord), b})
			logical = geometry.Pt((a.X+b.X)/2, coord)
		}
		h := logical
		r.Handle = &h
	}
	r.Path = geometry.RoundedPath(r.Points, geometry.CornerRadius)

	if c.Name != "" {
		pos := logical
		dx, dy := math.Abs(b.X-a.X)*0.5, math.Abs(b.Y-a.Y)*0.5
		switch c.TextAlignH {
		case AlignLeft:
			pos.X -= dx
		case AlignRight:
			pos.X += dx
		}
		switch c.TextAlignV {
		case AlignTop:
			pos.Y -= dy
		case AlignBottom:
			pos.Y += dy
		}
		r.Label = &LabelPlacement{Text: c.Name, Position: pos}
	}
	return r, true
}

// SetMidPointFromPointer moves the bend of a same-orientation connection to
// the pointer's perpendicular coordinate.
func (s *Store) SetMidPointFromPointer(connID string, pt geometry.Point) bool {
	c, ok := s.conns[connID]
	if !ok || !c.sameOrientation() {
		return false
	}
	vertical := c.SourcePort.Horizontal()
	coord := pt.Y
	if vertical {
		coord = pt.X
	}
	c.MidPoint = s.anchorMidPoint(c, coord, vertical)
	s.emit(EventConnectionChanged, c.ID)
	return true
}

// recompute normalizes the stored routing state of a connection against the
// current geometry. The midpoint is dropped for mixed orientations, created
// with its default position when missing, and converted between
// pool-relative and absolute form so its canvas position is preserved
// whenever endpoint pool membership changes.
func (s *Store) recompute(c *Connection) {
	src, ok1 := s.nodes[c.SourceID]
	dst, ok2 := s.nodes[c.TargetID]
	if !ok1 || !ok2 {
		return
	}
	if !c.sameOrientation() {
		c.MidPoint = nil
		return
	}
	vertical := c.SourcePort.Horizontal()
	if c.MidPoint != nil && c.MidPoint.Vertical != vertical {
		c.MidPoint = nil
	}
	if c.MidPoint != nil {
		c.MidPoint = s.anchorMidPoint(c, s.midPointCoord(c.MidPoint), vertical)
		return
	}

	a := src.Anchor(c.SourcePort)
	b := dst.Anchor(c.TargetPort)
	if vertical && geometry.Near(a.Y, b.Y) || !vertical && geometry.Near(a.X, b.X) {
		return
	}
	coord := (a.Y + b.Y) / 2
	if vertical {
		coord = (a.X + b.X) / 2
	}
	c.MidPoint = s.anchorMidPoint(c, coord, vertical)
}

// anchorMidPoint builds a midpoint at an absolute canvas coordinate, stored
// relative to the endpoints' pool when both share one.
func (s *Store) anchorMidPoint(c *Connection, coord float64, vertical bool) *MidPoint {
	m := &MidPoint{Coord: coord, Vertical: vertical}
	if p := s.sharedPool(c); p != nil {
		m.PoolRelative = true
		m.PoolID = p.ID
		m.Coord = coord - poolAxis(p, vertical)
	}
	return m
}

// midPointCoord returns the absolute canvas coordinate of a midpoint.
func (s *Store) midPointCoord(m *MidPoint) float64 {
	if !m.PoolRelative {
		return m.Coord
	}
	if p, ok := s.pools[m.PoolID]; ok {
		return m.Coord + poolAxis(p, m.Vertical)
	}
	return m.Coord
}

func (s *Store) sharedPool(c *Connection) *Pool {
	src, ok1 := s.nodes[c.SourceID]
	dst, ok2 := s.nodes[c.TargetID]
	if !ok1 || !ok2 || src.PoolID == "" || src.PoolID != dst.PoolID {
		return nil
	}
	p, ok := s.pools[src.PoolID]
	if !ok {
		return nil
	}
	return p
}

func poolAxis(p *Pool, vertical bool) float64 {
	if vertical {
		return p.Position.X
	}
	return p.Position.Y
}
