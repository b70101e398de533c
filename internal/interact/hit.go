package interact

import (
	"math"

	"flowlane/internal/diagram"
	"flowlane/pkg/geometry"
)

// TargetKind is what a pointer-down landed on, in decreasing priority.
type TargetKind int

const (
	TargetCanvas TargetKind = iota
	TargetPort
	TargetHandle
	TargetNode
	TargetLaneResize
	TargetPoolResize
	TargetPool
	TargetConnection
)

// Hit describes the topmost target under a canvas point.
type Hit struct {
	Kind   TargetKind
	ID     string // node, pool or connection id
	LaneID string
	Port   diagram.Port
}

// Tolerance holds hit radii in canvas units.
type Tolerance struct {
	Port   float64
	Handle float64
	Edge   float64
	Line   float64
}

// Scaled converts screen-pixel radii to canvas units at the given zoom.
func (t Tolerance) Scaled(scale float64) Tolerance {
	if scale <= 0 {
		return t
	}
	return Tolerance{Port: t.Port / scale, Handle: t.Handle / scale, Edge: t.Edge / scale, Line: t.Line / scale}
}

// DefaultTolerance is measured in screen pixels.
var DefaultTolerance = Tolerance{Port: 8, Handle: 8, Edge: 5, Line: 5}

// HitTest finds the target under a canvas point. Priority is port, bend
// handle, node body, lane resize handle, pool resize handle, pool body,
// connection line, then empty canvas. Later-created nodes are on top.
func HitTest(s *diagram.Store, pt geometry.Point, tol Tolerance) Hit {
	nodes := s.Nodes()

	if h, ok := portAt(nodes, pt, tol.Port, ""); ok {
		return h
	}

	conns := s.Connections()
	for i := len(conns) - 1; i >= 0; i-- {
		r, ok := s.Route(conns[i].ID)
		if ok && r.Handle != nil && r.Handle.Distance(pt) <= tol.Handle {
			return Hit{Kind: TargetHandle, ID: conns[i].ID}
		}
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Bounds().Contains(pt) {
			return Hit{Kind: TargetNode, ID: nodes[i].ID}
		}
	}

	pools := s.Pools()
	for i := len(pools) - 1; i >= 0; i-- {
		p := pools[i]
		if pt.X < p.Position.X || pt.X > p.Position.X+p.Width {
			continue
		}
		for j, l := range p.Lanes {
			if math.Abs(pt.Y-p.LaneBand(j).Bottom()) <= tol.Edge {
				return Hit{Kind: TargetLaneResize, ID: p.ID, LaneID: l.ID}
			}
		}
	}
	for i := len(pools) - 1; i >= 0; i-- {
		b := pools[i].Bounds()
		if math.Abs(pt.X-b.Right()) <= tol.Edge && pt.Y >= b.Y && pt.Y <= b.Bottom() {
			return Hit{Kind: TargetPoolResize, ID: pools[i].ID}
		}
	}
	for i := len(pools) - 1; i >= 0; i-- {
		p := pools[i]
		if !p.Bounds().Contains(pt) {
			continue
		}
		h := Hit{Kind: TargetPool, ID: p.ID}
		for j, l := range p.Lanes {
			if p.LaneBand(j).Contains(pt) {
				h.LaneID = l.ID
				break
			}
		}
		return h
	}

	for i := len(conns) - 1; i >= 0; i-- {
		r, ok := s.Route(conns[i].ID)
		if !ok {
			continue
		}
		for j := 1; j < len(r.Points); j++ {
			if geometry.DistanceToSegment(pt, r.Points[j-1], r.Points[j]) <= tol.Line {
				return Hit{Kind: TargetConnection, ID: conns[i].ID}
			}
		}
	}
	return Hit{Kind: TargetCanvas}
}

// portAt returns the nearest port within radius, skipping node exclude.
func portAt(nodes []*diagram.Node, pt geometry.Point, radius float64, exclude string) (Hit, bool) {
	best, found := Hit{}, false
	bestDist := radius
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.ID == exclude {
			continue
		}
		for _, port := range diagram.Ports {
			if d := n.Anchor(port).Distance(pt); d < bestDist || !found && d <= bestDist {
				best, found, bestDist = Hit{Kind: TargetPort, ID: n.ID, Port: port}, true, d
			}
		}
	}
	return best, found
}
