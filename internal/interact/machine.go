package interact

import (
	"github.com/rs/zerolog"

	"flowlane/internal/diagram"
	"flowlane/pkg/geometry"
)

// Machine runs one pointer gesture at a time against a store and viewport.
// Pointer positions are in screen pixels.
type Machine struct {
	store *diagram.Store
	view  *geometry.Viewport
	tol   Tolerance
	log   zerolog.Logger

	mode   Mode
	target Hit
	last   geometry.Point

	// Connecting preview, canvas space.
	from, to geometry.Point

	selection Selection
	onSelect  func(Selection)
}

// Option configures a Machine.
type Option func(*Machine)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithTolerance overrides the screen-pixel hit radii.
func WithTolerance(t Tolerance) Option {
	return func(m *Machine) { m.tol = t }
}

// New creates an idle machine driving store through view.
func New(store *diagram.Store, view *geometry.Viewport, opts ...Option) *Machine {
	m := &Machine{
		store: store,
		view:  view,
		tol:   DefaultTolerance,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Mode() Mode { return m.mode }

func (m *Machine) Selection() Selection { return m.selection }

// OnSelect registers the callback run whenever the selection changes.
func (m *Machine) OnSelect(fn func(Selection)) {
	m.onSelect = fn
}

// Select replaces the selection.
func (m *Machine) Select(sel Selection) {
	if sel == m.selection {
		return
	}
	m.selection = sel
	if m.onSelect != nil {
		m.onSelect(sel)
	}
}

// Preview returns the rubber-band line of a connecting gesture in canvas space.
func (m *Machine) Preview() (from, to geometry.Point, ok bool) {
	if m.mode != Connecting {
		return geometry.Point{}, geometry.Point{}, false
	}
	return m.from, m.to, true
}

// Hover reports what is under a screen position without starting a gesture.
func (m *Machine) Hover(screen geometry.Point) Hit {
	return HitTest(m.store, m.view.ToCanvas(screen), m.tol.Scaled(m.view.Scale))
}

// PointerDown starts a gesture on whatever lies under the pointer. It
// returns false, and does nothing, while another gesture is active.
func (m *Machine) PointerDown(screen geometry.Point) bool {
	if m.mode != Idle {
		m.log.Debug().Stringer("mode", m.mode).Msg("pointer down ignored: gesture active")
		return false
	}
	pt := m.view.ToCanvas(screen)
	hit := HitTest(m.store, pt, m.tol.Scaled(m.view.Scale))
	m.target = hit
	m.last = screen

	switch hit.Kind {
	case TargetPort:
		n, _ := m.store.Node(hit.ID)
		m.from = n.Anchor(hit.Port)
		m.to = pt
		m.mode = Connecting
		m.Select(Selection{Kind: SelectNode, ID: hit.ID})
	case TargetHandle:
		m.mode = AdjustingFlowMidpoint
		m.Select(Selection{Kind: SelectConnection, ID: hit.ID})
	case TargetNode:
		m.mode = MovingNode
		m.Select(Selection{Kind: SelectNode, ID: hit.ID})
	case TargetLaneResize:
		m.mode = ResizingLane
		m.Select(Selection{Kind: SelectPool, ID: hit.ID, LaneID: hit.LaneID})
	case TargetPoolResize:
		m.mode = ResizingPool
		m.Select(Selection{Kind: SelectPool, ID: hit.ID})
	case TargetPool:
		m.mode = MovingPool
		m.Select(Selection{Kind: SelectPool, ID: hit.ID, LaneID: hit.LaneID})
	case TargetConnection:
		m.Select(Selection{Kind: SelectConnection, ID: hit.ID})
	default:
		m.mode = Panning
		m.Select(Selection{})
	}
	m.log.Debug().Stringer("mode", m.mode).Str("target", hit.ID).Msg("gesture started")
	return true
}

// PointerMove advances the active gesture.
func (m *Machine) PointerMove(screen geometry.Point) {
	delta := screen.Sub(m.last)
	m.last = screen
	pt := m.view.ToCanvas(screen)

	switch m.mode {
	case Panning:
		m.view.PanBy(delta.X, delta.Y)
	case MovingNode:
		if n, ok := m.store.Node(m.target.ID); ok {
			m.store.MoveNodeTo(n.ID, n.Position.Add(delta.Scale(1/m.view.Scale)))
		}
	case MovingPool:
		if p, ok := m.store.Pool(m.target.ID); ok {
			m.store.MovePoolTo(p.ID, p.Position.Add(delta.Scale(1/m.view.Scale)))
		}
	case ResizingPool:
		if p, ok := m.store.Pool(m.target.ID); ok {
			m.store.ResizePool(p.ID, pt.X-p.Position.X)
		}
	case ResizingLane:
		if p, ok := m.store.Pool(m.target.ID); ok {
			if i := p.LaneIndex(m.target.LaneID); i >= 0 {
				m.store.ResizeLane(p.ID, m.target.LaneID, pt.Y-p.LaneTop(i))
			}
		}
	case Connecting:
		m.to = pt
	case AdjustingFlowMidpoint:
		m.store.SetMidPointFromPointer(m.target.ID, pt)
	}
}

// PointerUp finishes the active gesture and returns to Idle.
func (m *Machine) PointerUp(screen geometry.Point) {
	if m.mode == Idle {
		return
	}
	m.PointerMove(screen)

	switch m.mode {
	case MovingNode:
		m.store.ReassignContainment(m.target.ID)
	case ResizingPool, ResizingLane:
		if p, ok := m.store.Pool(m.target.ID); ok {
			for _, l := range p.Lanes {
				for _, id := range append([]string(nil), l.Children...) {
					m.store.ReassignContainment(id)
				}
			}
		}
	case Connecting:
		m.finishConnection(m.view.ToCanvas(screen))
	}
	m.log.Debug().Stringer("mode", m.mode).Msg("gesture finished")
	m.mode = Idle
	m.target = Hit{}
}

func (m *Machine) finishConnection(pt geometry.Point) {
	tol := m.tol.Scaled(m.view.Scale)
	hit, ok := portAt(m.store.Nodes(), pt, tol.Port, m.target.ID)
	if !ok {
		m.log.Debug().Msg("connection abandoned: no port under pointer")
		return
	}
	c, ok := m.store.CreateConnection(m.target.ID, m.target.Port, hit.ID, hit.Port)
	if ok {
		m.Select(Selection{Kind: SelectConnection, ID: c.ID})
	}
}

// Cancel abandons the active gesture. Changes already applied stay.
func (m *Machine) Cancel() {
	if m.mode == MovingNode {
		m.store.ReassignContainment(m.target.ID)
	}
	m.mode = Idle
	m.target = Hit{}
}

// Wheel zooms by notches steps anchored at the pointer.
func (m *Machine) Wheel(screen geometry.Point, notches int) {
	m.view.ZoomAt(screen, geometry.ZoomStep*float64(notches))
}
