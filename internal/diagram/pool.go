package diagram

import (
	"fmt"
	"math"

	"flowlane/pkg/geometry"
)

const (
	DefaultPoolWidth  = 800.0
	DefaultLaneHeight = 200.0
	MinPoolWidth      = 200.0
	MinLaneHeight     = 100.0
	// PoolHeaderWidth is the band on the left of a pool that carries its name.
	PoolHeaderWidth = 40.0
	// LaneHeaderWidth is the band right of the pool header that carries lane names.
	LaneHeaderWidth = 30.0
)

// Height is the sum of the lane heights.
func (p *Pool) Height() float64 {
	h := 0.0
	for _, l := range p.Lanes {
		h += l.Height
	}
	return h
}

// Bounds returns the pool's box in canvas space.
func (p *Pool) Bounds() geometry.Rect {
	return geometry.NewRect(p.Position, geometry.Sz(p.Width, p.Height()))
}

// LaneIndex returns the position of a lane in the stacking order, or -1.
func (p *Pool) LaneIndex(laneID string) int {
	for i, l := range p.Lanes {
		if l.ID == laneID {
			return i
		}
	}
	return -1
}

// Lane looks up a lane by id.
func (p *Pool) Lane(laneID string) (*Lane, bool) {
	if i := p.LaneIndex(laneID); i >= 0 {
		return p.Lanes[i], true
	}
	return nil, false
}

// LaneTop returns the canvas Y of the top edge of the i-th lane.
func (p *Pool) LaneTop(i int) float64 {
	y := p.Position.Y
	for _, l := range p.Lanes[:i] {
		y += l.Height
	}
	return y
}

// LaneBand returns the full-width box of the i-th lane.
func (p *Pool) LaneBand(i int) geometry.Rect {
	return geometry.Rect{X: p.Position.X, Y: p.LaneTop(i), Width: p.Width, Height: p.Lanes[i].Height}
}

// ToRelative converts a canvas point to an offset from the pool origin.
func (p *Pool) ToRelative(pt geometry.Point) geometry.Point {
	return pt.Sub(p.Position)
}

// ToAbsolute converts a pool-relative offset back to canvas space.
func (p *Pool) ToAbsolute(off geometry.Point) geometry.Point {
	return off.Add(p.Position)
}

func (p *Pool) laneOf(nodeID string) int {
	for i, l := range p.Lanes {
		if l.has(nodeID) {
			return i
		}
	}
	return -1
}

// CreatePool drops a default pool with a single lane centered on a canvas point.
func (s *Store) CreatePool(center geometry.Point) *Pool {
	p := &Pool{
		ID:       s.newID("pool"),
		Position: geometry.Pt(center.X-DefaultPoolWidth/2, center.Y-DefaultLaneHeight/2),
		Width:    DefaultPoolWidth,
		Name:     "Pool",
	}
	s.pools[p.ID] = p
	s.poolOrder = append(s.poolOrder, p.ID)
	s.appendLane(p, nil)
	s.emit(EventPoolChanged, p.ID)
	return p
}

// RestorePool recreates a pool from a record, keeping its ids. Lane children
// are attached when the nodes themselves are restored.
func (s *Store) RestorePool(rec PoolRecord) (*Pool, error) {
	if rec.ID == "" || s.idTaken(rec.ID) {
		return nil, fmt.Errorf("restore pool %q: id missing or in use", rec.ID)
	}
	p := &Pool{
		ID:       rec.ID,
		Position: geometry.Pt(rec.X, rec.Y),
		Width:    math.Max(rec.Width, MinPoolWidth),
		Name:     rec.Name,
		Memo:     rec.Memo,
	}
	s.observeID(p.ID)
	s.pools[p.ID] = p
	s.poolOrder = append(s.poolOrder, p.ID)
	for i := range rec.Lanes {
		lr := rec.Lanes[i]
		if lr.ID != "" && s.idTaken(lr.ID) {
			lr.ID = ""
		}
		s.appendLane(p, &lr)
	}
	if len(p.Lanes) == 0 {
		// Older files store only the pool height.
		lr := LaneRecord{Height: rec.Height}
		s.appendLane(p, &lr)
	}
	s.emit(EventPoolChanged, p.ID)
	return p, nil
}

// AddLane appends a lane at the bottom of a pool. A nil record gives the
// default name and height.
func (s *Store) AddLane(poolID string, rec *LaneRecord) (*Lane, error) {
	p, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("add lane to %q: %w", poolID, ErrNotFound)
	}
	if rec != nil && rec.ID != "" && s.idTaken(rec.ID) {
		return nil, fmt.Errorf("add lane %q: id in use", rec.ID)
	}
	l := s.appendLane(p, rec)
	s.emit(EventPoolChanged, p.ID)
	return l, nil
}

func (s *Store) appendLane(p *Pool, rec *LaneRecord) *Lane {
	l := &Lane{
		Name:   fmt.Sprintf("Lane %d", len(p.Lanes)+1),
		Height: DefaultLaneHeight,
	}
	if rec != nil {
		l.ID = rec.ID
		if rec.Name != "" {
			l.Name = rec.Name
		}
		if rec.Height > 0 {
			l.Height = math.Max(rec.Height, MinLaneHeight)
		}
	}
	if l.ID == "" {
		l.ID = s.newID("lane")
	} else {
		s.observeID(l.ID)
	}
	p.Lanes = append(p.Lanes, l)
	return l
}

// DeletePool removes a pool. Its child nodes stay on the canvas unassigned.
func (s *Store) DeletePool(id string) bool {
	p, ok := s.pools[id]
	if !ok {
		return false
	}
	var children []string
	for _, l := range p.Lanes {
		children = append(children, l.Children...)
	}
	for _, nid := range children {
		if n, ok := s.nodes[nid]; ok {
			n.PoolID, n.LaneID, n.Offset = "", "", nil
		}
	}
	// Reroute while the pool is still known so relative midpoints can be
	// resolved to absolute ones.
	for _, nid := range children {
		s.recomputeNode(nid)
	}
	delete(s.pools, id)
	s.poolOrder = removeID(s.poolOrder, id)
	for _, nid := range children {
		s.emit(EventNodeChanged, nid)
	}
	s.emit(EventPoolChanged, id)
	return true
}

// MovePoolTo places a pool's origin at a canvas point and carries every
// child node along using its stored offset.
func (s *Store) MovePoolTo(id string, pos geometry.Point) bool {
	p, ok := s.pools[id]
	if !ok {
		return false
	}
	p.Position = pos
	for _, l := range p.Lanes {
		for _, nid := range l.Children {
			n := s.nodes[nid]
			if n.Offset != nil {
				n.Position = p.ToAbsolute(*n.Offset)
			}
		}
	}
	s.recomputePool(p)
	s.emit(EventPoolChanged, id)
	return true
}

// ResizePool sets the pool width, clamped to MinPoolWidth.
func (s *Store) ResizePool(id string, width float64) bool {
	p, ok := s.pools[id]
	if !ok {
		return false
	}
	p.Width = math.Max(width, MinPoolWidth)
	s.emit(EventPoolChanged, id)
	return true
}

// ResizeLane sets a lane's height, clamped to MinLaneHeight. Nodes in the
// lanes below shift by the height change; nodes above stay put.
func (s *Store) ResizeLane(poolID, laneID string, height float64) bool {
	p, ok := s.pools[poolID]
	if !ok {
		return false
	}
	i := p.LaneIndex(laneID)
	if i < 0 {
		return false
	}
	height = math.Max(height, MinLaneHeight)
	delta := height - p.Lanes[i].Height
	if delta == 0 {
		return true
	}
	p.Lanes[i].Height = height
	for _, l := range p.Lanes[i+1:] {
		s.shiftChildren(p, l, delta)
	}
	s.recomputePool(p)
	s.emit(EventPoolChanged, poolID)
	return true
}

// DeleteLane removes a lane. The last lane of a pool cannot be removed.
// Its children move to the previous lane, or to the next one when the
// first lane is removed, and are pulled inside that lane's band. Lanes
// below the removed one move up.
func (s *Store) DeleteLane(poolID, laneID string) bool {
	p, ok := s.pools[poolID]
	if !ok {
		return false
	}
	i := p.LaneIndex(laneID)
	if i < 0 {
		return false
	}
	if len(p.Lanes) == 1 {
		s.log.Debug().Str("pool", poolID).Msg("lane delete refused: last lane")
		return false
	}
	removed := p.Lanes[i]
	target := i - 1
	if i == 0 {
		target = 1
	}
	targetLane := p.Lanes[target]
	for _, l := range p.Lanes[i+1:] {
		s.shiftChildren(p, l, -removed.Height)
	}
	p.Lanes = append(p.Lanes[:i], p.Lanes[i+1:]...)
	ti := p.LaneIndex(targetLane.ID)
	band := p.LaneBand(ti)
	for _, nid := range removed.Children {
		n := s.nodes[nid]
		n.LaneID = targetLane.ID
		targetLane.Children = append(targetLane.Children, nid)
		n.Position.Y = clampCenter(n.Position.Y, n.Size.Height, band.Y, band.Bottom())
		off := p.ToRelative(n.Position)
		n.Offset = &off
		s.emit(EventNodeChanged, nid)
	}
	s.recomputePool(p)
	s.emit(EventPoolChanged, poolID)
	return true
}

// MoveLaneUp swaps a lane with the one above it. Nodes travel with their lane.
func (s *Store) MoveLaneUp(poolID, laneID string) bool {
	p, ok := s.pools[poolID]
	if !ok {
		return false
	}
	i := p.LaneIndex(laneID)
	if i <= 0 {
		return false
	}
	s.swapLanes(p, i-1)
	return true
}

// MoveLaneDown swaps a lane with the one below it.
func (s *Store) MoveLaneDown(poolID, laneID string) bool {
	p, ok := s.pools[poolID]
	if !ok {
		return false
	}
	i := p.LaneIndex(laneID)
	if i < 0 || i >= len(p.Lanes)-1 {
		return false
	}
	s.swapLanes(p, i)
	return true
}

// swapLanes exchanges lanes i and i+1.
func (s *Store) swapLanes(p *Pool, i int) {
	upper, lower := p.Lanes[i], p.Lanes[i+1]
	s.shiftChildren(p, upper, lower.Height)
	s.shiftChildren(p, lower, -upper.Height)
	p.Lanes[i], p.Lanes[i+1] = lower, upper
	s.recomputePool(p)
	s.emit(EventPoolChanged, p.ID)
}

func (s *Store) shiftChildren(p *Pool, l *Lane, dy float64) {
	for _, nid := range l.Children {
		n := s.nodes[nid]
		n.Position.Y += dy
		off := p.ToRelative(n.Position)
		n.Offset = &off
		s.emit(EventNodeChanged, nid)
	}
}

// clampCenter returns a top coordinate that keeps an item of height h
// centered inside [lo, hi].
func clampCenter(top, h, lo, hi float64) float64 {
	if hi-lo <= h {
		return (lo+hi)/2 - h/2
	}
	return math.Min(math.Max(top, lo), hi-h)
}
