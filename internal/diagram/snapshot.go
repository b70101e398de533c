package diagram

import (
	"fmt"
	"strconv"
	"strings"

	"flowlane/pkg/geometry"
)

// NodeRecord is the exported shape of a node. X and Y are the top-left corner.
type NodeRecord struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Label    string   `json:"label"`
	Memo     string   `json:"memo"`
	LaneID   *string  `json:"laneId"`
	PoolID   *string  `json:"poolId"`
	OffsetX  *Number  `json:"offsetX"`
	OffsetY  *Number  `json:"offsetY"`
	Timing   string   `json:"timing,omitempty"`
	Method   string   `json:"method,omitempty"`
	Code     string   `json:"code,omitempty"`
	Effort   string   `json:"effort,omitempty"`
	Decision string   `json:"decision,omitempty"`
}

// Number is a coordinate that decodes from a JSON number or a numeric
// string. Older files store element offsets as strings. It always encodes
// as a number.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	text = strings.TrimSpace(strings.Trim(text, `"`))
	if text == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = Number(v)
	return nil
}

// MidPointRecord is the exported shape of a connection midpoint. Only the
// coordinate selected by Vertical is meaningful.
type MidPointRecord struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Vertical     bool    `json:"vertical"`
	PoolRelative bool    `json:"poolRelative"`
	PoolID       string  `json:"poolId,omitempty"`
}

// ConnectionRecord is the exported shape of a connection.
type ConnectionRecord struct {
	ID         string          `json:"id"`
	SourceID   string          `json:"sourceId"`
	SourcePort Port            `json:"sourcePort"`
	TargetID   string          `json:"targetId"`
	TargetPort Port            `json:"targetPort"`
	Name       string          `json:"name"`
	Type       Style           `json:"type"`
	Memo       string          `json:"memo"`
	TextAlignH AlignH          `json:"textAlignH"`
	TextAlignV AlignV          `json:"textAlignV"`
	MidPoint   *MidPointRecord `json:"midPoint"`
}

type LaneRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Height        float64  `json:"height"`
	ChildElements []string `json:"childElements"`
}

type PoolRecord struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Memo   string       `json:"memo"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Lanes  []LaneRecord `json:"lanes"`
}

// Snapshot is the serializable state of one diagram.
type Snapshot struct {
	Nodes       []NodeRecord       `json:"elements"`
	Connections []ConnectionRecord `json:"connections"`
	Pools       []PoolRecord       `json:"pools"`
	NextID      int                `json:"nextId,omitempty"`
}

// Snapshot exports the whole store.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes:       make([]NodeRecord, 0, len(s.nodes)),
		Connections: make([]ConnectionRecord, 0, len(s.conns)),
		Pools:       make([]PoolRecord, 0, len(s.pools)),
		NextID:      s.nextID,
	}
	for _, n := range s.Nodes() {
		snap.Nodes = append(snap.Nodes, nodeRecord(n))
	}
	for _, c := range s.Connections() {
		snap.Connections = append(snap.Connections, connectionRecord(c))
	}
	for _, p := range s.Pools() {
		snap.Pools = append(snap.Pools, poolRecord(p))
	}
	return snap
}

func nodeRecord(n *Node) NodeRecord {
	rec := NodeRecord{
		ID:     n.ID,
		Type:   n.Type,
		X:      n.Position.X,
		Y:      n.Position.Y,
		Width:  n.Size.Width,
		Height: n.Size.Height,
		Label:  n.Label,
		Memo:   n.Memo,
	}
	if n.assigned() {
		pool, lane := n.PoolID, n.LaneID
		rec.PoolID, rec.LaneID = &pool, &lane
	}
	if n.Offset != nil {
		ox, oy := Number(n.Offset.X), Number(n.Offset.Y)
		rec.OffsetX, rec.OffsetY = &ox, &oy
	}
	switch a := n.Attrs.(type) {
	case *EventAttrs:
		rec.Timing, rec.Method = a.Timing, a.Method
	case *TaskAttrs:
		rec.Code, rec.Effort, rec.Method = a.Code, a.Effort, a.Method
	case *GatewayAttrs:
		rec.Decision = a.Decision
	}
	return rec
}

func connectionRecord(c *Connection) ConnectionRecord {
	rec := ConnectionRecord{
		ID:         c.ID,
		SourceID:   c.SourceID,
		SourcePort: c.SourcePort,
		TargetID:   c.TargetID,
		TargetPort: c.TargetPort,
		Name:       c.Name,
		Type:       c.Style,
		Memo:       c.Memo,
		TextAlignH: c.TextAlignH,
		TextAlignV: c.TextAlignV,
	}
	if m := c.MidPoint; m != nil {
		rec.MidPoint = &MidPointRecord{Vertical: m.Vertical, PoolRelative: m.PoolRelative, PoolID: m.PoolID}
		if m.Vertical {
			rec.MidPoint.X = m.Coord
		} else {
			rec.MidPoint.Y = m.Coord
		}
	}
	return rec
}

func poolRecord(p *Pool) PoolRecord {
	rec := PoolRecord{
		ID:     p.ID,
		Name:   p.Name,
		Memo:   p.Memo,
		X:      p.Position.X,
		Y:      p.Position.Y,
		Width:  p.Width,
		Height: p.Height(),
		Lanes:  make([]LaneRecord, 0, len(p.Lanes)),
	}
	for _, l := range p.Lanes {
		rec.Lanes = append(rec.Lanes, LaneRecord{
			ID:            l.ID,
			Name:          l.Name,
			Height:        l.Height,
			ChildElements: append([]string{}, l.Children...),
		})
	}
	return rec
}

// RestoreNode recreates a node from a record, keeping its id. Membership is
// taken from the record when it names an existing lane of an existing
// pool, otherwise it is recomputed from the node's geometry.
func (s *Store) RestoreNode(rec NodeRecord) (*Node, error) {
	t, err := ParseNodeType(string(rec.Type))
	if err != nil {
		return nil, fmt.Errorf("restore node %q: %w", rec.ID, err)
	}
	if rec.ID == "" || s.idTaken(rec.ID) {
		return nil, fmt.Errorf("restore node %q: id missing or in use", rec.ID)
	}
	size := t.DefaultSize()
	if rec.Width > 0 && rec.Height > 0 {
		size = geometry.Sz(rec.Width, rec.Height)
	}
	n := &Node{
		ID:       rec.ID,
		Type:     t,
		Position: geometry.Pt(rec.X, rec.Y),
		Size:     size,
		Label:    rec.Label,
		Memo:     rec.Memo,
		Attrs:    NewAttributes(t),
	}
	switch a := n.Attrs.(type) {
	case *EventAttrs:
		a.Timing, a.Method = rec.Timing, rec.Method
	case *TaskAttrs:
		a.Code, a.Effort, a.Method = rec.Code, rec.Effort, rec.Method
	case *GatewayAttrs:
		a.Decision = rec.Decision
	}
	s.observeID(n.ID)
	s.addNode(n)

	if rec.PoolID != nil && rec.LaneID != nil {
		if p, ok := s.pools[*rec.PoolID]; ok {
			if l, ok := p.Lane(*rec.LaneID); ok {
				s.attach(n, p, l)
				return n, nil
			}
		}
	}
	s.ReassignContainment(n.ID)
	return n, nil
}

// RestoreConnection recreates a connection from a record, keeping its id.
// Unlike CreateConnection it accepts endpoints that do not exist; such a
// connection is kept but never routed.
func (s *Store) RestoreConnection(rec ConnectionRecord) (*Connection, bool) {
	if rec.ID != "" && s.idTaken(rec.ID) {
		s.log.Debug().Str("id", rec.ID).Msg("connection restore refused: id in use")
		return nil, false
	}
	c := &Connection{
		ID:         rec.ID,
		SourceID:   rec.SourceID,
		SourcePort: rec.SourcePort,
		TargetID:   rec.TargetID,
		TargetPort: rec.TargetPort,
		Name:       rec.Name,
		Style:      rec.Type,
		Memo:       rec.Memo,
		TextAlignH: rec.TextAlignH,
		TextAlignV: rec.TextAlignV,
	}
	if c.Style != StyleDashed {
		c.Style = StyleSolid
	}
	if c.TextAlignH == "" {
		c.TextAlignH = AlignCenter
	}
	if c.TextAlignV == "" {
		c.TextAlignV = AlignMiddle
	}
	if !s.acceptConnection(c) {
		return nil, false
	}
	if m := rec.MidPoint; m != nil {
		c.MidPoint = &MidPoint{Coord: m.Y, Vertical: m.Vertical, PoolRelative: m.PoolRelative, PoolID: m.PoolID}
		if m.Vertical {
			c.MidPoint.Coord = m.X
		}
		if c.MidPoint.PoolRelative && c.MidPoint.PoolID == "" {
			if p := s.sharedPool(c); p != nil {
				c.MidPoint.PoolID = p.ID
			} else {
				c.MidPoint.PoolRelative = false
			}
		}
	}
	if c.ID == "" {
		c.ID = s.newID("flow")
	} else {
		s.observeID(c.ID)
	}
	s.addConnection(c)
	return c, true
}

// Restore replaces the store contents with a snapshot, restoring pools,
// then nodes, then connections. The snapshot is loaded into a scratch store
// first, so on error the live contents are unchanged.
func (s *Store) Restore(snap Snapshot) error {
	tmp := NewStore(WithLogger(s.log))
	if err := tmp.load(snap); err != nil {
		return err
	}
	tmp.listeners = s.listeners
	*s = *tmp
	s.emit(EventStructureChanged, "")
	return nil
}

// LoadSnapshot builds a new store from a snapshot.
func LoadSnapshot(snap Snapshot, opts ...Option) (*Store, error) {
	s := NewStore(opts...)
	if err := s.load(snap); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(snap Snapshot) error {
	// Membership listed only on the lane side, as older files do.
	listed := make(map[string][2]string)
	for _, pr := range snap.Pools {
		if _, err := s.RestorePool(pr); err != nil {
			return err
		}
		for _, lr := range pr.Lanes {
			for _, nid := range lr.ChildElements {
				listed[nid] = [2]string{pr.ID, lr.ID}
			}
		}
	}
	for _, nr := range snap.Nodes {
		if nr.LaneID == nil {
			if m, ok := listed[nr.ID]; ok {
				nr.PoolID, nr.LaneID = &m[0], &m[1]
			}
		}
		if _, err := s.RestoreNode(nr); err != nil {
			return err
		}
	}
	for _, pr := range snap.Pools {
		p := s.pools[pr.ID]
		for _, lr := range pr.Lanes {
			if l, ok := p.Lane(lr.ID); ok {
				l.Children = orderLike(l.Children, lr.ChildElements)
			}
		}
	}
	for _, cr := range snap.Connections {
		if _, ok := s.RestoreConnection(cr); !ok {
			s.log.Warn().Str("id", cr.ID).Msg("skipped invalid connection")
		}
	}
	s.nextID = max(s.nextID, snap.NextID)
	return nil
}

// orderLike sorts ids into the order they appear in ref; ids missing from
// ref keep their relative order at the end.
func orderLike(ids, ref []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ref {
		if indexOf(ids, id) >= 0 && indexOf(out, id) < 0 {
			out = append(out, id)
		}
	}
	for _, id := range ids {
		if indexOf(out, id) < 0 {
			out = append(out, id)
		}
	}
	return out
}
