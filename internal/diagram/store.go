package diagram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"flowlane/pkg/geometry"
)

// Store owns every node, pool and connection of the live diagram.
//
// Entities returned by accessors are owned by the store and must only be
// changed through store methods. A Store is not safe for concurrent use.
type Store struct {
	nodes     map[string]*Node
	nodeOrder []string
	pools     map[string]*Pool
	poolOrder []string
	conns     map[string]*Connection
	connOrder []string

	nextID    int
	listeners map[EventType][]Listener
	log       zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report refused mutations.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates an empty store whose id counter starts at 1.
func NewStore(opts ...Option) *Store {
	s := &Store{
		listeners: make(map[EventType][]Listener),
		log:       zerolog.Nop(),
	}
	s.reset()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) reset() {
	s.nodes = make(map[string]*Node)
	s.nodeOrder = nil
	s.pools = make(map[string]*Pool)
	s.poolOrder = nil
	s.conns = make(map[string]*Connection)
	s.connOrder = nil
	s.nextID = 1
}

// Clear removes every entity and resets the id counter.
func (s *Store) Clear() {
	s.reset()
	s.emit(EventStructureChanged, "")
}

// NextID returns the value the shared id counter will hand out next.
func (s *Store) NextID() int { return s.nextID }

func (s *Store) newID(prefix string) string {
	id := fmt.Sprintf("%s_%d", prefix, s.nextID)
	s.nextID++
	return id
}

// observeID moves the counter past the numeric suffix of a restored id so
// generated ids never collide with it.
func (s *Store) observeID(id string) {
	i := strings.LastIndexByte(id, '_')
	if i < 0 {
		return
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return
	}
	if n >= s.nextID {
		s.nextID = n + 1
	}
}

func (s *Store) idTaken(id string) bool {
	if _, ok := s.nodes[id]; ok {
		return true
	}
	if _, ok := s.pools[id]; ok {
		return true
	}
	if _, ok := s.conns[id]; ok {
		return true
	}
	for _, p := range s.pools {
		for _, l := range p.Lanes {
			if l.ID == id {
				return true
			}
		}
	}
	return false
}

// Node looks up a node by id.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns the nodes in creation order.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id])
	}
	return out
}

// Pool looks up a pool by id.
func (s *Store) Pool(id string) (*Pool, bool) {
	p, ok := s.pools[id]
	return p, ok
}

// Pools returns the pools in creation order, which is also hit-test order.
func (s *Store) Pools() []*Pool {
	out := make([]*Pool, 0, len(s.poolOrder))
	for _, id := range s.poolOrder {
		out = append(out, s.pools[id])
	}
	return out
}

// Connection looks up a connection by id.
func (s *Store) Connection(id string) (*Connection, bool) {
	c, ok := s.conns[id]
	return c, ok
}

// Connections returns the connections in creation order.
func (s *Store) Connections() []*Connection {
	out := make([]*Connection, 0, len(s.connOrder))
	for _, id := range s.connOrder {
		out = append(out, s.conns[id])
	}
	return out
}

// ConnectionsOf returns the connections that start or end at a node.
func (s *Store) ConnectionsOf(nodeID string) []*Connection {
	var out []*Connection
	for _, id := range s.connOrder {
		if c := s.conns[id]; c.touches(nodeID) {
			out = append(out, c)
		}
	}
	return out
}

// Empty reports whether the store holds no entities.
func (s *Store) Empty() bool {
	return len(s.nodes) == 0 && len(s.pools) == 0 && len(s.conns) == 0
}

// CreateNode drops a new node of the given type centered on a canvas point.
// A node dropped inside a pool joins the lane under its center.
func (s *Store) CreateNode(t NodeType, center geometry.Point) (*Node, error) {
	if _, err := ParseNodeType(string(t)); err != nil {
		return nil, err
	}
	size := t.DefaultSize()
	n := &Node{
		ID:       s.newID("element"),
		Type:     t,
		Position: geometry.Pt(center.X-size.Width/2, center.Y-size.Height/2),
		Size:     size,
		Label:    t.DefaultLabel(),
		Attrs:    NewAttributes(t),
	}
	s.addNode(n)
	s.ReassignContainment(n.ID)
	s.log.Debug().Str("id", n.ID).Str("type", string(t)).Msg("node created")
	return n, nil
}

func (s *Store) addNode(n *Node) {
	s.nodes[n.ID] = n
	s.nodeOrder = append(s.nodeOrder, n.ID)
	s.emit(EventNodeChanged, n.ID)
}

// DeleteNode removes a node, its lane membership and every connection that
// touches it.
func (s *Store) DeleteNode(id string) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	for _, c := range s.ConnectionsOf(id) {
		s.DeleteConnection(c.ID)
	}
	s.detach(n)
	delete(s.nodes, id)
	s.nodeOrder = removeID(s.nodeOrder, id)
	s.emit(EventNodeChanged, id)
	return true
}

// MoveNodeTo places a node's top-left corner at a canvas point and reroutes
// its connections. Lane membership is left alone until ReassignContainment
// runs, so a drag can pass over other lanes without churning membership.
func (s *Store) MoveNodeTo(id string, pos geometry.Point) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	n.Position = pos
	if p, ok := s.pools[n.PoolID]; ok && n.Offset != nil {
		off := pos.Sub(p.Position)
		n.Offset = &off
	}
	s.recomputeNode(id)
	s.emit(EventNodeChanged, id)
	return true
}

// CreateConnection connects two distinct existing nodes. It refuses self
// connections, unknown endpoints and duplicates of an existing
// (source, sourcePort, target, targetPort) tuple.
func (s *Store) CreateConnection(sourceID string, sourcePort Port, targetID string, targetPort Port) (*Connection, bool) {
	if _, ok := s.nodes[sourceID]; !ok {
		s.log.Debug().Str("source", sourceID).Msg("connection refused: unknown source")
		return nil, false
	}
	if _, ok := s.nodes[targetID]; !ok {
		s.log.Debug().Str("target", targetID).Msg("connection refused: unknown target")
		return nil, false
	}
	c := &Connection{
		SourceID:   sourceID,
		SourcePort: sourcePort,
		TargetID:   targetID,
		TargetPort: targetPort,
		Style:      StyleSolid,
		TextAlignH: AlignCenter,
		TextAlignV: AlignMiddle,
	}
	if !s.acceptConnection(c) {
		return nil, false
	}
	c.ID = s.newID("flow")
	s.addConnection(c)
	return c, true
}

func (s *Store) acceptConnection(c *Connection) bool {
	if !c.SourcePort.Valid() || !c.TargetPort.Valid() {
		s.log.Debug().Str("source_port", string(c.SourcePort)).Str("target_port", string(c.TargetPort)).
			Msg("connection refused: invalid port")
		return false
	}
	if c.SourceID == c.TargetID {
		s.log.Debug().Str("node", c.SourceID).Msg("connection refused: self connection")
		return false
	}
	if dup := s.findConnection(c.SourceID, c.SourcePort, c.TargetID, c.TargetPort); dup != nil {
		s.log.Debug().Str("existing", dup.ID).Msg("connection refused: duplicate")
		return false
	}
	return true
}

func (s *Store) findConnection(sourceID string, sourcePort Port, targetID string, targetPort Port) *Connection {
	for _, c := range s.conns {
		if c.SourceID == sourceID && c.SourcePort == sourcePort &&
			c.TargetID == targetID && c.TargetPort == targetPort {
			return c
		}
	}
	return nil
}

func (s *Store) addConnection(c *Connection) {
	s.conns[c.ID] = c
	s.connOrder = append(s.connOrder, c.ID)
	s.recompute(c)
	s.emit(EventConnectionChanged, c.ID)
}

// DeleteConnection removes a connection.
func (s *Store) DeleteConnection(id string) bool {
	if _, ok := s.conns[id]; !ok {
		return false
	}
	delete(s.conns, id)
	s.connOrder = removeID(s.connOrder, id)
	s.emit(EventConnectionChanged, id)
	return true
}

// Delete removes whatever entity carries the id.
func (s *Store) Delete(id string) bool {
	switch {
	case s.DeleteNode(id):
	case s.DeleteConnection(id):
	case s.DeletePool(id):
	default:
		return false
	}
	return true
}

func (s *Store) recomputeNode(nodeID string) {
	for _, c := range s.ConnectionsOf(nodeID) {
		s.recompute(c)
	}
}

func (s *Store) recomputePool(p *Pool) {
	seen := make(map[string]bool)
	for _, l := range p.Lanes {
		for _, id := range l.Children {
			for _, c := range s.ConnectionsOf(id) {
				if !seen[c.ID] {
					seen[c.ID] = true
					s.recompute(c)
				}
			}
		}
	}
}

func removeID(ids []string, id string) []string {
	if i := indexOf(ids, id); i >= 0 {
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}
