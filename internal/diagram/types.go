// Package diagram holds the in-memory model of a process diagram: nodes,
// pools with ordered lanes, and the connections between nodes. The Store
// keeps lane membership, pool heights and connector routing state
// consistent across every mutation.
package diagram

import (
	"errors"
	"fmt"
	"strings"

	"flowlane/pkg/geometry"
)

var (
	ErrNotFound    = errors.New("diagram: entity not found")
	ErrInvalidType = errors.New("diagram: invalid element type")
)

// NodeType is the element kind tag used by the palette and the project file.
type NodeType string

const (
	StartEvent        NodeType = "start-event"
	EndEvent          NodeType = "end-event"
	IntermediateEvent NodeType = "intermediate-event"
	Task              NodeType = "task"
	UserTask          NodeType = "user-task"
	ServiceTask       NodeType = "service-task"
	ExclusiveGateway  NodeType = "exclusive-gateway"
	ParallelGateway   NodeType = "parallel-gateway"
	DataObject        NodeType = "data-object"
	SystemObject      NodeType = "system-object"
)

// NodeTypes lists every element kind in palette order.
var NodeTypes = []NodeType{
	StartEvent, EndEvent, IntermediateEvent,
	Task, UserTask, ServiceTask,
	ExclusiveGateway, ParallelGateway,
	DataObject, SystemObject,
}

// Category groups node types that share shape and attributes.
type Category int

const (
	CategoryEvent Category = iota
	CategoryTask
	CategoryGateway
	CategoryData
	CategorySystem
)

// ParseNodeType validates a type tag.
func ParseNodeType(s string) (NodeType, error) {
	for _, t := range NodeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t NodeType) Category() Category {
	switch t {
	case StartEvent, EndEvent, IntermediateEvent:
		return CategoryEvent
	case ExclusiveGateway, ParallelGateway:
		return CategoryGateway
	case DataObject:
		return CategoryData
	case SystemObject:
		return CategorySystem
	default:
		return CategoryTask
	}
}

// DefaultSize returns the size a freshly dropped node of this type gets.
func (t NodeType) DefaultSize() geometry.Size {
	switch t.Category() {
	case CategoryEvent:
		return geometry.Sz(50, 50)
	case CategoryGateway:
		return geometry.Sz(60, 60)
	case CategoryData:
		return geometry.Sz(40, 50)
	case CategorySystem:
		return geometry.Sz(60, 60)
	default:
		return geometry.Sz(120, 80)
	}
}

// DefaultLabel is the type tag with dashes turned into spaces.
func (t NodeType) DefaultLabel() string {
	return strings.ReplaceAll(string(t), "-", " ")
}

// Port is one of the four attachment points on a node's boundary.
type Port string

const (
	PortTop    Port = "top"
	PortRight  Port = "right"
	PortBottom Port = "bottom"
	PortLeft   Port = "left"
)

// Ports lists the ports clockwise from the top.
var Ports = []Port{PortTop, PortRight, PortBottom, PortLeft}

func (p Port) Valid() bool {
	switch p {
	case PortTop, PortRight, PortBottom, PortLeft:
		return true
	}
	return false
}

// Horizontal reports whether the port faces left or right.
func (p Port) Horizontal() bool {
	return p == PortLeft || p == PortRight
}

// Style is the line style of a connection.
type Style string

const (
	StyleSolid  Style = "solid"
	StyleDashed Style = "dashed"
)

type AlignH string

const (
	AlignLeft   AlignH = "left"
	AlignCenter AlignH = "center"
	AlignRight  AlignH = "right"
)

type AlignV string

const (
	AlignTop    AlignV = "top"
	AlignMiddle AlignV = "center"
	AlignBottom AlignV = "bottom"
)

// Node is a diagram element. Position is the top-left corner in canvas space.
type Node struct {
	ID       string
	Type     NodeType
	Position geometry.Point
	Size     geometry.Size
	Label    string
	Memo     string
	Attrs    Attributes

	// Lane membership. Both ids are empty and Offset is nil for a node
	// outside every pool. Offset is the position relative to the pool origin.
	PoolID string
	LaneID string
	Offset *geometry.Point
}

// Bounds returns the node's box in canvas space.
func (n *Node) Bounds() geometry.Rect {
	return geometry.NewRect(n.Position, n.Size)
}

func (n *Node) Center() geometry.Point {
	return n.Bounds().Center()
}

// Anchor returns the midpoint of the side a port sits on.
func (n *Node) Anchor(port Port) geometry.Point {
	b := n.Bounds()
	switch port {
	case PortTop:
		return geometry.Pt(b.X+b.Width/2, b.Y)
	case PortRight:
		return geometry.Pt(b.Right(), b.Y+b.Height/2)
	case PortBottom:
		return geometry.Pt(b.X+b.Width/2, b.Bottom())
	default:
		return geometry.Pt(b.X, b.Y+b.Height/2)
	}
}

func (n *Node) assigned() bool {
	return n.LaneID != ""
}

// Lane is a horizontal band of a pool.
type Lane struct {
	ID       string
	Name     string
	Height   float64
	Children []string
}

func (l *Lane) has(nodeID string) bool {
	return indexOf(l.Children, nodeID) >= 0
}

func (l *Lane) remove(nodeID string) bool {
	i := indexOf(l.Children, nodeID)
	if i < 0 {
		return false
	}
	l.Children = append(l.Children[:i], l.Children[i+1:]...)
	return true
}

// Pool is a swimlane container. Its height is always the sum of its lane heights.
type Pool struct {
	ID       string
	Position geometry.Point
	Width    float64
	Name     string
	Memo     string
	Lanes    []*Lane
}

// Connection joins two distinct nodes at a port on each.
type Connection struct {
	ID         string
	SourceID   string
	SourcePort Port
	TargetID   string
	TargetPort Port
	MidPoint   *MidPoint
	Name       string
	Style      Style
	Memo       string
	TextAlignH AlignH
	TextAlignV AlignV
}

// MidPoint is the adjustable bend of a connection whose ports share an
// orientation. When Vertical is set the bend segment is vertical and Coord
// is an X coordinate, otherwise Coord is a Y. A pool-relative coordinate is
// an offset from the origin of pool PoolID.
type MidPoint struct {
	Coord        float64
	Vertical     bool
	PoolRelative bool
	PoolID       string
}

func (c *Connection) sameOrientation() bool {
	return c.SourcePort.Horizontal() == c.TargetPort.Horizontal()
}

func (c *Connection) touches(nodeID string) bool {
	return c.SourceID == nodeID || c.TargetID == nodeID
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
