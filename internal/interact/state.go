// Package interact turns raw pointer input into editing gestures on a
// diagram store.
package interact

// Mode is the active gesture. Idle is the rest state.
type Mode int

const (
	Idle Mode = iota
	Panning
	MovingNode
	MovingPool
	ResizingPool
	ResizingLane
	Connecting
	AdjustingFlowMidpoint
)

var modeNames = [...]string{
	Idle:                  "idle",
	Panning:               "panning",
	MovingNode:            "moving node",
	MovingPool:            "moving pool",
	ResizingPool:          "resizing pool",
	ResizingLane:          "resizing lane",
	Connecting:            "connecting",
	AdjustingFlowMidpoint: "adjusting flow",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// SelectionKind says what kind of entity is selected.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectNode
	SelectPool
	SelectConnection
)

// Selection is the entity the property panel shows. LaneID is set when a
// pool was selected through one of its lanes.
type Selection struct {
	Kind   SelectionKind
	ID     string
	LaneID string
}

func (s Selection) Empty() bool { return s.Kind == SelectNone }
