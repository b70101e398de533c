package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowlane/pkg/geometry"
)

func twoLanePool(t *testing.T, s *Store) *Pool {
	t.Helper()
	p, err := s.RestorePool(PoolRecord{
		ID: "pool_1", Name: "Org", X: 0, Y: 0, Width: 800,
		Lanes: []LaneRecord{{ID: "lane_2", Name: "A", Height: 200}, {ID: "lane_3", Name: "B", Height: 200}},
	})
	require.NoError(t, err)
	return p
}

func TestCreatePoolDefaults(t *testing.T) {
	s := NewStore()
	p := s.CreatePool(geometry.Pt(400, 100))
	assert.Equal(t, geometry.Pt(0, 0), p.Position)
	assert.Equal(t, DefaultPoolWidth, p.Width)
	assert.Equal(t, "Pool", p.Name)
	require.Len(t, p.Lanes, 1)
	assert.Equal(t, "Lane 1", p.Lanes[0].Name)
	assert.Equal(t, 200.0, p.Height())

	l, err := s.AddLane(p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lane 2", l.Name)
	assert.Equal(t, 400.0, p.Height())

	_, err = s.AddLane("pool_99", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNodeDroppedInPoolJoinsLane(t *testing.T) {
	s := NewStore()
	p := twoLanePool(t, s)

	a := restoreBox(t, s, "element_4", 100, 50, 120, 80)
	b := restoreBox(t, s, "element_5", 300, 250, 120, 80)
	outside := restoreBox(t, s, "element_6", 900, 50, 120, 80)

	assert.Equal(t, "lane_2", a.LaneID)
	assert.Equal(t, "lane_3", b.LaneID)
	assert.Equal(t, p.ID, b.PoolID)
	assert.Equal(t, &geometry.Point{X: 300, Y: 250}, b.Offset)
	assert.False(t, outside.assigned())
	requireConsistent(t, s)
}

func TestContainmentEdgesAreInclusive(t *testing.T) {
	s := NewStore()
	twoLanePool(t, s)

	// Center exactly on the lane boundary goes to the first (upper) lane.
	n := restoreBox(t, s, "element_4", 100, 160, 100, 80)
	assert.Equal(t, "lane_2", n.LaneID)

	// Center exactly on the pool's right edge is still inside.
	m := restoreBox(t, s, "element_5", 750, 300, 100, 80)
	assert.Equal(t, "lane_3", m.LaneID)
}

func TestReassignMovesBetweenLanes(t *testing.T) {
	s := NewStore()
	p := twoLanePool(t, s)
	n := restoreBox(t, s, "element_4", 100, 50, 120, 80)

	require.True(t, s.MoveNodeTo(n.ID, geometry.Pt(100, 250)))
	assert.Equal(t, "lane_2", n.LaneID, "membership waits for gesture end")
	assert.Equal(t, &geometry.Point{X: 100, Y: 250}, n.Offset)

	s.ReassignContainment(n.ID)
	assert.Equal(t, "lane_3", n.LaneID)
	assert.Empty(t, p.Lanes[0].Children)
	assert.Equal(t, []string{n.ID}, p.Lanes[1].Children)

	s.MoveNodeTo(n.ID, geometry.Pt(2000, 2000))
	s.ReassignContainment(n.ID)
	assert.False(t, n.assigned())
	assert.Nil(t, n.Offset)
	assert.Empty(t, p.Lanes[1].Children)
	requireConsistent(t, s)
}

func TestResizeLaneShiftsLowerLanes(t *testing.T) {
	s := NewStore()
	p := twoLanePool(t, s)
	upper := restoreBox(t, s, "element_4", 100, 50, 120, 80)
	lower := restoreBox(t, s, "element_5", 300, 250, 120, 80)
	require.Equal(t, "lane_3", lower.LaneID)

	require.True(t, s.ResizeLane(p.ID, "lane_2", 260))

	assert.Equal(t, 310.0, lower.Position.Y)
	assert.Equal(t, 310.0, lower.Offset.Y)
	assert.Equal(t, 50.0, upper.Position.Y)
	assert.Equal(t, 460.0, p.Height())
	requireConsistent(t, s)

	require.True(t, s.ResizeLane(p.ID, "lane_3", 10))
	assert.Equal(t, MinLaneHeight, p.Lanes[1].Height)
	assert.False(t, s.ResizeLane(p.ID, "lane_9", 300))
}

func TestResizePoolClampsWidth(t *testing.T) {
	s := NewStore()
	p := twoLanePool(t, s)
	require.True(t, s.ResizePool(p.ID, 50))
	assert.Equal(t, MinPoolWidth, p.Width)
	require.True(t, s.ResizePool(p.ID, 1200))
	assert.Equal(t, 1200.0, p.Width)
}

func TestMovePoolCarriesChildren(t *testing.T) {
	s := NewStore()
	p := twoLanePool(t, s)
	n := restoreBox(t, s, "element_4", 100, 250, 120, 80)
	free := restoreBox(t, s, "element_5", 1000, 0, 120, 80)

	require.True(t, s.MovePoolTo(p.ID, geometry.Pt(40, -30)))
	assert.Equal(t, geometry.Pt(140, 220), n.Position)
	assert.Equal(t, geometry.Pt(1000, 0), free.Position)
	requireConsistent(t, s)
}

func TestDeleteLane(t *testing.T) {
	s := NewStore()
	p := s.CreatePool(geometry.Pt(400, 100))
	s.AddLane(p.ID, nil)
	s.AddLane(p.ID, nil)
	require.Equal(t, []string{"lane_2", "lane_3", "lane_4"}, []string{p.Lanes[0].ID, p.Lanes[1].ID, p.Lanes[2].ID})

	mid, _ := s.CreateNode(Task, geometry.Pt(300, 300))
	low, _ := s.CreateNode(Task, geometry.Pt(300, 500))
	require.Equal(t, "lane_3", mid.LaneID)
	require.Equal(t, "lane_4", low.LaneID)

	require.True(t, s.DeleteLane(p.ID, "lane_3"))
	assert.Equal(t, 400.0, p.Height())
	assert.Equal(t, "lane_2", mid.LaneID, "orphans prefer the previous lane")
	assert.Equal(t, 120.0, mid.Position.Y, "orphan pulled into the band")
	assert.Equal(t, 260.0, low.Position.Y, "lower lane moves up")
	requireConsistent(t, s)

	require.True(t, s.DeleteLane(p.ID, "lane_2"))
	assert.Equal(t, "lane_4", mid.LaneID, "first lane orphans go to the next lane")
	assert.Equal(t, []string{"lane_4"}, []string{p.Lanes[0].ID})
	assert.Equal(t, 60.0, low.Position.Y)
	assert.Equal(t, 120.0, mid.Position.Y)
	requireConsistent(t, s)

	assert.False(t, s.DeleteLane(p.ID, "lane_4"), "last lane stays")
	assert.Len(t, p.Lanes, 1)
}

func TestMoveLanes(t *testing.T) {
	s := NewStore()
	p := twoLanePool(t, s)
	p.Lanes[0].Height = 150
	a := restoreBox(t, s, "element_4", 100, 20, 120, 80)
	b := restoreBox(t, s, "element_5", 100, 200, 120, 80)
	require.Equal(t, "lane_2", a.LaneID)
	require.Equal(t, "lane_3", b.LaneID)

	assert.False(t, s.MoveLaneUp(p.ID, "lane_2"), "already on top")
	assert.False(t, s.MoveLaneDown(p.ID, "lane_3"), "already at the bottom")

	require.True(t, s.MoveLaneDown(p.ID, "lane_2"))
	assert.Equal(t, "lane_3", p.Lanes[0].ID)
	assert.Equal(t, 220.0, a.Position.Y)
	assert.Equal(t, 50.0, b.Position.Y)
	requireConsistent(t, s)

	for _, n := range []*Node{a, b} {
		before := n.LaneID
		s.ReassignContainment(n.ID)
		assert.Equal(t, before, n.LaneID, "nodes stay inside their lane band")
	}

	require.True(t, s.MoveLaneUp(p.ID, "lane_2"))
	assert.Equal(t, 20.0, a.Position.Y)
	assert.Equal(t, 200.0, b.Position.Y)
}
