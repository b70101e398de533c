package workspace

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowlane/internal/diagram"
	"flowlane/pkg/geometry"
)

func TestDrillDownAndBack(t *testing.T) {
	s := diagram.NewStore()
	m := New(s, zerolog.Nop())
	task, _ := s.CreateNode(diagram.Task, geometry.Pt(100, 100))
	end, _ := s.CreateNode(diagram.EndEvent, geometry.Pt(400, 100))
	s.CreateConnection(task.ID, diagram.PortRight, end.ID, diagram.PortLeft)

	child, err := m.OpenChildOf(task.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(child, "diagram_"))
	assert.Equal(t, child, m.Current())
	assert.True(t, s.Empty(), "child starts empty")
	assert.Equal(t, []string{RootName, "Sub-Process of " + task.ID}, m.Path())

	inner, _ := s.CreateNode(diagram.UserTask, geometry.Pt(50, 50))

	require.NoError(t, m.OpenParent())
	assert.Equal(t, RootID, m.Current())
	assert.Len(t, s.Nodes(), 2)
	assert.Len(t, s.Connections(), 1)
	restored, ok := s.Node(task.ID)
	require.True(t, ok)
	assert.Equal(t, task.Position, restored.Position)

	again, err := m.OpenChildOf(task.ID)
	require.NoError(t, err)
	assert.Equal(t, child, again, "one sub-diagram per node")
	_, ok = s.Node(inner.ID)
	assert.True(t, ok)

	assert.NoError(t, m.OpenParent())
	assert.ErrorIs(t, m.OpenParent(), ErrAtRoot)
}

func TestSwitchErrors(t *testing.T) {
	s := diagram.NewStore()
	m := New(s, zerolog.Nop())
	s.CreateNode(diagram.Task, geometry.Pt(0, 0))

	assert.ErrorIs(t, m.SwitchTo("diagram_nope"), ErrUnknownDiagram)
	_, err := m.OpenChildOf("element_99")
	assert.ErrorIs(t, err, diagram.ErrNotFound)
	assert.ErrorIs(t, m.Rename("diagram_nope", "x"), ErrUnknownDiagram)
	assert.Len(t, s.Nodes(), 1)
	assert.Len(t, m.Tree(), 1)
}

func TestTreeAndLoad(t *testing.T) {
	s := diagram.NewStore()
	m := New(s, zerolog.Nop())
	a, _ := s.CreateNode(diagram.Task, geometry.Pt(100, 100))
	b, _ := s.CreateNode(diagram.Task, geometry.Pt(400, 100))

	childA, _ := m.OpenChildOf(a.ID)
	sub, _ := s.CreateNode(diagram.Task, geometry.Pt(100, 100))
	grand, _ := m.OpenChildOf(sub.ID)
	require.NoError(t, m.SwitchTo(RootID))
	childB, _ := m.OpenChildOf(b.ID)
	require.NoError(t, m.Rename(childB, "Billing"))

	tree := m.Tree()
	require.Len(t, tree, 4)
	assert.Equal(t, []string{RootID, childA, grand, childB}, []string{tree[0].ID, tree[1].ID, tree[2].ID, tree[3].ID})
	assert.Equal(t, []int{0, 1, 2, 1}, []int{tree[0].Depth, tree[1].Depth, tree[2].Depth, tree[3].Depth})
	assert.True(t, tree[3].Current)
	assert.Equal(t, "Billing", tree[3].Name)

	all := m.All()
	require.Len(t, all, 4)

	s2 := diagram.NewStore()
	m2 := New(s2, zerolog.Nop())
	require.NoError(t, m2.Load(all))
	assert.Equal(t, RootID, m2.Current())
	assert.Len(t, s2.Nodes(), 2)
	assert.Equal(t, m.Tree()[1:], markCurrent(m2.Tree()[1:], childB))

	id, err := m2.OpenChildOf(a.ID)
	require.NoError(t, err)
	assert.Equal(t, childA, id)
	assert.Len(t, s2.Nodes(), 1)
}

func TestLoadRejectsDuplicates(t *testing.T) {
	s := diagram.NewStore()
	m := New(s, zerolog.Nop())
	s.CreateNode(diagram.Task, geometry.Pt(0, 0))

	err := m.Load([]Diagram{{ID: RootID}, {ID: "diagram_1", ParentID: RootID}, {ID: "diagram_1", ParentID: RootID}})
	require.Error(t, err)
	assert.Len(t, s.Nodes(), 1)

	require.NoError(t, m.Load([]Diagram{{ID: "diagram_2", ParentID: "diagram_3"}, {ID: "diagram_3", ParentID: "diagram_2"}, {ID: RootID}}))
	tree := m.Tree()
	require.Len(t, tree, 3)
	assert.Equal(t, 1, tree[1].Depth)
	assert.Equal(t, 1, tree[2].Depth)
}

func markCurrent(entries []TreeEntry, id string) []TreeEntry {
	out := append([]TreeEntry(nil), entries...)
	for i := range out {
		out[i].Current = out[i].ID == id
	}
	return out
}

func TestLoadAttachesUnreachableToRoot(t *testing.T) {
	s := diagram.NewStore()
	m := New(s, zerolog.Nop())

	require.NoError(t, m.Load([]Diagram{
		{ID: RootID},
		{ID: "diagram_a", ParentID: "diagram_c", ParentNodeID: "element_1"},
		{ID: "diagram_b", ParentID: "diagram_a"},
		{ID: "diagram_c", ParentID: "diagram_b"},
		{ID: "diagram_d", ParentID: "diagram_gone"},
		{ID: "diagram_e", ParentID: "diagram_d"},
	}))

	depth := map[string]int{}
	for _, e := range m.Tree() {
		depth[e.ID] = e.Depth
	}
	assert.Equal(t, map[string]int{
		RootID:      0,
		"diagram_a": 1,
		"diagram_b": 1,
		"diagram_c": 1,
		"diagram_d": 1,
		"diagram_e": 2,
	}, depth)

	d, ok := m.Diagram("diagram_a")
	require.True(t, ok)
	assert.Equal(t, RootID, d.ParentID)
	assert.Empty(t, d.ParentNodeID)
}
