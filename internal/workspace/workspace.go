// Package workspace manages the tree of diagrams behind drill-down
// navigation. Exactly one diagram is live in the store at a time; every
// other diagram is held as a snapshot.
package workspace

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"flowlane/internal/diagram"
)

const (
	RootID   = "root"
	RootName = "Main Process"
)

var (
	ErrUnknownDiagram = errors.New("workspace: unknown diagram")
	ErrAtRoot         = errors.New("workspace: root diagram has no parent")
)

// Diagram is one entry of the tree. Snapshot is stale for the live diagram
// until Sync runs.
type Diagram struct {
	ID           string
	Name         string
	ParentID     string
	ParentNodeID string
	Snapshot     diagram.Snapshot
}

type nodeKey struct {
	diagramID string
	nodeID    string
}

// Manager swaps diagrams in and out of a single live store.
type Manager struct {
	store    *diagram.Store
	current  string
	diagrams map[string]*Diagram
	children map[string][]string
	byNode   map[nodeKey]string
	log      zerolog.Logger
}

// New creates a manager whose root diagram is the current content of store.
func New(store *diagram.Store, log zerolog.Logger) *Manager {
	m := &Manager{store: store, log: log}
	m.reset()
	return m
}

func (m *Manager) reset() {
	m.current = RootID
	m.diagrams = map[string]*Diagram{RootID: {ID: RootID, Name: RootName}}
	m.children = make(map[string][]string)
	m.byNode = make(map[nodeKey]string)
}

// Current returns the id of the live diagram.
func (m *Manager) Current() string { return m.current }

// Diagram looks up a diagram by id.
func (m *Manager) Diagram(id string) (*Diagram, bool) {
	d, ok := m.diagrams[id]
	return d, ok
}

// Path returns the names from the root down to the live diagram.
func (m *Manager) Path() []string {
	var names []string
	for id := m.current; id != ""; id = m.diagrams[id].ParentID {
		names = append([]string{m.diagrams[id].Name}, names...)
	}
	return names
}

// Sync copies the live store into the current diagram's slot.
func (m *Manager) Sync() {
	m.diagrams[m.current].Snapshot = m.store.Snapshot()
}

// SwitchTo makes another diagram live. On error the live diagram is unchanged.
func (m *Manager) SwitchTo(id string) error {
	target, ok := m.diagrams[id]
	if !ok {
		return fmt.Errorf("switch to %q: %w", id, ErrUnknownDiagram)
	}
	if id == m.current {
		return nil
	}
	m.Sync()
	if err := m.store.Restore(target.Snapshot); err != nil {
		return fmt.Errorf("switch to %q: %w", id, err)
	}
	m.log.Debug().Str("from", m.current).Str("to", id).Msg("switched diagram")
	m.current = id
	return nil
}

// OpenChildOf switches to the sub-diagram of a node in the live diagram,
// creating it on first use.
func (m *Manager) OpenChildOf(nodeID string) (string, error) {
	if _, ok := m.store.Node(nodeID); !ok {
		return "", fmt.Errorf("open sub-diagram of %q: %w", nodeID, diagram.ErrNotFound)
	}
	key := nodeKey{diagramID: m.current, nodeID: nodeID}
	id, ok := m.byNode[key]
	if !ok {
		id = "diagram_" + uuid.NewString()
		m.diagrams[id] = &Diagram{
			ID:           id,
			Name:         "Sub-Process of " + nodeID,
			ParentID:     m.current,
			ParentNodeID: nodeID,
		}
		m.children[m.current] = append(m.children[m.current], id)
		m.byNode[key] = id
		m.log.Info().Str("id", id).Str("node", nodeID).Msg("created sub-diagram")
	}
	return id, m.SwitchTo(id)
}

// OpenParent switches to the parent of the live diagram.
func (m *Manager) OpenParent() error {
	parent := m.diagrams[m.current].ParentID
	if parent == "" {
		return ErrAtRoot
	}
	return m.SwitchTo(parent)
}

// Rename sets a diagram's display name.
func (m *Manager) Rename(id, name string) error {
	d, ok := m.diagrams[id]
	if !ok {
		return fmt.Errorf("rename %q: %w", id, ErrUnknownDiagram)
	}
	d.Name = name
	return nil
}

// TreeEntry is one line of the diagram explorer.
type TreeEntry struct {
	ID      string
	Name    string
	Depth   int
	Current bool
}

// Tree lists the diagrams depth first, children in creation order.
func (m *Manager) Tree() []TreeEntry {
	var out []TreeEntry
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		d := m.diagrams[id]
		out = append(out, TreeEntry{ID: id, Name: d.Name, Depth: depth, Current: id == m.current})
		for _, child := range m.children[id] {
			walk(child, depth+1)
		}
	}
	walk(RootID, 0)
	return out
}

// All returns every diagram depth first after syncing the live one.
func (m *Manager) All() []Diagram {
	m.Sync()
	out := make([]Diagram, 0, len(m.diagrams))
	for _, e := range m.Tree() {
		out = append(out, *m.diagrams[e.ID])
	}
	return out
}

// Load replaces the whole tree and makes the root live. The root is the
// entry with id "root", else the first entry without a parent. Entries
// whose parent chain does not reach the root are attached to the root and
// lose their parent node.
// On error nothing changes.
func (m *Manager) Load(diagrams []Diagram) error {
	rootIdx := -1
	for i, d := range diagrams {
		if d.ID == RootID {
			rootIdx = i
			break
		}
	}
	for i, d := range diagrams {
		if rootIdx < 0 && d.ParentID == "" {
			rootIdx = i
		}
	}

	root := &Diagram{ID: RootID, Name: RootName}
	loaded := map[string]*Diagram{RootID: root}
	var order []string
	for i := range diagrams {
		d := diagrams[i]
		if i == rootIdx {
			root.Snapshot = d.Snapshot
			if d.Name != "" {
				root.Name = d.Name
			}
			continue
		}
		if _, dup := loaded[d.ID]; dup || d.ID == "" {
			return fmt.Errorf("load diagram %q: duplicate or missing id", d.ID)
		}
		loaded[d.ID] = &d
		order = append(order, d.ID)
	}
	var orphans []string
	for _, id := range order {
		if !reachesRoot(loaded, id) {
			orphans = append(orphans, id)
		}
	}
	for _, id := range orphans {
		loaded[id].ParentID = RootID
		loaded[id].ParentNodeID = ""
	}

	if err := m.store.Restore(root.Snapshot); err != nil {
		return err
	}
	m.reset()
	m.diagrams = loaded
	for _, id := range order {
		d := loaded[id]
		m.children[d.ParentID] = append(m.children[d.ParentID], id)
		if d.ParentNodeID != "" {
			m.byNode[nodeKey{diagramID: d.ParentID, nodeID: d.ParentNodeID}] = id
		}
	}
	return nil
}

func reachesRoot(diagrams map[string]*Diagram, id string) bool {
	for steps := 0; steps <= len(diagrams); steps++ {
		d, ok := diagrams[id]
		if !ok {
			return false
		}
		if d.ID == RootID {
			return true
		}
		id = d.ParentID
	}
	return false
}
