// Package project provides project file handling and persistence.
package project

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"flowlane/internal/diagram"
	"flowlane/internal/workspace"
)

// Version is written to every saved file. Files of another major version
// are rejected.
const Version = "1.0"

var ErrInvalidFile = errors.New("project: invalid file")

// File represents a flowlane project file. The root diagram's entities sit
// at the top level; sub-diagrams are listed in Diagrams.
type File struct {
	Version string    `json:"version"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	diagram.Snapshot
	Diagrams []Entry `json:"diagrams,omitempty"`
}

// Entry is a sub-diagram of the project.
type Entry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ParentID     string `json:"parentId"`
	ParentNodeID string `json:"parentNodeId"`
	diagram.Snapshot
}

// New builds a project file from a workspace listing whose first entry is the root.
func New(name string, diagrams []workspace.Diagram) *File {
	f := &File{
		Version: Version,
		Name:    name,
		Created: time.Now().UTC().Truncate(time.Second),
	}
	for i, d := range diagrams {
		if i == 0 {
			f.Snapshot = d.Snapshot
			continue
		}
		f.Diagrams = append(f.Diagrams, Entry{
			ID:           d.ID,
			Name:         d.Name,
			ParentID:     d.ParentID,
			ParentNodeID: d.ParentNodeID,
			Snapshot:     d.Snapshot,
		})
	}
	return f
}

// FromStore builds a single-diagram project file.
func FromStore(name string, s *diagram.Store) *File {
	return New(name, []workspace.Diagram{{ID: workspace.RootID, Name: workspace.RootName, Snapshot: s.Snapshot()}})
}

// Workspace returns the diagram tree stored in the file, root first.
func (f *File) Workspace() []workspace.Diagram {
	out := []workspace.Diagram{{ID: workspace.RootID, Name: workspace.RootName, Snapshot: f.Snapshot}}
	for _, e := range f.Diagrams {
		out = append(out, workspace.Diagram{
			ID:           e.ID,
			Name:         e.Name,
			ParentID:     e.ParentID,
			ParentNodeID: e.ParentNodeID,
			Snapshot:     e.Snapshot,
		})
	}
	return out
}

// Encode serializes the file as indented JSON.
func (f *File) Encode() ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(f, "", "  ")
}

// Decode parses and validates a project file. Every diagram is loaded into
// a scratch store, so a file that decodes cleanly can be restored without error.
func Decode(data []byte) (*File, error) {
	var f File
	if err := sonic.ConfigStd.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if f.Version == "" {
		f.Version = Version
	}
	if major(f.Version) != major(Version) {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidFile, f.Version)
	}
	if _, err := diagram.LoadSnapshot(f.Snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	for _, e := range f.Diagrams {
		if _, err := diagram.LoadSnapshot(e.Snapshot); err != nil {
			return nil, fmt.Errorf("%w: diagram %s: %v", ErrInvalidFile, e.ID, err)
		}
	}
	return &f, nil
}

// Load loads a project from a file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return f, nil
}

// Save saves the project to a file.
func (f *File) Save(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func major(v string) string {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		return v[:i]
	}
	return v
}
