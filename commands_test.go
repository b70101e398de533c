package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowlane/internal/diagram"
	"flowlane/internal/project"
	"flowlane/internal/render"
	"flowlane/pkg/geometry"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"out.bpmn", "bpmn"},
		{"out.XML", "bpmn"},
		{"out.png", "png"},
		{"out.txt", "txt"},
		{"out.json", "json"},
		{"out", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFromPath(tt.path))
		})
	}
}

func sampleDocument(t *testing.T) *document {
	t.Helper()
	d := newDocument(render.DefaultCell)
	a, err := d.store.CreateNode(diagram.Task, geometry.Pt(100, 100))
	require.NoError(t, err)
	b, err := d.store.CreateNode(diagram.EndEvent, geometry.Pt(300, 100))
	require.NoError(t, err)
	_, ok := d.store.CreateConnection(a.ID, diagram.PortRight, b.ID, diagram.PortLeft)
	require.True(t, ok)
	return d
}

func TestExportDocument(t *testing.T) {
	d := sampleDocument(t)
	config := &Config{Canvas: render.DefaultCell, Export: render.DefaultPNGOptions()}
	dir := t.TempDir()

	for _, format := range []string{"json", "bpmn", "png", "txt"} {
		path := filepath.Join(dir, "out."+format)
		require.NoError(t, exportDocument(d, format, path, config), format)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), format)
	}

	assert.Error(t, exportDocument(d, "svg", filepath.Join(dir, "out.svg"), config))
}

func TestExportedJSONReopens(t *testing.T) {
	d := sampleDocument(t)
	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, exportDocument(d, "json", path, &Config{Canvas: render.DefaultCell}))

	reopened, err := openDocument(path, render.DefaultCell)
	require.NoError(t, err)
	assert.Len(t, reopened.store.Nodes(), 2)
	assert.Len(t, reopened.store.Connections(), 1)
	assert.False(t, reopened.dirty)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	d := sampleDocument(t)
	require.NoError(t, project.New("Good", d.ws.All()).Save(good))

	var out bytes.Buffer
	ok, err := validateFile(&out, good)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), good+": ok")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	ok, err = validateFile(&out, bad)
	assert.Error(t, err)
	assert.False(t, ok)
}
