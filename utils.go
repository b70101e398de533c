package main

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"flowlane/internal/diagram"
	"flowlane/internal/interact"
	"flowlane/internal/logger"
	"flowlane/internal/project"
	"flowlane/internal/render"
	"flowlane/internal/workspace"
	"flowlane/pkg/geometry"
)

func newDocument(cell render.Cell) *document {
	store := diagram.NewStore(diagram.WithLogger(logger.Named("store")))
	view := geometry.NewViewport()
	d := &document{store: store, view: &view, name: defaultName}
	d.machine = interact.New(store, d.view,
		interact.WithLogger(logger.Named("interact")),
		interact.WithTolerance(cellTolerance(cell)),
	)
	d.ws = workspace.New(store, logger.Named("workspace"))
	for _, ev := range []diagram.EventType{
		diagram.EventNodeChanged,
		diagram.EventPoolChanged,
		diagram.EventConnectionChanged,
		diagram.EventStructureChanged,
	} {
		store.On(ev, func(string) { d.dirty = true })
	}
	return d
}

// openDocument loads a project file with its sub-diagrams.
func openDocument(path string, cell render.Cell) (*document, error) {
	f, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	d := newDocument(cell)
	if err := d.ws.Load(f.Workspace()); err != nil {
		return nil, err
	}
	d.filename = path
	d.name = f.Name
	if d.name == "" {
		d.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	d.dirty = false
	return d, nil
}

// cellTolerance sizes hit radii so one character of pointer slack is enough.
func cellTolerance(cell render.Cell) interact.Tolerance {
	return interact.Tolerance{
		Port:   cell.Width * 1.5,
		Handle: cell.Width * 1.5,
		Edge:   cell.Width,
		Line:   cell.Height / 2,
	}
}

// screenPoint returns the pixel at the center of a terminal cell.
func (m *model) screenPoint(x, y int) geometry.Point {
	c := m.config.Canvas
	return geometry.Pt((float64(x)+0.5)*c.Width, (float64(y)+0.5)*c.Height)
}

// pointerCanvas is the canvas position under the last mouse event.
func (m *model) pointerCanvas() geometry.Point {
	return m.doc.view.ToCanvas(m.screenPoint(m.mouseX, m.mouseY))
}

func (m *model) canvasHeight() int {
	return max(m.height-chromeLines, 1)
}

func (m *model) canvasWidth() int {
	if m.explorer {
		return max(m.width-explorerWidth, 1)
	}
	return max(m.width, 1)
}

func (m *model) centerScreen() geometry.Point {
	return m.screenPoint(m.canvasWidth()/2, m.canvasHeight()/2)
}

// baseName is the current file name without directory or extension.
func (m *model) baseName() string {
	if m.doc.filename == "" {
		return defaultBase
	}
	return strings.TrimSuffix(filepath.Base(m.doc.filename), filepath.Ext(m.doc.filename))
}

func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// cleanClipboardText drops control characters and normalizes line endings.
func cleanClipboardText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r >= 32 {
			return r
		}
		if r == '\t' {
			return ' '
		}
		return -1
	}, text)
}
