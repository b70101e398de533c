// Package bpmn exports a diagram as BPMN 2.0 XML with diagram interchange
// bounds, so other modeling tools can open it.
package bpmn

import (
	"encoding/xml"
	"io"
	"strconv"

	"flowlane/internal/diagram"
)

const (
	nsModel = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	nsDI    = "http://www.omg.org/spec/BPMN/20100524/DI"
	nsDC    = "http://www.omg.org/spec/DD/20100524/DC"
	nsDD    = "http://www.omg.org/spec/DD/20100524/DI"
)

type definitions struct {
	XMLName         xml.Name `xml:"bpmn:definitions"`
	XmlnsBPMN       string   `xml:"xmlns:bpmn,attr"`
	XmlnsBPMNDI     string   `xml:"xmlns:bpmndi,attr"`
	XmlnsDC         string   `xml:"xmlns:dc,attr"`
	XmlnsDI         string   `xml:"xmlns:di,attr"`
	ID              string   `xml:"id,attr"`
	TargetNamespace string   `xml:"targetNamespace,attr"`
	Process         process  `xml:"bpmn:process"`
	Diagram         bpmnDiagram
}

type process struct {
	ID           string         `xml:"id,attr"`
	Name         string         `xml:"name,attr,omitempty"`
	IsExecutable bool           `xml:"isExecutable,attr"`
	LaneSets     []laneSet      `xml:"bpmn:laneSet"`
	Nodes        []flowNode     `xml:",any"`
	Flows        []sequenceFlow `xml:"bpmn:sequenceFlow"`
}

type laneSet struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr,omitempty"`
	Lanes []lane `xml:"bpmn:lane"`
}

type lane struct {
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name,attr,omitempty"`
	NodeRefs []string `xml:"bpmn:flowNodeRef"`
}

type flowNode struct {
	XMLName       xml.Name
	ID            string         `xml:"id,attr"`
	Name          string         `xml:"name,attr,omitempty"`
	Documentation *documentation `xml:"bpmn:documentation,omitempty"`
}

type documentation struct {
	Text string `xml:",chardata"`
}

type sequenceFlow struct {
	ID        string `xml:"id,attr"`
	Name      string `xml:"name,attr,omitempty"`
	SourceRef string `xml:"sourceRef,attr"`
	TargetRef string `xml:"targetRef,attr"`
}

type bpmnDiagram struct {
	XMLName xml.Name `xml:"bpmndi:BPMNDiagram"`
	ID      string   `xml:"id,attr"`
	Plane   plane    `xml:"bpmndi:BPMNPlane"`
}

type plane struct {
	ID          string  `xml:"id,attr"`
	BPMNElement string  `xml:"bpmnElement,attr"`
	Shapes      []shape `xml:"bpmndi:BPMNShape"`
	Edges       []edge  `xml:"bpmndi:BPMNEdge"`
}

type shape struct {
	ID           string `xml:"id,attr"`
	BPMNElement  string `xml:"bpmnElement,attr"`
	IsHorizontal *bool  `xml:"isHorizontal,attr,omitempty"`
	Bounds       bounds `xml:"dc:Bounds"`
}

type bounds struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

type edge struct {
	ID          string     `xml:"id,attr"`
	BPMNElement string     `xml:"bpmnElement,attr"`
	Waypoints   []waypoint `xml:"di:waypoint"`
}

type waypoint struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

// ElementName maps a node type to its BPMN element. Types without a
// BPMN counterpart become plain tasks.
func ElementName(t diagram.NodeType) string {
	switch t {
	case diagram.StartEvent:
		return "startEvent"
	case diagram.EndEvent:
		return "endEvent"
	case diagram.IntermediateEvent:
		return "intermediateCatchEvent"
	case diagram.UserTask:
		return "userTask"
	case diagram.ServiceTask:
		return "serviceTask"
	case diagram.ExclusiveGateway:
		return "exclusiveGateway"
	case diagram.ParallelGateway:
		return "parallelGateway"
	case diagram.DataObject:
		return "dataObjectReference"
	default:
		return "task"
	}
}

// Export writes the store as a BPMN 2.0 document. Dashed connections are
// annotations and produce no sequence flow.
func Export(w io.Writer, name string, s *diagram.Store) error {
	doc := definitions{
		XmlnsBPMN:       nsModel,
		XmlnsBPMNDI:     nsDI,
		XmlnsDC:         nsDC,
		XmlnsDI:         nsDD,
		ID:              "Definitions_1",
		TargetNamespace: "http://bpmn.io/schema/bpmn",
		Process:         process{ID: "Process_1", Name: name},
		Diagram: bpmnDiagram{
			ID:    "BPMNDiagram_1",
			Plane: plane{ID: "BPMNPlane_1", BPMNElement: "Process_1"},
		},
	}
	pl := &doc.Diagram.Plane
	horizontal := true

	for _, p := range s.Pools() {
		ls := laneSet{ID: p.ID, Name: p.Name}
		for i, l := range p.Lanes {
			ls.Lanes = append(ls.Lanes, lane{ID: l.ID, Name: l.Name, NodeRefs: append([]string(nil), l.Children...)})
			pl.Shapes = append(pl.Shapes, shape{
				ID:           l.ID + "_di",
				BPMNElement:  l.ID,
				IsHorizontal: &horizontal,
				Bounds:       rectBounds(p.LaneBand(i).X, p.LaneBand(i).Y, p.Width, l.Height),
			})
		}
		doc.Process.LaneSets = append(doc.Process.LaneSets, ls)
	}

	for _, n := range s.Nodes() {
		fn := flowNode{XMLName: xml.Name{Local: "bpmn:" + ElementName(n.Type)}, ID: n.ID, Name: n.Label}
		if n.Memo != "" {
			fn.Documentation = &documentation{Text: n.Memo}
		}
		doc.Process.Nodes = append(doc.Process.Nodes, fn)
		b := n.Bounds()
		pl.Shapes = append(pl.Shapes, shape{
			ID:          n.ID + "_di",
			BPMNElement: n.ID,
			Bounds:      rectBounds(b.X, b.Y, b.Width, b.Height),
		})
	}

	for _, c := range s.Connections() {
		if c.Style == diagram.StyleDashed {
			continue
		}
		r, ok := s.Route(c.ID)
		if !ok {
			continue
		}
		doc.Process.Flows = append(doc.Process.Flows, sequenceFlow{ID: c.ID, Name: c.Name, SourceRef: c.SourceID, TargetRef: c.TargetID})
		e := edge{ID: c.ID + "_di", BPMNElement: c.ID}
		for _, p := range r.Points {
			e.Waypoints = append(e.Waypoints, waypoint{X: num(p.X), Y: num(p.Y)})
		}
		pl.Edges = append(pl.Edges, e)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Flush()
}

func rectBounds(x, y, w, h float64) bounds {
	return bounds{X: num(x), Y: num(y), Width: num(w), Height: num(h)}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
