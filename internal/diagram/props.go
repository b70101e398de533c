package diagram

import "strings"

// Field is one editable property of the selected entity.
type Field struct {
	Key     string
	Label   string
	Value   string
	Options []string // fixed choices, empty for free text
}

// Fields returns the property set of a node, connection or pool.
func (s *Store) Fields(id string) []Field {
	if n, ok := s.nodes[id]; ok {
		fields := []Field{
			{Key: "label", Label: "Label", Value: n.Label},
			{Key: "memo", Label: "Memo", Value: n.Memo},
		}
		if n.Attrs != nil {
			for _, k := range n.Attrs.Keys() {
				fields = append(fields, Field{Key: k, Label: fieldLabel(k), Value: n.Attrs.Get(k)})
			}
		}
		return fields
	}
	if c, ok := s.conns[id]; ok {
		return []Field{
			{Key: "name", Label: "Name", Value: c.Name},
			{Key: "type", Label: "Type", Value: string(c.Style), Options: []string{string(StyleSolid), string(StyleDashed)}},
			{Key: "textAlignH", Label: "Text H", Value: string(c.TextAlignH),
				Options: []string{string(AlignLeft), string(AlignCenter), string(AlignRight)}},
			{Key: "textAlignV", Label: "Text V", Value: string(c.TextAlignV),
				Options: []string{string(AlignTop), string(AlignMiddle), string(AlignBottom)}},
			{Key: "memo", Label: "Memo", Value: c.Memo},
		}
	}
	if p, ok := s.pools[id]; ok {
		fields := []Field{
			{Key: "name", Label: "Name", Value: p.Name},
			{Key: "memo", Label: "Memo", Value: p.Memo},
		}
		for _, l := range p.Lanes {
			fields = append(fields, Field{Key: "lane:" + l.ID, Label: "Lane", Value: l.Name})
		}
		return fields
	}
	return nil
}

func fieldLabel(key string) string {
	return strings.ToUpper(key[:1]) + key[1:]
}

// SetField writes one field returned by Fields.
func (s *Store) SetField(id, key, value string) bool {
	if n, ok := s.nodes[id]; ok {
		switch key {
		case "label":
			return s.SetLabel(id, value)
		case "memo":
			return s.SetMemo(id, value)
		}
		return s.SetAttribute(n.ID, key, value)
	}
	if _, ok := s.conns[id]; ok {
		switch key {
		case "name":
			return s.SetConnectionName(id, value)
		case "type":
			return s.SetConnectionStyle(id, Style(value))
		case "textAlignH":
			c := s.conns[id]
			return s.SetTextAlign(id, AlignH(value), c.TextAlignV)
		case "textAlignV":
			c := s.conns[id]
			return s.SetTextAlign(id, c.TextAlignH, AlignV(value))
		case "memo":
			return s.SetConnectionMemo(id, value)
		}
		return false
	}
	if _, ok := s.pools[id]; ok {
		switch {
		case key == "name":
			return s.SetPoolName(id, value)
		case key == "memo":
			return s.SetPoolMemo(id, value)
		case strings.HasPrefix(key, "lane:"):
			return s.SetLaneName(id, strings.TrimPrefix(key, "lane:"), value)
		}
	}
	return false
}

func (s *Store) SetLabel(nodeID, label string) bool {
	n, ok := s.nodes[nodeID]
	if !ok {
		return false
	}
	n.Label = label
	s.emit(EventNodeChanged, nodeID)
	return true
}

func (s *Store) SetMemo(nodeID, memo string) bool {
	n, ok := s.nodes[nodeID]
	if !ok {
		return false
	}
	n.Memo = memo
	s.emit(EventNodeChanged, nodeID)
	return true
}

// SetAttribute writes a type-specific attribute. It reports false when the
// node type has no such attribute.
func (s *Store) SetAttribute(nodeID, key, value string) bool {
	n, ok := s.nodes[nodeID]
	if !ok || n.Attrs == nil || !n.Attrs.Set(key, value) {
		return false
	}
	s.emit(EventNodeChanged, nodeID)
	return true
}

func (s *Store) SetConnectionName(connID, name string) bool {
	c, ok := s.conns[connID]
	if !ok {
		return false
	}
	c.Name = name
	s.emit(EventConnectionChanged, connID)
	return true
}

func (s *Store) SetConnectionStyle(connID string, style Style) bool {
	c, ok := s.conns[connID]
	if !ok || (style != StyleSolid && style != StyleDashed) {
		return false
	}
	c.Style = style
	s.emit(EventConnectionChanged, connID)
	return true
}

func (s *Store) SetTextAlign(connID string, h AlignH, v AlignV) bool {
	c, ok := s.conns[connID]
	if !ok {
		return false
	}
	switch h {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return false
	}
	switch v {
	case AlignTop, AlignMiddle, AlignBottom:
	default:
		return false
	}
	c.TextAlignH, c.TextAlignV = h, v
	s.emit(EventConnectionChanged, connID)
	return true
}

func (s *Store) SetConnectionMemo(connID, memo string) bool {
	c, ok := s.conns[connID]
	if !ok {
		return false
	}
	c.Memo = memo
	s.emit(EventConnectionChanged, connID)
	return true
}

func (s *Store) SetPoolName(poolID, name string) bool {
	p, ok := s.pools[poolID]
	if !ok {
		return false
	}
	p.Name = name
	s.emit(EventPoolChanged, poolID)
	return true
}

func (s *Store) SetPoolMemo(poolID, memo string) bool {
	p, ok := s.pools[poolID]
	if !ok {
		return false
	}
	p.Memo = memo
	s.emit(EventPoolChanged, poolID)
	return true
}

func (s *Store) SetLaneName(poolID, laneID, name string) bool {
	p, ok := s.pools[poolID]
	if !ok {
		return false
	}
	l, ok := p.Lane(laneID)
	if !ok {
		return false
	}
	l.Name = name
	s.emit(EventPoolChanged, poolID)
	return true
}
