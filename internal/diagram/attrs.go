package diagram

// Attributes is the type-specific field set of a node. Each node category
// carries its own variant; data and system objects carry none.
type Attributes interface {
	// Keys lists the attribute names in display order.
	Keys() []string
	Get(key string) string
	// Set updates a known key and reports whether the key exists.
	Set(key, value string) bool
}

// EventAttrs belong to start, end and intermediate events.
type EventAttrs struct {
	Timing string
	Method string
}

func (a *EventAttrs) Keys() []string { return []string{"timing", "method"} }

func (a *EventAttrs) Get(key string) string {
	switch key {
	case "timing":
		return a.Timing
	case "method":
		return a.Method
	}
	return ""
}

func (a *EventAttrs) Set(key, value string) bool {
	switch key {
	case "timing":
		a.Timing = value
	case "method":
		a.Method = value
	default:
		return false
	}
	return true
}

// TaskAttrs belong to tasks of every kind.
type TaskAttrs struct {
	Code   string
	Effort string
	Method string
}

func (a *TaskAttrs) Keys() []string { return []string{"code", "effort", "method"} }

func (a *TaskAttrs) Get(key string) string {
	switch key {
	case "code":
		return a.Code
	case "effort":
		return a.Effort
	case "method":
		return a.Method
	}
	return ""
}

func (a *TaskAttrs) Set(key, value string) bool {
	switch key {
	case "code":
		a.Code = value
	case "effort":
		a.Effort = value
	case "method":
		a.Method = value
	default:
		return false
	}
	return true
}

// GatewayAttrs belong to gateways.
type GatewayAttrs struct {
	Decision string
}

func (a *GatewayAttrs) Keys() []string { return []string{"decision"} }

func (a *GatewayAttrs) Get(key string) string {
	if key == "decision" {
		return a.Decision
	}
	return ""
}

func (a *GatewayAttrs) Set(key, value string) bool {
	if key != "decision" {
		return false
	}
	a.Decision = value
	return true
}

// NewAttributes returns the empty attribute variant for a node type, or nil
// when the type has no attributes.
func NewAttributes(t NodeType) Attributes {
	switch t.Category() {
	case CategoryEvent:
		return &EventAttrs{}
	case CategoryTask:
		return &TaskAttrs{}
	case CategoryGateway:
		return &GatewayAttrs{}
	}
	return nil
}
