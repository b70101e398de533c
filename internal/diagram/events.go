package diagram

// EventType identifies a kind of store change.
type EventType int

const (
	// EventNodeChanged fires when a node is created, edited, moved or removed.
	EventNodeChanged EventType = iota
	EventPoolChanged
	EventConnectionChanged
	// EventStructureChanged fires when the whole store is replaced or cleared.
	EventStructureChanged
)

// Listener receives the id of the entity that changed. It is empty for
// EventStructureChanged.
type Listener func(id string)

// On registers a listener for the specified event type.
func (s *Store) On(event EventType, listener Listener) {
	s.listeners[event] = append(s.listeners[event], listener)
}

func (s *Store) emit(event EventType, id string) {
	for _, listener := range s.listeners[event] {
		listener(id)
	}
}
