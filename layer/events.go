package layer

// EventType names a change to a stack.
type EventType string

const (
	EventRegistered     EventType = "registered"
	EventUnregistered   EventType = "unregistered"
	EventHandlerUpdated EventType = "handler_updated"
	EventCloseVetoed    EventType = "close_vetoed"
	EventClosed         EventType = "closed"
	EventCloseFailed    EventType = "close_failed"
	EventCleared        EventType = "cleared"
)

// Event describes one change. Count is the number of layers registered
// after the change, which makes a subscription a layer-count observable.
type Event struct {
	Type     EventType
	LayerID  string
	Kind     Kind
	Priority int
	Label    string
	Count    int
	// Cleared is set on EventCleared.
	Cleared int
	// Err is set on EventCloseFailed.
	Err error
}

// Handler receives stack events.
type Handler func(Event)

func eventFor(typ EventType, l Layer, count int) Event {
	return Event{
		Type:     typ,
		LayerID:  l.ID,
		Kind:     l.Kind(),
		Priority: l.Priority(),
		Label:    l.AriaLabel(),
		Count:    count,
	}
}
