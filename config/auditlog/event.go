package auditlog

import (
	"time"

	"github.com/kastheco/layerstack/layer"
)

// EventKind identifies the type of audit event.
type EventKind string

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Layer lifecycle events.
const (
	EventLayerRegistered     EventKind = "layer_registered"
	EventLayerUnregistered   EventKind = "layer_unregistered"
	EventLayerHandlerUpdated EventKind = "layer_handler_updated"
	EventLayerCloseVetoed    EventKind = "layer_close_vetoed"
	EventLayerClosed         EventKind = "layer_closed"
	EventLayerCloseFailed    EventKind = "layer_close_failed"
	EventStackCleared        EventKind = "stack_cleared"
)

// Run events.
const (
	EventScenarioStarted  EventKind = "scenario_started"
	EventScenarioFinished EventKind = "scenario_finished"
	EventError            EventKind = "error"
)

var kindForEvent = map[layer.EventType]EventKind{
	layer.EventRegistered:     EventLayerRegistered,
	layer.EventUnregistered:   EventLayerUnregistered,
	layer.EventHandlerUpdated: EventLayerHandlerUpdated,
	layer.EventCloseVetoed:    EventLayerCloseVetoed,
	layer.EventClosed:         EventLayerClosed,
	layer.EventCloseFailed:    EventLayerCloseFailed,
	layer.EventCleared:        EventStackCleared,
}

// KindFor maps a stack event type to its audit kind.
func KindFor(t layer.EventType) (EventKind, bool) {
	k, ok := kindForEvent[t]
	return k, ok
}

// Event is a single audit log entry. Source names what drove the stack (a
// scenario file, "tui", "demo") and Count is the number of open layers
// after the event.
type Event struct {
	ID        int64
	Kind      EventKind
	Timestamp time.Time
	Source    string
	LayerID   string
	LayerKind string
	Priority  int
	Count     int
	Message   string
	Level     string // info, warn, error
}

// NewEvent builds an event with the given kind and message.
func NewEvent(kind EventKind, message string, opts ...EventOption) Event {
	e := Event{Kind: kind, Message: message}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
