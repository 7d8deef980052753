package auditlog

import "time"

// QueryFilter specifies criteria for querying audit events.
type QueryFilter struct {
	Source  string
	LayerID string
	Kinds   []EventKind
	Limit   int
	Before  time.Time
	After   time.Time
}

// Logger is the interface for emitting and querying audit events.
type Logger interface {
	Emit(event Event)
	Query(filter QueryFilter) ([]Event, error)
	Close() error
}

// EventOption is a functional option for configuring optional Event fields.
type EventOption func(*Event)

// WithSource sets the Source field on the event.
func WithSource(source string) EventOption {
	return func(e *Event) { e.Source = source }
}

// WithLayer sets the layer fields on the event.
func WithLayer(id, kind string, priority int) EventOption {
	return func(e *Event) {
		e.LayerID = id
		e.LayerKind = kind
		e.Priority = priority
	}
}

// WithCount sets the Count field on the event.
func WithCount(n int) EventOption {
	return func(e *Event) { e.Count = n }
}

// WithLevel sets the Level field on the event (info, warn, error).
func WithLevel(level string) EventOption {
	return func(e *Event) { e.Level = level }
}

// nopLogger is a no-op Logger used when auditing is disabled.
type nopLogger struct{}

// NopLogger returns a Logger that discards all events.
func NopLogger() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Emit(_ Event) {}

func (n *nopLogger) Query(_ QueryFilter) ([]Event, error) {
	return nil, nil
}

func (n *nopLogger) Close() error {
	return nil
}
