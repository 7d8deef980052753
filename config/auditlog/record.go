package auditlog

import (
	"fmt"

	"github.com/kastheco/layerstack/layer"
)

// Record emits an audit event for every change to stack until the returned
// function is called or the stack is closed.
func Record(stack *layer.Stack, logger Logger, source string) (stop func()) {
	return stack.Subscribe(func(ev layer.Event) {
		e, ok := fromLayerEvent(ev)
		if !ok {
			return
		}
		e.Source = source
		logger.Emit(e)
	})
}

func fromLayerEvent(ev layer.Event) (Event, bool) {
	kind, ok := KindFor(ev.Type)
	if !ok {
		return Event{}, false
	}
	e := NewEvent(kind, describe(ev),
		WithLayer(ev.LayerID, string(ev.Kind), ev.Priority),
		WithCount(ev.Count),
	)
	switch ev.Type {
	case layer.EventCloseFailed:
		e.Level = "error"
	case layer.EventCloseVetoed, layer.EventCleared:
		e.Level = "warn"
	}
	return e, true
}

func describe(ev layer.Event) string {
	name := ev.Label
	if name == "" {
		name = ev.LayerID
	}
	switch ev.Type {
	case layer.EventRegistered:
		return fmt.Sprintf("opened %s %s at priority %d", ev.Kind, name, ev.Priority)
	case layer.EventUnregistered:
		return fmt.Sprintf("removed %s %s", ev.Kind, name)
	case layer.EventHandlerUpdated:
		return fmt.Sprintf("replaced escape handler of %s", name)
	case layer.EventCloseVetoed:
		return fmt.Sprintf("%s refused to close", name)
	case layer.EventClosed:
		return fmt.Sprintf("closed %s", name)
	case layer.EventCloseFailed:
		return fmt.Sprintf("closing %s failed: %v", name, ev.Err)
	case layer.EventCleared:
		return fmt.Sprintf("cleared %d layer(s)", ev.Cleared)
	}
	return string(ev.Type)
}
