package layer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func TestSubscribe_ObservesLifecycle(t *testing.T) {
	s := New()
	rec := &recorder{}
	s.Subscribe(rec.handle)

	id := s.Register(modal(10, "settings"))
	ev := rec.last()
	assert.Equal(t, EventRegistered, ev.Type)
	assert.Equal(t, id, ev.LayerID)
	assert.Equal(t, KindModal, ev.Kind)
	assert.Equal(t, 10, ev.Priority)
	assert.Equal(t, "settings", ev.Label)
	assert.Equal(t, 1, ev.Count)

	s.UpdateLayerHandler(id, func(context.Context) error { return nil })
	s.Unregister(id)
	assert.Equal(t, 0, rec.last().Count)

	// No-ops publish nothing.
	s.Unregister(id)
	s.UpdateLayerHandler(id, nil)

	assert.Equal(t, []EventType{EventRegistered, EventHandlerUpdated, EventUnregistered}, rec.types())
}

func TestSubscribe_ObservesCloseOutcomes(t *testing.T) {
	s := New()
	rec := &recorder{}
	s.Subscribe(rec.handle)

	allow := false
	boom := errors.New("boom")
	var failEscape bool
	cfg := modal(1, "editor")
	cfg.OnBeforeClose = func(context.Context) (bool, error) { return allow, nil }
	cfg.OnEscape = func(context.Context) error {
		if failEscape {
			return boom
		}
		return nil
	}
	s.Register(cfg)

	_, _ = s.CloseTop(context.Background())
	assert.Equal(t, EventCloseVetoed, rec.last().Type)

	allow = true
	_, _ = s.CloseTop(context.Background())
	assert.Equal(t, EventClosed, rec.last().Type)

	failEscape = true
	_, _ = s.CloseTop(context.Background())
	ev := rec.last()
	assert.Equal(t, EventCloseFailed, ev.Type)
	assert.ErrorIs(t, ev.Err, boom)

	s.Register(overlay(2, "menu"))
	assert.Equal(t, 2, s.Clear())
	ev = rec.last()
	assert.Equal(t, EventCleared, ev.Type)
	assert.Equal(t, 2, ev.Cleared)
	assert.Equal(t, 0, ev.Count)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := New()
	rec := &recorder{}
	unsub := s.Subscribe(rec.handle)

	s.Register(overlay(1, ""))
	unsub()
	unsub()
	s.Register(overlay(2, ""))

	assert.Len(t, rec.types(), 1)
}

func TestSubscribe_HandlerMayCallBackIntoStack(t *testing.T) {
	s := New()
	var counts []int
	s.Subscribe(func(ev Event) {
		if ev.Type == EventRegistered {
			counts = append(counts, s.Count())
			_ = s.Layers()
		}
	})

	s.Register(modal(1, ""))
	s.Register(modal(2, ""))
	require.Equal(t, []int{1, 2}, counts)
}
