package layer

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// closeKey is the single-flight key shared by every CloseTop call.
const closeKey = "top"

// closingKey marks a context handed to callbacks by a running CloseTop. Its
// value is the owning stack.
type closingKey struct{}

// callbackPanic carries a recovered callback panic out of the single-flight
// call so CloseTop can re-raise the original value.
type callbackPanic struct {
	value interface{}
}

type entry struct {
	id  string
	cfg Config
}

func (e entry) snapshot() Layer {
	return Layer{ID: e.id, Config: e.cfg.clone()}
}

// Stack is a priority-ordered collection of layers. The zero value is not
// usable; call New. A Stack is safe for concurrent use, and callbacks never
// run while its lock is held, so OnEscape may unregister its own layer.
type Stack struct {
	mu sync.RWMutex
	// entries is sorted ascending by priority; equal priorities keep
	// registration order.
	entries []entry

	subMu   sync.RWMutex
	subs    map[int]Handler
	nextSub int

	closing singleflight.Group

	teardownMu sync.Mutex
	teardown   []func()
}

// New returns an empty stack. Stacks never share state with each other.
func New() *Stack {
	return &Stack{subs: make(map[int]Handler)}
}

// Register adds a layer and returns its generated id. The config is copied;
// later changes to cfg do not reach the stack. Register panics on a nil
// config.
func (s *Stack) Register(cfg Config) string {
	if isNilConfig(cfg) {
		panic("layer: Register called with nil Config")
	}
	e := entry{id: newID(), cfg: cfg.clone()}
	priority := e.cfg.common().Priority

	s.mu.Lock()
	// Insert after every entry with priority <= ours, which is exactly where
	// a stable sort would place the new tail element.
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].cfg.common().Priority > priority
	})
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
	count := len(s.entries)
	snap := e.snapshot()
	s.mu.Unlock()

	s.publish(eventFor(EventRegistered, snap, count))
	return e.id
}

// Unregister removes the layer with the given id. Unknown ids are ignored so
// that racing close paths can call it more than once.
func (s *Stack) Unregister(id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	snap := s.entries[i].snapshot()
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	count := len(s.entries)
	s.mu.Unlock()

	s.publish(eventFor(EventUnregistered, snap, count))
}

// UpdateLayerHandler swaps the escape callback of a registered layer without
// touching its id, priority or position. Unknown ids are ignored.
func (s *Stack) UpdateLayerHandler(id string, fn EscapeFunc) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.entries[i].cfg.common().OnEscape = fn
	snap := s.entries[i].snapshot()
	count := len(s.entries)
	s.mu.Unlock()

	s.publish(eventFor(EventHandlerUpdated, snap, count))
}

// Layers returns a copy of the registered layers in ascending priority order.
func (s *Stack) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Layer, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.snapshot()
	}
	return out
}

// Top returns the highest-priority layer. On ties the most recently
// registered layer wins.
func (s *Stack) Top() (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Layer{}, false
	}
	return s.entries[len(s.entries)-1].snapshot(), true
}

func (s *Stack) HasOpenLayers() bool {
	return s.Count() > 0
}

// HasOpenModal reports whether any modal is registered. Overlays alone do
// not count.
func (s *Stack) HasOpenModal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.cfg.Kind() == KindModal {
			return true
		}
	}
	return false
}

func (s *Stack) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CloseTop runs the escape protocol against the current top layer:
//
//  1. an empty stack returns false;
//  2. a modal with OnBeforeClose is asked first, and a false answer aborts
//     the close (the layer stays registered);
//  3. otherwise the layer's current OnEscape runs and CloseTop returns true.
//
// Only the top layer's callbacks run. The stack never unregisters the layer
// itself; OnEscape is expected to do that. Callback errors are returned
// unchanged with closed == false, and callback panics propagate with their
// original value.
//
// Calls that overlap an in-flight CloseTop wait for it and share its result
// instead of starting a second close, so a repeated Escape cannot reach a
// layer that is already closing. The shared call runs with the context of
// the call that started it. A callback may call CloseTop again with the
// context it was handed, for example to close the layer beneath it; that
// nested call runs directly instead of waiting on the close it is part of.
func (s *Stack) CloseTop(ctx context.Context) (bool, error) {
	if ctx.Value(closingKey{}) == s {
		return s.closeTop(ctx)
	}

	v, err, _ := s.closing.Do(closeKey, func() (res interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				res, err = callbackPanic{value: r}, nil
			}
		}()
		return s.closeTop(context.WithValue(ctx, closingKey{}, s))
	})
	if p, ok := v.(callbackPanic); ok {
		panic(p.value)
	}
	closed, _ := v.(bool)
	return closed, err
}

func (s *Stack) closeTop(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	top, ok := s.Top()
	if !ok {
		return false, nil
	}

	if m, isModal := top.Modal(); isModal && m.OnBeforeClose != nil {
		allow, err := m.OnBeforeClose(ctx)
		if err != nil {
			s.publishCloseFailed(top, err)
			return false, err
		}
		if !allow {
			s.publish(eventFor(EventCloseVetoed, top, s.Count()))
			return false, nil
		}
	}

	// The handler may have been swapped while OnBeforeClose ran; always use
	// the one registered now.
	onEscape, stillOpen := s.escapeHandler(top.ID)
	if !stillOpen {
		return false, nil
	}
	if onEscape != nil {
		if err := onEscape(ctx); err != nil {
			s.publishCloseFailed(top, err)
			return false, err
		}
	}

	s.publish(eventFor(EventClosed, top, s.Count()))
	return true, nil
}

// Clear drops every layer without consulting OnBeforeClose or running
// OnEscape, and returns how many were dropped.
func (s *Stack) Clear() int {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = nil
	s.mu.Unlock()

	s.publish(Event{Type: EventCleared, Cleared: n})
	return n
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it.
func (s *Stack) Subscribe(fn Handler) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// OnTeardown registers fn to run once when Close is called.
func (s *Stack) OnTeardown(fn func()) {
	s.teardownMu.Lock()
	s.teardown = append(s.teardown, fn)
	s.teardownMu.Unlock()
}

// Close tears the stack down: teardown hooks run in reverse order, every
// subscriber is dropped and the layers are discarded without callbacks.
func (s *Stack) Close() {
	s.teardownMu.Lock()
	hooks := s.teardown
	s.teardown = nil
	s.teardownMu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}

	s.subMu.Lock()
	s.subs = make(map[int]Handler)
	s.subMu.Unlock()

	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

func isNilConfig(cfg Config) bool {
	switch c := cfg.(type) {
	case nil:
		return true
	case *ModalConfig:
		return c == nil
	case *OverlayConfig:
		return c == nil
	}
	return false
}

func (s *Stack) escapeHandler(id string) (EscapeFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return s.entries[i].cfg.common().OnEscape, true
}

func (s *Stack) indexLocked(id string) int {
	for i := range s.entries {
		if s.entries[i].id == id {
			return i
		}
	}
	return -1
}

func (s *Stack) publishCloseFailed(l Layer, err error) {
	ev := eventFor(EventCloseFailed, l, s.Count())
	ev.Err = err
	s.publish(ev)
}

func (s *Stack) publish(ev Event) {
	s.subMu.RLock()
	// Snapshot so handlers can subscribe or unsubscribe while being called.
	snapshot := make([]Handler, 0, len(s.subs))
	for _, h := range s.subs {
		snapshot = append(snapshot, h)
	}
	s.subMu.RUnlock()

	for _, h := range snapshot {
		h(ev)
	}
}
