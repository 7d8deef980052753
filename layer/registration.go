package layer

import "sync"

// Registration ties one open surface to its layer. It is the usual way for a
// surface to follow the open/close lifecycle: Open on show, SetOnEscape when
// the close behaviour changes, Close on hide.
type Registration struct {
	stack *Stack
	id    string

	mu     sync.Mutex
	closed bool
}

// Open registers cfg and returns a handle for it.
func (s *Stack) Open(cfg Config) *Registration {
	return &Registration{stack: s, id: s.Register(cfg)}
}

func (r *Registration) ID() string {
	return r.id
}

// SetOnEscape replaces the escape callback. It does nothing once the
// registration is closed.
func (r *Registration) SetOnEscape(fn EscapeFunc) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}
	r.stack.UpdateLayerHandler(r.id, fn)
}

// Active reports whether the layer is still registered. A layer removed by
// Stack.Clear or Stack.Unregister is inactive even if Close was never called.
func (r *Registration) Active() bool {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return false
	}
	for _, l := range r.stack.Layers() {
		if l.ID == r.id {
			return true
		}
	}
	return false
}

// Close unregisters the layer. It is safe to call more than once, including
// from the layer's own OnEscape.
func (r *Registration) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	r.stack.Unregister(r.id)
}
