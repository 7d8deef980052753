package devtools

import (
	"sort"
	"sync"
)

// Namespace is a process-wide bag of debug attachments keyed by name.
// Attachments never clobber each other: attaching over an existing key
// shadows it until the newer attachment detaches.
type Namespace struct {
	mu      sync.RWMutex
	entries map[string]*slot
}

type slot struct {
	value any
	prev  *slot
}

// Global is the namespace debug consoles read from.
var Global = NewNamespace()

func NewNamespace() *Namespace {
	return &Namespace{entries: make(map[string]*slot)}
}

// Attach publishes v under key and returns a function that removes exactly
// this attachment. The returned function is safe to call more than once.
func (n *Namespace) Attach(key string, v any) (detach func()) {
	s := &slot{value: v}
	n.mu.Lock()
	s.prev = n.entries[key]
	n.entries[key] = s
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(key, s) })
	}
}

func (n *Namespace) remove(key string, target *slot) {
	n.mu.Lock()
	defer n.mu.Unlock()

	head := n.entries[key]
	if head == target {
		if target.prev == nil {
			delete(n.entries, key)
		} else {
			n.entries[key] = target.prev
		}
		return
	}
	// Someone attached over us; unlink from the middle of the chain.
	for cur := head; cur != nil; cur = cur.prev {
		if cur.prev == target {
			cur.prev = target.prev
			return
		}
	}
}

// Get returns the current value under key.
func (n *Namespace) Get(key string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s, ok := n.entries[key]
	if !ok {
		return nil, false
	}
	return s.value, true
}

// Keys lists the attached keys in sorted order.
func (n *Namespace) Keys() []string {
	n.mu.RLock()
	keys := make([]string, 0, len(n.entries))
	for k := range n.entries {
		keys = append(keys, k)
	}
	n.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
