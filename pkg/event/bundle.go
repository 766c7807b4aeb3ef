package event

import "sync"

// Bundle owns a group of handles that share one lifetime.
//
// Handles can be added at any time, including from stream callbacks that run
// after the bundle was created. Once the bundle is released, any handle added
// later is released immediately, so a late tap can never outlive its bundle.
type Bundle struct {
	mu       sync.Mutex
	handles  []Handle
	released bool
}

// NewBundle creates an empty bundle
func NewBundle() *Bundle {
	return &Bundle{handles: make([]Handle, 0, 4)}
}

// Add takes ownership of h. Nil handles are ignored.
func (b *Bundle) Add(h Handle) {
	if h == nil {
		return
	}

	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		h.Release()
		return
	}
	b.handles = append(b.handles, h)
	b.mu.Unlock()
}

// Release releases every owned handle in the order they were added.
// Subsequent calls are no-ops.
func (b *Bundle) Release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	handles := b.handles
	b.handles = nil
	b.mu.Unlock()

	// Released outside the lock: a handle may synchronously trigger a callback
	// that tries to Add to this bundle.
	for _, h := range handles {
		h.Release()
	}
}

// Len returns the number of handles currently owned
func (b *Bundle) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// Released reports whether Release has been called
func (b *Bundle) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
