// Package ringchan provides a bounded, overwrite-oldest channel for handing
// values from push-based producers to a pull-based consumer.
package ringchan

import (
	"sync"
	"sync/atomic"
)

// RingChannel is a bounded channel-like buffer with overwrite-oldest semantics.
//
// Producers never block: when the buffer is full the oldest element is
// discarded and counted. Consumers read from C() like a normal channel.
// After Close, Send is a no-op instead of a panic, which lets producers keep
// firing while the consumer shuts down.
type RingChannel[T any] struct {
	mu      sync.Mutex
	ch      chan T
	closed  bool
	dropped atomic.Int64
	written atomic.Int64
}

// New creates a RingChannel with the given capacity.
func New[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel.
// Consumers can range over this until it's closed.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// Send inserts v, discarding the oldest element if the buffer is full.
// Returns false if the channel is already closed.
func (rc *RingChannel[T]) Send(v T) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		return false
	}

	select {
	case rc.ch <- v:
	default:
		select {
		case <-rc.ch: // drop oldest
			rc.dropped.Add(1)
		default:
		}
		rc.ch <- v
	}
	rc.written.Add(1)
	return true
}

// Close closes the underlying channel. Safe to call more than once.
func (rc *RingChannel[T]) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		return
	}
	rc.closed = true
	close(rc.ch)
}

// Dropped returns how many elements were overwritten before being read.
func (rc *RingChannel[T]) Dropped() int64 {
	return rc.dropped.Load()
}

// Written returns how many elements were accepted by Send.
func (rc *RingChannel[T]) Written() int64 {
	return rc.written.Load()
}
