package event

import "sync"

// Handle represents one active tap on a Stream.
// Release detaches the tap. It is safe to call more than once and from
// multiple goroutines; only the first call has an effect.
type Handle interface {
	Release()
}

// Stream is a source of values of type T.
// onError may be nil; a nil onNext subscribes without observing values.
type Stream[T any] interface {
	Subscribe(onNext func(T), onError func(error)) Handle
}

// StreamFunc adapts a plain function to the Stream interface
type StreamFunc[T any] func(onNext func(T), onError func(error)) Handle

func (f StreamFunc[T]) Subscribe(onNext func(T), onError func(error)) Handle {
	return f(onNext, onError)
}

type onceHandle struct {
	once sync.Once
	fn   func()
}

func (h *onceHandle) Release() {
	h.once.Do(func() {
		if h.fn != nil {
			h.fn()
		}
	})
}

// HandleFunc wraps fn into a Handle that runs fn at most once
func HandleFunc(fn func()) Handle {
	return &onceHandle{fn: fn}
}

// Nop is a Handle with nothing to release
var Nop Handle = HandleFunc(nil)
