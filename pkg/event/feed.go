package event

import (
	"sync/atomic"

	"github.com/cornelk/hashmap"
)

type tap[T any] struct {
	onNext   func(T)
	onError  func(error)
	released atomic.Bool
}

// Feed is a hot, push-based Stream.
// Values passed to Send are delivered inline on the sender's goroutine to
// every tap that is live at that moment. Taps are kept in a lock-free map so
// Send never contends with Subscribe or Release.
//
// The zero value is not usable; create feeds with NewFeed.
type Feed[T any] struct {
	taps *hashmap.Map[uint64, *tap[T]]
	seq  atomic.Uint64
}

// NewFeed creates an empty feed
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{
		taps: hashmap.New[uint64, *tap[T]](),
	}
}

// Subscribe registers a tap. The returned handle removes it; once Release
// returns, the tap receives nothing further.
func (f *Feed[T]) Subscribe(onNext func(T), onError func(error)) Handle {
	id := f.seq.Add(1)
	t := &tap[T]{onNext: onNext, onError: onError}
	f.taps.Set(id, t)

	return HandleFunc(func() {
		t.released.Store(true)
		f.taps.Del(id)
	})
}

// Send delivers v to every live tap
func (f *Feed[T]) Send(v T) {
	f.taps.Range(func(_ uint64, t *tap[T]) bool {
		if !t.released.Load() && t.onNext != nil {
			t.onNext(v)
		}
		return true
	})
}

// Fail delivers err to every live tap. Taps stay registered; whether an
// error is terminal is up to the consumer.
func (f *Feed[T]) Fail(err error) {
	f.taps.Range(func(_ uint64, t *tap[T]) bool {
		if !t.released.Load() && t.onError != nil {
			t.onError(err)
		}
		return true
	})
}

// Len returns the number of live taps
func (f *Feed[T]) Len() int {
	return f.taps.Len()
}
