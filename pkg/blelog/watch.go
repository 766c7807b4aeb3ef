package blelog

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/internal/groutine"
	"github.com/srg/bletap/internal/ringchan"
)

// DefaultWatchCapacity is the buffer size used when Watch gets a non-positive capacity
const DefaultWatchCapacity = 256

// Subscription delivers a session's events over a channel.
// Producers never block on a slow reader: when the buffer is full the oldest
// event is overwritten and counted in Dropped.
type Subscription struct {
	session *Session
	ring    *ringchan.RingChannel[Event]
	failed  chan struct{}
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// Watch starts a session whose events are readable from C(). The session is
// released and C() closed when ctx is done or the first upstream error arrives.
func (l *Log) Watch(ctx context.Context, capacity int) *Subscription {
	if capacity <= 0 {
		capacity = DefaultWatchCapacity
	}

	sub := &Subscription{
		ring:   ringchan.New[Event](capacity),
		failed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	sub.session = l.Start(func(ev Event) { sub.ring.Send(ev) }, sub.fail)

	logger := l.opts.logger
	groutine.Go(ctx, "blelog-watch", logger, func(ctx context.Context) {
		defer close(sub.done)

		select {
		case <-ctx.Done():
		case <-sub.failed:
			logger.WithFields(logrus.Fields{
				"goroutine": groutine.Name(ctx),
				"session":   sub.session.ID(),
				"error":     sub.Err(),
			}).Warn("BLE log stream failed")
		}

		sub.session.Release()
		sub.ring.Close()
	})

	return sub
}

func (s *Subscription) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return
	}
	s.err = err
	close(s.failed)
}

// C returns the event channel. It is closed once the session is released.
func (s *Subscription) C() <-chan Event {
	return s.ring.C()
}

// Done is closed after the session has been released
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the upstream error that ended the subscription, or nil
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Dropped returns how many events were overwritten before being read
func (s *Subscription) Dropped() int64 {
	return s.ring.Dropped()
}

// Written returns how many events the session pushed into the buffer
func (s *Subscription) Written() int64 {
	return s.ring.Written()
}

// Session exposes the underlying session
func (s *Subscription) Session() *Session {
	return s.session
}
