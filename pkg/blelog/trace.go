package blelog

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/smallnest/ringbuffer"
	"github.com/srg/bletap/internal/groutine"
)

// Tracer is the developer-facing side channel every emitted Event is echoed to.
// Implementations must not block; a Tracer that panics is ignored.
type Tracer interface {
	Trace(ev Event)
}

// TracerFunc adapts a plain function to the Tracer interface
type TracerFunc func(ev Event)

func (f TracerFunc) Trace(ev Event) {
	f(ev)
}

// NopTracer discards every event
type NopTracer struct{}

func (NopTracer) Trace(Event) {}

// LogTracer echoes events to a logrus logger at debug level
type LogTracer struct {
	logger *logrus.Logger
}

// NewLogTracer creates a tracer that writes through logger
func NewLogTracer(logger *logrus.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

func (t *LogTracer) Trace(ev Event) {
	if t.logger == nil {
		return
	}
	t.logger.WithFields(logrus.Fields{
		"category": ev.Category.String(),
		"subject":  ev.Subject,
	}).Debug(ev.Payload)
}

// DefaultTraceBufferSize is the ring size used when NewRingTracer gets a non-positive size
const DefaultTraceBufferSize = 16 * 1024

// RingTracer formats events as trace lines into a fixed-size byte ring and
// copies them to a writer from a background goroutine. Trace never blocks:
// a line that does not fit in the ring is dropped whole and counted.
type RingTracer struct {
	out    io.Writer
	ring   *ringbuffer.RingBuffer
	logger *logrus.Logger

	writeMu sync.Mutex
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started atomic.Bool
	closed  atomic.Bool
	dropped atomic.Int64
}

// NewRingTracer creates a tracer draining into out. Call Start to begin draining.
func NewRingTracer(out io.Writer, size int, logger *logrus.Logger) *RingTracer {
	if size <= 0 {
		size = DefaultTraceBufferSize
	}
	return &RingTracer{
		out:    out,
		ring:   ringbuffer.New(size),
		logger: logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Trace queues one line. Lines are never split across a full ring.
func (t *RingTracer) Trace(ev Event) {
	if t.closed.Load() {
		t.dropped.Add(1)
		return
	}

	line := []byte(ev.String() + "\n")

	t.writeMu.Lock()
	if t.ring.Free() < len(line) {
		t.writeMu.Unlock()
		t.dropped.Add(1)
		return
	}
	_, err := t.ring.Write(line)
	t.writeMu.Unlock()

	if err != nil && !errors.Is(err, ringbuffer.ErrIsFull) {
		t.dropped.Add(1)
		return
	}

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Start launches the drain goroutine. It stops when ctx is done or Close is called.
func (t *RingTracer) Start(ctx context.Context) {
	if !t.started.CompareAndSwap(false, true) {
		return
	}

	groutine.Go(ctx, "blelog-trace-drain", t.logger, func(ctx context.Context) {
		defer close(t.done)
		for {
			select {
			case <-ctx.Done():
				t.drain(ctx)
				return
			case <-t.stop:
				t.drain(ctx)
				return
			case <-t.wake:
				t.drain(ctx)
			}
		}
	})
}

// Close stops accepting lines, flushes what is buffered and waits for the
// drain goroutine. Safe to call more than once and without Start.
func (t *RingTracer) Close() {
	if !t.closed.CompareAndSwap(false, true) {
		return
	}
	if !t.started.Load() {
		t.drain(context.Background())
		return
	}
	close(t.stop)
	<-t.done
}

// Dropped returns the number of lines discarded because the ring was full or closed
func (t *RingTracer) Dropped() int64 {
	return t.dropped.Load()
}

func (t *RingTracer) drain(ctx context.Context) {
	buf := make([]byte, 4096)
	for {
		n, err := t.ring.TryRead(buf)
		if n > 0 {
			if _, werr := t.out.Write(buf[:n]); werr != nil && t.logger != nil {
				t.logger.WithFields(logrus.Fields{
					"goroutine": groutine.Name(ctx),
					"error":     werr,
				}).Debug("Trace writer failed")
			}
		}
		if n == 0 || errors.Is(err, ringbuffer.ErrIsEmpty) {
			return
		}
	}
}
