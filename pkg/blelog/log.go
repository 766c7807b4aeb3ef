package blelog

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/pkg/device"
	"github.com/srg/bletap/pkg/event"
)

// Log is a cold stream of Events describing everything an adapter and its
// connected devices do. Nothing is subscribed upstream until Start (or
// Subscribe) is called; every call starts an independent Session.
type Log struct {
	adapter device.Adapter
	opts    *options
}

var _ event.Stream[Event] = (*Log)(nil)

// WhenActionOccurs returns the log stream of adapter. Without WithFlags the
// stream carries DefaultFlags.
func WhenActionOccurs(adapter device.Adapter, opts ...Option) *Log {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = silentLogger()
	}
	return &Log{adapter: adapter, opts: o}
}

// Flags returns the categories this log emits
func (l *Log) Flags() Flags {
	return l.opts.flags
}

// Subscribe implements event.Stream
func (l *Log) Subscribe(onNext func(Event), onError func(error)) event.Handle {
	return l.Start(onNext, onError)
}

// Start taps the adapter and returns the running session.
//
// onNext runs on the producer's goroutine. Device status events are delivered
// while the registration table is locked, so onNext must not call
// Session.Release synchronously. Upstream errors are passed to onError as-is;
// onError may be nil.
func (l *Log) Start(onNext func(Event), onError func(error)) *Session {
	if onError == nil {
		onError = func(error) {}
	}

	s := &Session{
		id:     uuid.NewString(),
		flags:  l.opts.flags,
		logger: l.opts.logger,
	}
	emit := &emitter{
		next:   onNext,
		tracer: l.opts.tracer,
		logger: l.opts.logger,
	}
	s.registrar = newRegistrar(s.flags, emit, onError, l.opts.logger)

	l.opts.logger.WithFields(logrus.Fields{
		"session": s.id,
		"flags":   s.flags.String(),
	}).Debug("Starting BLE log session")

	a := l.adapter
	if s.flags.Has(AdapterStatus) {
		s.handles = append(s.handles, a.WhenStatusChanged().Subscribe(func(status device.AdapterStatus) {
			emit.text(AdapterStatus, "", "Changed to "+status.String())
		}, onError))
	}
	if s.flags.Has(AdapterScanResults) {
		s.handles = append(s.handles, a.ScanListen().Subscribe(func(result device.ScanResult) {
			// The scanned device is named in the payload only; subject stays empty
			emit.text(AdapterScanResults, "", scanResultMessage(result))
		}, onError))
	}
	if s.flags.Has(AdapterScanStatus) {
		s.handles = append(s.handles, a.WhenScanningStatusChanged().Subscribe(func(status device.ScanStatus) {
			emit.text(AdapterScanStatus, "", "Changed to "+status.String())
		}, onError))
	}

	// Always installed: it drives per-device registration even when
	// DeviceStatus itself is filtered out.
	s.handles = append(s.handles, a.WhenDeviceStatusChanged().Subscribe(s.registrar.transition, onError))

	return s
}

func scanResultMessage(result device.ScanResult) string {
	id := ""
	if result.Device != nil {
		id = result.Device.ID()
	}
	return "Device: " + id + " - RSSI: " + strconv.Itoa(result.RSSI)
}

// Session is one running aggregation. Release tears down every tap it owns,
// adapter-level and per-device, including taps added after start.
type Session struct {
	id        string
	flags     Flags
	logger    *logrus.Logger
	registrar *registrar

	mu       sync.Mutex
	handles  []event.Handle
	released bool
}

// ID returns a unique identifier for log correlation
func (s *Session) ID() string {
	return s.id
}

// Flags returns the categories the session emits
func (s *Session) Flags() Flags {
	return s.flags
}

// Release stops the session. Adapter-level taps are released first, then
// every registered device bundle. Safe to call more than once.
func (s *Session) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
	devices := s.registrar.len()
	s.registrar.close()

	s.logger.WithFields(logrus.Fields{
		"session": s.id,
		"devices": devices,
	}).Debug("BLE log session released")
}

// Released reports whether Release has been called
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Registered reports whether the device currently has live taps
func (s *Session) Registered(deviceID string) bool {
	return s.registrar.registered(deviceID)
}

// DeviceTaps returns the number of live taps held for the device
func (s *Session) DeviceTaps(deviceID string) int {
	return s.registrar.bundleLen(deviceID)
}

// Devices returns the number of devices with live taps
func (s *Session) Devices() int {
	return s.registrar.len()
}
