package blelog

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/pkg/device"
	"github.com/srg/bletap/pkg/event"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// registrar tracks the nested taps of every connected device.
//
// The table maps a device ID to the bundle holding all taps installed for the
// device's current connection. Every transition runs detach-then-attach under
// mu, so a device never has more than one live bundle and a bundle never
// outlives the connection it was built for.
type registrar struct {
	mu     sync.Mutex
	table  *orderedmap.OrderedMap[string, *event.Bundle]
	closed bool

	flags   Flags
	emit    *emitter
	onError func(error)
	logger  *logrus.Logger
}

func newRegistrar(flags Flags, emit *emitter, onError func(error), logger *logrus.Logger) *registrar {
	return &registrar{
		table:   orderedmap.New[string, *event.Bundle](),
		flags:   flags,
		emit:    emit,
		onError: onError,
		logger:  logger,
	}
}

// transition handles one device-status change
func (r *registrar) transition(change device.DeviceStatusChange) {
	if change.Device == nil {
		return
	}
	id := change.Device.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	if r.flags.Has(DeviceStatus) {
		r.emit.text(DeviceStatus, id, "Changed to "+change.Status.String())
	}

	r.detach(id)
	if change.Status == device.Connected {
		r.attach(change.Device)
	}
}

// detach releases and forgets the device's bundle, if any. Caller holds mu.
func (r *registrar) detach(id string) {
	bundle, ok := r.table.Delete(id)
	if !ok {
		return
	}
	handles := bundle.Len()
	bundle.Release()

	r.logger.WithFields(logrus.Fields{
		"device":  id,
		"handles": handles,
	}).Debug("Released device taps")
}

// attach installs a fresh bundle of taps for a connected device. Caller holds mu.
func (r *registrar) attach(dev device.Device) {
	bundle := event.NewBundle()
	r.table.Set(dev.ID(), bundle)

	if r.flags.Has(ServiceDiscovered) {
		bundle.Add(dev.WhenServiceDiscovered().Subscribe(func(svc device.Service) {
			r.emit.text(ServiceDiscovered, svc.UUID(), "")
		}, r.onError))
	}

	// Always installed: characteristic taps are created per discovered characteristic
	bundle.Add(dev.WhenAnyCharacteristicDiscovered().Subscribe(func(ch device.Characteristic) {
		r.hookCharacteristic(bundle, ch)
	}, r.onError))

	bundle.Add(dev.WhenAnyDescriptorDiscovered().Subscribe(func(desc device.Descriptor) {
		r.hookDescriptor(bundle, desc)
	}, r.onError))

	r.logger.WithFields(logrus.Fields{
		"device":  dev.ID(),
		"handles": bundle.Len(),
	}).Debug("Attached device taps")
}

// hookCharacteristic runs on the producer's goroutine, outside mu. The bundle
// serializes its own growth and releases anything added after teardown.
func (r *registrar) hookCharacteristic(bundle *event.Bundle, ch device.Characteristic) {
	uuid := ch.UUID()

	if r.flags.Has(CharacteristicDiscovered) {
		r.emit.text(CharacteristicDiscovered, uuid, "")
	}
	if r.flags.Has(CharacteristicRead) {
		bundle.Add(ch.WhenRead().Subscribe(func(data []byte) {
			r.emit.bytes(CharacteristicRead, uuid, data)
		}, r.onError))
	}
	if r.flags.Has(CharacteristicWrite) {
		bundle.Add(ch.WhenWritten().Subscribe(func(data []byte) {
			r.emit.bytes(CharacteristicWrite, uuid, data)
		}, r.onError))
	}
	if r.flags.Has(CharacteristicNotify) && ch.CanNotify() {
		bundle.Add(ch.WhenNotificationReceived().Subscribe(func(data []byte) {
			r.emit.bytes(CharacteristicNotify, uuid, data)
		}, r.onError))
	}
}

func (r *registrar) hookDescriptor(bundle *event.Bundle, desc device.Descriptor) {
	uuid := desc.UUID()

	if r.flags.Has(DescriptorDiscovered) {
		r.emit.text(DescriptorDiscovered, uuid, "")
	}
	if r.flags.Has(DescriptorRead) {
		bundle.Add(desc.WhenRead().Subscribe(func(data []byte) {
			r.emit.bytes(DescriptorRead, uuid, data)
		}, r.onError))
	}
	if r.flags.Has(DescriptorWrite) {
		bundle.Add(desc.WhenWritten().Subscribe(func(data []byte) {
			r.emit.bytes(DescriptorWrite, uuid, data)
		}, r.onError))
	}
}

// close releases every bundle in registration order and rejects later transitions
func (r *registrar) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for pair := r.table.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Release()
	}
	r.table = orderedmap.New[string, *event.Bundle]()
}

// registered reports whether id currently has a live bundle
func (r *registrar) registered(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.table.Get(id)
	return ok
}

// bundleLen returns the number of live taps for id, or 0 when unregistered
func (r *registrar) bundleLen(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bundle, ok := r.table.Get(id); ok {
		return bundle.Len()
	}
	return 0
}

func (r *registrar) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Len()
}
