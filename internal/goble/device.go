package goble

import (
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/pkg/device"
	"github.com/srg/bletap/pkg/event"
)

// Device is a peripheral reached through go-ble. Its discovery streams are
// hot: they carry what the current connection discovers and nothing is replayed.
type Device struct {
	address string
	logger  *logrus.Logger

	services        *event.Feed[device.Service]
	characteristics *event.Feed[device.Characteristic]
	descriptors     *event.Feed[device.Descriptor]

	mu     sync.RWMutex
	client gattClient
	chars  []*Characteristic

	done      chan struct{}
	closeOnce sync.Once
}

var _ device.Device = (*Device)(nil)

func newDevice(address string, logger *logrus.Logger) *Device {
	return &Device{
		address:         address,
		logger:          logger,
		services:        event.NewFeed[device.Service](),
		characteristics: event.NewFeed[device.Characteristic](),
		descriptors:     event.NewFeed[device.Descriptor](),
		done:            make(chan struct{}),
	}
}

// ID returns the device address
func (d *Device) ID() string {
	return d.address
}

func (d *Device) WhenServiceDiscovered() event.Stream[device.Service] {
	return d.services
}

func (d *Device) WhenAnyCharacteristicDiscovered() event.Stream[device.Characteristic] {
	return d.characteristics
}

func (d *Device) WhenAnyDescriptorDiscovered() event.Stream[device.Descriptor] {
	return d.descriptors
}

// Characteristics returns everything discovered on the current connection, in discovery order
func (d *Device) Characteristics() []*Characteristic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Characteristic, len(d.chars))
	copy(out, d.chars)
	return out
}

func (d *Device) gatt() (gattClient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.client == nil {
		return nil, device.ErrNotConnected
	}
	return d.client, nil
}

func (d *Device) attach(client gattClient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.client = client
	d.chars = nil
}

// detach drops the client and stops the disconnect monitor. Returns the
// client that was attached, if any.
func (d *Device) detach() gattClient {
	d.mu.Lock()
	client := d.client
	d.client = nil
	d.mu.Unlock()

	d.closeOnce.Do(func() { close(d.done) })
	return client
}

// discover walks the remote profile and publishes every service,
// characteristic and descriptor as it is found.
func (d *Device) discover(client gattClient) error {
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		return NormalizeError(err)
	}

	chars, descs := 0, 0
	for _, svc := range profile.Services {
		d.services.Send(service(device.NormalizeUUID(svc.UUID.String())))

		for _, raw := range svc.Characteristics {
			ch := newCharacteristic(d, raw)
			d.mu.Lock()
			d.chars = append(d.chars, ch)
			d.mu.Unlock()
			d.characteristics.Send(ch)
			chars++

			for _, rawDesc := range raw.Descriptors {
				d.descriptors.Send(newDescriptor(d, rawDesc))
				descs++
			}
		}
	}

	d.logger.WithFields(logrus.Fields{
		"address":         d.address,
		"services":        len(profile.Services),
		"characteristics": chars,
		"descriptors":     descs,
	}).Debug("Profile discovered")
	return nil
}

// service is a discovered GATT service identified by its normalized UUID
type service string

func (s service) UUID() string {
	return string(s)
}

// copyBytes detaches data from buffers go-ble may reuse
func copyBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func isNotifiable(p ble.Property) bool {
	return p&(ble.CharNotify|ble.CharIndicate) != 0
}
