package testutils

import (
	"sync"

	"github.com/srg/bletap/pkg/device"
	"github.com/srg/bletap/pkg/event"
)

// FakeAdapter is an in-memory device.Adapter driven directly by tests.
// Every trigger method delivers synchronously on the caller's goroutine.
type FakeAdapter struct {
	Status       *event.Feed[device.AdapterStatus]
	ScanResults  *event.Feed[device.ScanResult]
	ScanStatus   *event.Feed[device.ScanStatus]
	DeviceStatus *event.Feed[device.DeviceStatusChange]
}

var _ device.Adapter = (*FakeAdapter)(nil)

// NewFakeAdapter creates an adapter with no taps
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		Status:       event.NewFeed[device.AdapterStatus](),
		ScanResults:  event.NewFeed[device.ScanResult](),
		ScanStatus:   event.NewFeed[device.ScanStatus](),
		DeviceStatus: event.NewFeed[device.DeviceStatusChange](),
	}
}

func (a *FakeAdapter) WhenStatusChanged() event.Stream[device.AdapterStatus] { return a.Status }
func (a *FakeAdapter) ScanListen() event.Stream[device.ScanResult] { return a.ScanResults }
func (a *FakeAdapter) WhenScanningStatusChanged() event.Stream[device.ScanStatus] {
	return a.ScanStatus
}
func (a *FakeAdapter) WhenDeviceStatusChanged() event.Stream[device.DeviceStatusChange] {
	return a.DeviceStatus
}

// SetStatus publishes an adapter status change
func (a *FakeAdapter) SetStatus(status device.AdapterStatus) {
	a.Status.Send(status)
}

// Advertise publishes a scan result for dev
func (a *FakeAdapter) Advertise(dev device.DeviceInfo, rssi int) {
	a.ScanResults.Send(device.ScanResult{Device: dev, RSSI: rssi})
}

// SetScanning publishes a scan status change
func (a *FakeAdapter) SetScanning(scanning bool) {
	a.ScanStatus.Send(device.ScanStatus(scanning))
}

// SetDeviceStatus publishes a device status change
func (a *FakeAdapter) SetDeviceStatus(dev device.Device, status device.ConnectionStatus) {
	a.DeviceStatus.Send(device.DeviceStatusChange{Device: dev, Status: status})
}

// Connect publishes dev moving to Connected
func (a *FakeAdapter) Connect(dev device.Device) {
	a.SetDeviceStatus(dev, device.Connected)
}

// Disconnect publishes dev moving to Disconnected
func (a *FakeAdapter) Disconnect(dev device.Device) {
	a.SetDeviceStatus(dev, device.Disconnected)
}

// Taps returns the total number of live taps across all adapter streams
func (a *FakeAdapter) Taps() int {
	return a.Status.Len() + a.ScanResults.Len() + a.ScanStatus.Len() + a.DeviceStatus.Len()
}

// FakeDevice is an in-memory device.Device
type FakeDevice struct {
	id string

	Services        *event.Feed[device.Service]
	Characteristics *event.Feed[device.Characteristic]
	Descriptors     *event.Feed[device.Descriptor]

	mu    sync.Mutex
	chars []*FakeCharacteristic
	descs []*FakeDescriptor
}

var _ device.Device = (*FakeDevice)(nil)

// NewFakeDevice creates a device with the given identity
func NewFakeDevice(id string) *FakeDevice {
	return &FakeDevice{
		id:              id,
		Services:        event.NewFeed[device.Service](),
		Characteristics: event.NewFeed[device.Characteristic](),
		Descriptors:     event.NewFeed[device.Descriptor](),
	}
}

func (d *FakeDevice) ID() string { return d.id }

func (d *FakeDevice) WhenServiceDiscovered() event.Stream[device.Service] { return d.Services }
func (d *FakeDevice) WhenAnyCharacteristicDiscovered() event.Stream[device.Characteristic] {
	return d.Characteristics
}
func (d *FakeDevice) WhenAnyDescriptorDiscovered() event.Stream[device.Descriptor] {
	return d.Descriptors
}

// DiscoverService publishes a discovered service
func (d *FakeDevice) DiscoverService(uuid string) {
	d.Services.Send(FakeService(uuid))
}

// DiscoverCharacteristic publishes ch as discovered
func (d *FakeDevice) DiscoverCharacteristic(ch *FakeCharacteristic) *FakeCharacteristic {
	d.mu.Lock()
	d.chars = append(d.chars, ch)
	d.mu.Unlock()
	d.Characteristics.Send(ch)
	return ch
}

// DiscoverDescriptor publishes desc as discovered
func (d *FakeDevice) DiscoverDescriptor(desc *FakeDescriptor) *FakeDescriptor {
	d.mu.Lock()
	d.descs = append(d.descs, desc)
	d.mu.Unlock()
	d.Descriptors.Send(desc)
	return desc
}

// Taps returns the number of live taps on the device and every attribute it discovered
func (d *FakeDevice) Taps() int {
	n := d.Services.Len() + d.Characteristics.Len() + d.Descriptors.Len()

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.chars {
		n += ch.Taps()
	}
	for _, desc := range d.descs {
		n += desc.Taps()
	}
	return n
}

// FakeService is a device.Service identified by its UUID
type FakeService string

func (s FakeService) UUID() string { return string(s) }

// FakeCharacteristic is an in-memory device.Characteristic
type FakeCharacteristic struct {
	uuid      string
	canNotify bool

	Reads         *event.Feed[[]byte]
	Writes        *event.Feed[[]byte]
	Notifications *event.Feed[[]byte]
}

var _ device.Characteristic = (*FakeCharacteristic)(nil)

// NewFakeCharacteristic creates a characteristic; canNotify controls CanNotify
func NewFakeCharacteristic(uuid string, canNotify bool) *FakeCharacteristic {
	return &FakeCharacteristic{
		uuid:          uuid,
		canNotify:     canNotify,
		Reads:         event.NewFeed[[]byte](),
		Writes:        event.NewFeed[[]byte](),
		Notifications: event.NewFeed[[]byte](),
	}
}

func (c *FakeCharacteristic) UUID() string { return c.uuid }
func (c *FakeCharacteristic) CanNotify() bool { return c.canNotify }
func (c *FakeCharacteristic) WhenRead() event.Stream[[]byte] { return c.Reads }
func (c *FakeCharacteristic) WhenWritten() event.Stream[[]byte] { return c.Writes }
func (c *FakeCharacteristic) WhenNotificationReceived() event.Stream[[]byte] { return c.Notifications }

// Read publishes a completed read
func (c *FakeCharacteristic) Read(data []byte) { c.Reads.Send(data) }

// Write publishes a completed write
func (c *FakeCharacteristic) Write(data []byte) { c.Writes.Send(data) }

// Notify publishes a received notification
func (c *FakeCharacteristic) Notify(data []byte) { c.Notifications.Send(data) }

// Taps returns the number of live taps on the characteristic's data streams
func (c *FakeCharacteristic) Taps() int {
	return c.Reads.Len() + c.Writes.Len() + c.Notifications.Len()
}

// FakeDescriptor is an in-memory device.Descriptor
type FakeDescriptor struct {
	uuid string

	Reads  *event.Feed[[]byte]
	Writes *event.Feed[[]byte]
}

var _ device.Descriptor = (*FakeDescriptor)(nil)

// NewFakeDescriptor creates a descriptor
func NewFakeDescriptor(uuid string) *FakeDescriptor {
	return &FakeDescriptor{
		uuid:   uuid,
		Reads:  event.NewFeed[[]byte](),
		Writes: event.NewFeed[[]byte](),
	}
}

func (d *FakeDescriptor) UUID() string { return d.uuid }
func (d *FakeDescriptor) WhenRead() event.Stream[[]byte] { return d.Reads }
func (d *FakeDescriptor) WhenWritten() event.Stream[[]byte] { return d.Writes }

// Read publishes a completed read
func (d *FakeDescriptor) Read(data []byte) { d.Reads.Send(data) }

// Write publishes a completed write
func (d *FakeDescriptor) Write(data []byte) { d.Writes.Send(data) }

// Taps returns the number of live taps on the descriptor's data streams
func (d *FakeDescriptor) Taps() int {
	return d.Reads.Len() + d.Writes.Len()
}
