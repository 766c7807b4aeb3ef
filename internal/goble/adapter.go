package goble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/internal/groutine"
	"github.com/srg/bletap/pkg/device"
	"github.com/srg/bletap/pkg/event"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultConnectTimeout is used when Connect gets a non-positive timeout
const DefaultConnectTimeout = 30 * time.Second

// Adapter drives the local radio through go-ble and publishes everything it
// does on the device.Adapter streams.
type Adapter struct {
	logger *logrus.Logger
	dial   dialer

	status       *event.Feed[device.AdapterStatus]
	scanResults  *event.Feed[device.ScanResult]
	scanStatus   *event.Feed[device.ScanStatus]
	deviceStatus *event.Feed[device.DeviceStatusChange]

	mu      sync.Mutex
	radio   radio
	devices *orderedmap.OrderedMap[string, *Device]
}

var _ device.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter. Call Open before scanning or connecting.
func NewAdapter(logger *logrus.Logger) *Adapter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Adapter{
		logger:       logger,
		dial:         dialGATT,
		status:       event.NewFeed[device.AdapterStatus](),
		scanResults:  event.NewFeed[device.ScanResult](),
		scanStatus:   event.NewFeed[device.ScanStatus](),
		deviceStatus: event.NewFeed[device.DeviceStatusChange](),
		devices:      orderedmap.New[string, *Device](),
	}
}

func (a *Adapter) WhenStatusChanged() event.Stream[device.AdapterStatus] {
	return a.status
}

func (a *Adapter) ScanListen() event.Stream[device.ScanResult] {
	return a.scanResults
}

func (a *Adapter) WhenScanningStatusChanged() event.Stream[device.ScanStatus] {
	return a.scanStatus
}

func (a *Adapter) WhenDeviceStatusChanged() event.Stream[device.DeviceStatusChange] {
	return a.deviceStatus
}

// Open creates the platform radio. The resulting power state is published
// on WhenStatusChanged whether or not Open succeeds.
func (a *Adapter) Open() error {
	a.mu.Lock()
	if a.radio != nil {
		a.mu.Unlock()
		return nil
	}

	r, err := openRadio()
	if err != nil {
		a.mu.Unlock()
		err = NormalizeError(err)
		a.logger.WithField("error", err).Error("Failed to open BLE radio")
		a.status.Send(statusForError(err))
		return fmt.Errorf("failed to open BLE radio: %w", err)
	}
	a.radio = r
	a.mu.Unlock()

	a.logger.Debug("BLE radio opened")
	a.status.Send(device.AdapterPoweredOn)
	return nil
}

func statusForError(err error) device.AdapterStatus {
	switch {
	case errors.Is(err, device.ErrBluetoothOff):
		return device.AdapterPoweredOff
	case errors.Is(err, device.ErrUnsupported):
		return device.AdapterUnsupported
	default:
		return device.AdapterUnknown
	}
}

func (a *Adapter) current() (radio, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.radio == nil {
		return nil, device.ErrNotInitialized
	}
	return a.radio, nil
}

// Scan listens for advertisements until ctx is done. Cancellation and
// deadline are a normal end of scan and return nil.
func (a *Adapter) Scan(ctx context.Context, allowDup bool) error {
	r, err := a.current()
	if err != nil {
		return err
	}

	a.scanStatus.Send(device.ScanScanning)
	defer a.scanStatus.Send(device.ScanStopped)

	a.logger.WithField("allow_dup", allowDup).Debug("Scanning...")
	err = r.Scan(ctx, allowDup, func(adv ble.Advertisement) {
		a.scanResults.Send(device.ScanResult{
			Device: advertisedDevice(strings.ToLower(adv.Addr().String())),
			RSSI:   adv.RSSI(),
		})
	})
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return NormalizeError(err)
}

// advertisedDevice identifies a device seen in an advertisement
type advertisedDevice string

func (d advertisedDevice) ID() string {
	return string(d)
}

// Connect dials address and discovers its profile. Connecting and Connected
// are published before discovery starts, so subscribers that attach on
// Connected observe every discovered attribute.
func (a *Adapter) Connect(ctx context.Context, address string, timeout time.Duration) (*Device, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return nil, fmt.Errorf("device address is empty")
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	r, err := a.current()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if _, ok := a.devices.Get(address); ok {
		a.mu.Unlock()
		return nil, device.ErrAlreadyConnected
	}
	dev := newDevice(address, a.logger)
	a.devices.Set(address, dev)
	a.mu.Unlock()

	a.publish(dev, device.Connecting)

	a.logger.WithFields(logrus.Fields{
		"address": address,
		"timeout": timeout,
	}).Info("Connecting to BLE device...")

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	client, err := a.dial(dialCtx, r, address)
	cancel()
	if err != nil {
		a.forget(dev)
		a.publish(dev, device.Disconnected)
		return nil, fmt.Errorf("failed to connect to device with address %q: %w", address, NormalizeError(err))
	}

	if !a.owns(dev) {
		// Disconnect was called while dialing
		if cerr := client.CancelConnection(); cerr != nil {
			a.logger.WithField("error", cerr).Debug("Failed to cancel abandoned connection")
		}
		return nil, fmt.Errorf("connection to %q abandoned: %w", address, device.ErrNotConnected)
	}

	dev.attach(client)
	a.publish(dev, device.Connected)
	a.monitor(dev, client)

	if err := dev.discover(client); err != nil {
		a.logger.WithFields(logrus.Fields{
			"address": address,
			"error":   err,
		}).Error("Failed to discover profile")
		if derr := a.Disconnect(address); derr != nil {
			a.logger.WithField("error", derr).Warn("Failed to cancel connection after discovery failure")
		}
		return nil, fmt.Errorf("failed to discover profile: %w", err)
	}

	a.logger.WithField("address", address).Info("BLE device connected")
	return dev, nil
}

// monitor publishes Disconnected when the peripheral drops the link
func (a *Adapter) monitor(dev *Device, client gattClient) {
	groutine.Go(context.Background(), "ble-disconnect-monitor", a.logger, func(ctx context.Context) {
		select {
		case <-client.Disconnected():
			if !a.forget(dev) {
				return
			}
			dev.detach()
			a.logger.WithField("address", dev.address).Warn("BLE device disconnected")
			a.publish(dev, device.Disconnected)
		case <-dev.done:
		}
	})
}

func (a *Adapter) owns(dev *Device) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	current, ok := a.devices.Get(dev.address)
	return ok && current == dev
}

// forget removes dev from the connected set. Reports false if dev was
// already removed or replaced.
func (a *Adapter) forget(dev *Device) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	current, ok := a.devices.Get(dev.address)
	if !ok || current != dev {
		return false
	}
	a.devices.Delete(dev.address)
	return true
}

func (a *Adapter) publish(dev *Device, status device.ConnectionStatus) {
	a.deviceStatus.Send(device.DeviceStatusChange{Device: dev, Status: status})
}

// Disconnect cancels the connection to address
func (a *Adapter) Disconnect(address string) error {
	address = strings.ToLower(strings.TrimSpace(address))

	a.mu.Lock()
	dev, ok := a.devices.Get(address)
	a.mu.Unlock()
	if !ok || !a.forget(dev) {
		return device.ErrNotConnected
	}

	a.publish(dev, device.Disconnecting)
	client := dev.detach()

	var err error
	if client != nil {
		err = NormalizeError(client.CancelConnection())
	}
	a.publish(dev, device.Disconnected)

	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"address": address,
			"error":   err,
		}).Warn("BLE device disconnected with errors")
		return err
	}
	a.logger.WithField("address", address).Info("BLE device disconnected")
	return nil
}

// Connected returns the addresses of connected devices in connection order
func (a *Adapter) Connected() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, a.devices.Len())
	for pair := a.devices.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Close disconnects every device and stops the radio
func (a *Adapter) Close() error {
	var errs []error
	for _, address := range a.Connected() {
		if err := a.Disconnect(address); err != nil && !errors.Is(err, device.ErrNotConnected) {
			errs = append(errs, err)
		}
	}

	a.mu.Lock()
	r := a.radio
	a.radio = nil
	a.mu.Unlock()

	if r != nil {
		if err := r.Stop(); err != nil {
			errs = append(errs, NormalizeError(err))
		}
		a.status.Send(device.AdapterPoweredOff)
	}
	return errors.Join(errs...)
}
