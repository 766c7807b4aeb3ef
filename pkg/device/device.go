package device

import (
	"github.com/srg/bletap/pkg/event"
)

// DeviceInfo identifies a remote peripheral
//
//nolint:revive // DeviceInfo name is intentional for clarity when used as a device.DeviceInfo
type DeviceInfo interface {
	ID() string
}

// ScanResult is a single advertisement seen while scanning
type ScanResult struct {
	Device DeviceInfo
	RSSI   int
}

// DeviceStatusChange carries a device together with the status it moved to.
// The status is captured when the change is published, so consumers never
// race with a later transition of the same device.
type DeviceStatusChange struct {
	Device Device
	Status ConnectionStatus
}

// Adapter is the BLE controller: the source of radio, scan and connection events
type Adapter interface {
	WhenStatusChanged() event.Stream[AdapterStatus]
	ScanListen() event.Stream[ScanResult]
	WhenScanningStatusChanged() event.Stream[ScanStatus]
	WhenDeviceStatusChanged() event.Stream[DeviceStatusChange]
}

// Device is a remote peripheral and the source of its GATT discovery events
type Device interface {
	DeviceInfo

	WhenServiceDiscovered() event.Stream[Service]
	WhenAnyCharacteristicDiscovered() event.Stream[Characteristic]
	WhenAnyDescriptorDiscovered() event.Stream[Descriptor]
}

// Service represents a GATT service
type Service interface {
	UUID() string
}

// Characteristic represents a GATT characteristic and its data events.
// Buffers delivered on the byte streams may be nil when no value is associated.
type Characteristic interface {
	UUID() string
	CanNotify() bool

	WhenRead() event.Stream[[]byte]
	WhenWritten() event.Stream[[]byte]
	WhenNotificationReceived() event.Stream[[]byte]
}

// Descriptor represents a GATT descriptor and its data events
type Descriptor interface {
	UUID() string

	WhenRead() event.Stream[[]byte]
	WhenWritten() event.Stream[[]byte]
}
