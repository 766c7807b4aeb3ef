package goble

import (
	"context"

	"github.com/go-ble/ble"
)

// DeviceFactory creates the platform ble.Device (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = platformDevice

// radio is the part of ble.Device the adapter drives
type radio interface {
	Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error
	Dial(ctx context.Context, addr ble.Addr) (ble.Client, error)
	Stop() error
}

// gattClient is the part of ble.Client a connected device uses
type gattClient interface {
	DiscoverProfile(force bool) (*ble.Profile, error)
	ReadCharacteristic(c *ble.Characteristic) ([]byte, error)
	WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error
	ReadDescriptor(d *ble.Descriptor) ([]byte, error)
	WriteDescriptor(d *ble.Descriptor, value []byte) error
	Subscribe(c *ble.Characteristic, ind bool, h ble.NotificationHandler) error
	CancelConnection() error
	Disconnected() <-chan struct{}
}

// dialer opens a GATT client; tests replace it to avoid a real ble.Client
type dialer func(ctx context.Context, r radio, address string) (gattClient, error)

func dialGATT(ctx context.Context, r radio, address string) (gattClient, error) {
	client, err := r.Dial(ctx, ble.NewAddr(address))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// openRadio creates the radio through DeviceFactory (can be overridden in tests)
var openRadio = func() (radio, error) {
	dev, err := DeviceFactory()
	if err != nil {
		return nil, err
	}
	return dev, nil
}
