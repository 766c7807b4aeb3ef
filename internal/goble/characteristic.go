package goble

import (
	"context"
	"fmt"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bletap/pkg/device"
	"github.com/srg/bletap/pkg/event"
)

// Characteristic is a discovered GATT characteristic. Completed reads, writes
// and received notifications are published on its streams.
type Characteristic struct {
	uuid string
	raw  *ble.Characteristic
	dev  *Device

	reads         *event.Feed[[]byte]
	writes        *event.Feed[[]byte]
	notifications *event.Feed[[]byte]
}

var _ device.Characteristic = (*Characteristic)(nil)

func newCharacteristic(dev *Device, raw *ble.Characteristic) *Characteristic {
	return &Characteristic{
		uuid:          device.NormalizeUUID(raw.UUID.String()),
		raw:           raw,
		dev:           dev,
		reads:         event.NewFeed[[]byte](),
		writes:        event.NewFeed[[]byte](),
		notifications: event.NewFeed[[]byte](),
	}
}

func (c *Characteristic) UUID() string {
	return c.uuid
}

// CanNotify reports whether the characteristic supports notify or indicate
func (c *Characteristic) CanNotify() bool {
	return isNotifiable(c.raw.Property)
}

// CanRead reports whether the characteristic supports reads
func (c *Characteristic) CanRead() bool {
	return c.raw.Property&ble.CharRead != 0
}

func (c *Characteristic) WhenRead() event.Stream[[]byte] {
	return c.reads
}

func (c *Characteristic) WhenWritten() event.Stream[[]byte] {
	return c.writes
}

func (c *Characteristic) WhenNotificationReceived() event.Stream[[]byte] {
	return c.notifications
}

// Read fetches the value from the peripheral and publishes it on WhenRead.
// go-ble reads cannot be cancelled, so ctx only bounds how long the caller waits.
func (c *Characteristic) Read(ctx context.Context) ([]byte, error) {
	client, err := c.dev.gatt()
	if err != nil {
		return nil, err
	}

	type readResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan readResult, 1)

	go func() {
		data, err := client.ReadCharacteristic(c.raw)
		resultCh <- readResult{data: data, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("failed to read characteristic %s: %w", c.uuid, NormalizeError(result.err))
		}
		data := copyBytes(result.data)
		c.reads.Send(data)
		return data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to read characteristic %s: %w", c.uuid, NormalizeError(ctx.Err()))
	}
}

// Write sends data to the peripheral and publishes it on WhenWritten once accepted
func (c *Characteristic) Write(data []byte, withResponse bool) error {
	client, err := c.dev.gatt()
	if err != nil {
		return err
	}
	if err := client.WriteCharacteristic(c.raw, data, !withResponse); err != nil {
		return fmt.Errorf("failed to write characteristic %s: %w", c.uuid, NormalizeError(err))
	}
	c.writes.Send(copyBytes(data))
	return nil
}

// EnableNotifications subscribes to value updates. Indications are used when
// the characteristic does not support notify.
func (c *Characteristic) EnableNotifications() error {
	if !c.CanNotify() {
		return fmt.Errorf("characteristic %s: notifications %w", c.uuid, device.ErrUnsupported)
	}
	client, err := c.dev.gatt()
	if err != nil {
		return err
	}

	indicate := c.raw.Property&ble.CharNotify == 0
	err = client.Subscribe(c.raw, indicate, func(data []byte) {
		c.notifications.Send(copyBytes(data))
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to characteristic %s: %w", c.uuid, NormalizeError(err))
	}

	c.dev.logger.WithFields(logrus.Fields{
		"address":   c.dev.address,
		"char_uuid": c.uuid,
		"indicate":  indicate,
	}).Debug("Notifications enabled")
	return nil
}
