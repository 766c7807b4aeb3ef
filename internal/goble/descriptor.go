package goble

import (
	"context"
	"fmt"

	"github.com/go-ble/ble"
	"github.com/srg/bletap/pkg/device"
	"github.com/srg/bletap/pkg/event"
)

// Descriptor is a discovered GATT descriptor
type Descriptor struct {
	uuid string
	raw  *ble.Descriptor
	dev  *Device

	reads  *event.Feed[[]byte]
	writes *event.Feed[[]byte]
}

var _ device.Descriptor = (*Descriptor)(nil)

func newDescriptor(dev *Device, raw *ble.Descriptor) *Descriptor {
	return &Descriptor{
		uuid:   device.NormalizeUUID(raw.UUID.String()),
		raw:    raw,
		dev:    dev,
		reads:  event.NewFeed[[]byte](),
		writes: event.NewFeed[[]byte](),
	}
}

func (d *Descriptor) UUID() string {
	return d.uuid
}

func (d *Descriptor) WhenRead() event.Stream[[]byte] {
	return d.reads
}

func (d *Descriptor) WhenWritten() event.Stream[[]byte] {
	return d.writes
}

// Read fetches the descriptor value and publishes it on WhenRead.
// A value cached during discovery is returned without a round trip.
func (d *Descriptor) Read(ctx context.Context) ([]byte, error) {
	if len(d.raw.Value) > 0 {
		data := copyBytes(d.raw.Value)
		d.reads.Send(data)
		return data, nil
	}

	// On macOS go-ble does not populate descriptor handles
	if d.raw.Handle == 0 {
		return nil, fmt.Errorf("descriptor %s: handle not available: %w", d.uuid, device.ErrUnsupported)
	}

	client, err := d.dev.gatt()
	if err != nil {
		return nil, err
	}

	type readResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan readResult, 1)

	go func() {
		data, err := client.ReadDescriptor(d.raw)
		resultCh <- readResult{data: data, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("failed to read descriptor %s: %w", d.uuid, NormalizeError(result.err))
		}
		data := copyBytes(result.data)
		d.reads.Send(data)
		return data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to read descriptor %s: %w", d.uuid, NormalizeError(ctx.Err()))
	}
}

// Write sends data to the descriptor and publishes it on WhenWritten once accepted
func (d *Descriptor) Write(data []byte) error {
	client, err := d.dev.gatt()
	if err != nil {
		return err
	}
	if err := client.WriteDescriptor(d.raw, data); err != nil {
		return fmt.Errorf("failed to write descriptor %s: %w", d.uuid, NormalizeError(err))
	}
	d.writes.Send(copyBytes(data))
	return nil
}
