package main

import (
	"errors"
	"fmt"

	"github.com/srg/bletap/pkg/config"
	"github.com/srg/bletap/pkg/device"
)

// Command-level errors
var (
	// ErrStreamFailed indicates the event log stopped because an upstream stream failed
	ErrStreamFailed = errors.New("event stream failed")
)

// FormatUserError turns known errors into a one-line hint for the terminal
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is turned off; turn it on and try again"
	case errors.Is(err, device.ErrUnsupported) && !errors.Is(err, device.ErrNotConnected):
		return fmt.Sprintf("not supported on this system: %v", err)
	case errors.Is(err, device.ErrTimeout):
		return fmt.Sprintf("timed out: %v", err)
	case errors.Is(err, config.ErrInvalidConfig):
		return fmt.Sprintf("%v (see --config)", err)
	default:
		return err.Error()
	}
}
