package device

import "fmt"

// AdapterStatus is the power/availability state of the radio
type AdapterStatus int

const (
	AdapterUnknown AdapterStatus = iota
	AdapterResetting
	AdapterUnsupported
	AdapterUnauthorized
	AdapterPoweredOff
	AdapterPoweredOn
)

var adapterStatusNames = [...]string{
	AdapterUnknown:      "Unknown",
	AdapterResetting:    "Resetting",
	AdapterUnsupported:  "Unsupported",
	AdapterUnauthorized: "Unauthorized",
	AdapterPoweredOff:   "PoweredOff",
	AdapterPoweredOn:    "PoweredOn",
}

func (s AdapterStatus) String() string {
	if s >= 0 && int(s) < len(adapterStatusNames) {
		return adapterStatusNames[s]
	}
	return fmt.Sprintf("AdapterStatus(%d)", int(s))
}

// ConnectionStatus is the link state of a single device
type ConnectionStatus int

const (
	Disconnected ConnectionStatus = iota
	Disconnecting
	Connecting
	Connected
)

var connectionStatusNames = [...]string{
	Disconnected:  "Disconnected",
	Disconnecting: "Disconnecting",
	Connecting:    "Connecting",
	Connected:     "Connected",
}

func (s ConnectionStatus) String() string {
	if s >= 0 && int(s) < len(connectionStatusNames) {
		return connectionStatusNames[s]
	}
	return fmt.Sprintf("ConnectionStatus(%d)", int(s))
}

// ScanStatus reports whether the adapter is currently scanning
type ScanStatus bool

const (
	ScanStopped  ScanStatus = false
	ScanScanning ScanStatus = true
)

func (s ScanStatus) String() string {
	if s {
		return "Scanning"
	}
	return "Stopped"
}
