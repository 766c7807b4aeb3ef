package blelog

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Flags is a bit-set of log categories. Categories are independent and may be
// combined freely.
type Flags uint32

const (
	AdapterStatus Flags = 1 << iota
	AdapterScanResults
	AdapterScanStatus
	DeviceStatus
	ServiceDiscovered
	CharacteristicDiscovered
	CharacteristicRead
	CharacteristicWrite
	CharacteristicNotify
	DescriptorDiscovered
	DescriptorRead
	DescriptorWrite

	// DefaultFlags is used when no filter is requested
	DefaultFlags = AdapterStatus | DeviceStatus

	// AllFlags enables every category
	AllFlags = DescriptorWrite<<1 - 1
)

// ErrUnknownFlag is returned by ParseFlags for names that match no category
var ErrUnknownFlag = errors.New("unknown log flag")

var flagNames = map[Flags]string{
	AdapterStatus:            "AdapterStatus",
	AdapterScanResults:       "AdapterScanResults",
	AdapterScanStatus:        "AdapterScanStatus",
	DeviceStatus:             "DeviceStatus",
	ServiceDiscovered:        "ServiceDiscovered",
	CharacteristicDiscovered: "CharacteristicDiscovered",
	CharacteristicRead:       "CharacteristicRead",
	CharacteristicWrite:      "CharacteristicWrite",
	CharacteristicNotify:     "CharacteristicNotify",
	DescriptorDiscovered:     "DescriptorDiscovered",
	DescriptorRead:           "DescriptorRead",
	DescriptorWrite:          "DescriptorWrite",
}

// Has reports whether every bit of flag is set in f
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Split returns the single-bit members of f in ascending bit order
func (f Flags) Split() []Flags {
	out := make([]Flags, 0, bits.OnesCount32(uint32(f)))
	for rest := f; rest != 0; rest &= rest - 1 {
		out = append(out, rest&-rest)
	}
	return out
}

// String renders f as pipe-separated category names, e.g. "AdapterStatus|DeviceStatus".
// Bits outside AllFlags are rendered in hex.
func (f Flags) String() string {
	if f == 0 {
		return "None"
	}

	names := make([]string, 0, bits.OnesCount32(uint32(f)))
	for _, bit := range f.Split() {
		if name, ok := flagNames[bit]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("0x%x", uint32(bit)))
		}
	}
	return strings.Join(names, "|")
}

// ParseFlags parses a list of category names separated by "," or "|".
// Names are case-insensitive and may be written in CamelCase or kebab-case
// ("DeviceStatus", "device-status"). The special names "all", "default" and
// "none" are also accepted, as are hex bit values ("0x1000") so that String
// output always parses back.
func ParseFlags(s string) (Flags, error) {
	var f Flags

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	})
	for _, field := range fields {
		key := canonicalFlagName(field)
		switch key {
		case "":
			continue
		case "all":
			f |= AllFlags
		case "default":
			f |= DefaultFlags
		case "none":
		default:
			if strings.HasPrefix(key, "0x") {
				raw, err := strconv.ParseUint(key[2:], 16, 32)
				if err != nil {
					return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, field)
				}
				f |= Flags(raw)
				continue
			}
			flag, ok := flagsByKey[key]
			if !ok {
				return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, field)
			}
			f |= flag
		}
	}
	return f, nil
}

// FlagNames returns every category name in bit order
func FlagNames() []string {
	names := make([]string, 0, len(flagNames))
	for _, bit := range AllFlags.Split() {
		names = append(names, flagNames[bit])
	}
	return names
}

var flagsByKey = func() map[string]Flags {
	m := make(map[string]Flags, len(flagNames))
	for flag, name := range flagNames {
		m[canonicalFlagName(name)] = flag
	}
	return m
}()

func canonicalFlagName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "")
	return strings.ReplaceAll(name, "_", "")
}
