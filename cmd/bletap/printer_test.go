package main

import (
	"bytes"
	"testing"

	"github.com/srg/bletap/internal/testutils"
	"github.com/srg/bletap/pkg/blelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var printerEvents = []blelog.Event{
	{Category: blelog.AdapterStatus, Payload: "Changed to PoweredOn"},
	{Category: blelog.DeviceStatus, Subject: TestDeviceAddress1, Payload: "Changed to Connected"},
	{Category: blelog.ServiceDiscovered, Subject: "180d"},
	{Category: blelog.CharacteristicNotify, Subject: "2a37", Payload: "Value: 00-48"},
}

func TestTextPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newTextPrinter(&buf, false)
	p.clock = testClock

	for _, ev := range printerEvents {
		require.NoError(t, p.Print(ev))
	}

	testutils.NewTextAsserter(t).Assert(buf.String(), `
12:34:56.789 [AdapterStatus] Changed to PoweredOn
12:34:56.789 [DeviceStatus] 00:00:00:00:00:01 Changed to Connected
12:34:56.789 [ServiceDiscovered] 180d
12:34:56.789 [CharacteristicNotify] 2a37 Value: 00-48
`)
}

func TestTextPrinterColors(t *testing.T) {
	var buf bytes.Buffer
	p := newTextPrinter(&buf, true)
	p.clock = testClock

	require.NoError(t, p.Print(printerEvents[0]))
	assert.Contains(t, buf.String(), "\x1b[", "colored output MUST contain escape sequences")
	assert.Contains(t, buf.String(), "Changed to PoweredOn")

	buf.Reset()
	require.NoError(t, p.Print(blelog.Event{Category: blelog.AdapterStatus | blelog.DeviceStatus, Payload: "x"}))
	assert.NotContains(t, buf.String(), "\x1b[", "unknown categories MUST print uncolored")
}

func TestJSONPrinter(t *testing.T) {
	var buf bytes.Buffer
	p, err := newPrinter(&buf, "json", false)
	require.NoError(t, err)
	p.(*jsonPrinter).clock = testClock

	for _, ev := range printerEvents[:3] {
		require.NoError(t, p.Print(ev))
	}

	testutils.NewJSONAsserter(t).AssertLines(buf.String(), `[
		{"time": "2025-03-14T12:34:56.789Z", "category": "AdapterStatus", "payload": "Changed to PoweredOn"},
		{"time": "2025-03-14T12:34:56.789Z", "category": "DeviceStatus", "subject": "00:00:00:00:00:01", "payload": "Changed to Connected"},
		{"time": "2025-03-14T12:34:56.789Z", "category": "ServiceDiscovered", "subject": "180d", "payload": ""}
	]`)
}

func TestNewPrinterRejectsUnknownFormat(t *testing.T) {
	_, err := newPrinter(&bytes.Buffer{}, "xml", false)
	assert.ErrorContains(t, err, "invalid format 'xml'")
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, colorEnabled("always", &buf))
	assert.False(t, colorEnabled("never", &buf))
	assert.False(t, colorEnabled("auto", &buf), "non-terminal writers MUST NOT be colored in auto mode")
}
