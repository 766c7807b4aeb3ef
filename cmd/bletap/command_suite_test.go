package main

import (
	"bytes"
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/srg/bletap/internal/testutils"
	"github.com/srg/bletap/pkg/device"
	"github.com/stretchr/testify/suite"
)

// Test device addresses for consistent fake device identification
const (
	TestDeviceAddress1 = "00:00:00:00:00:01"
	TestDeviceAddress2 = "00:00:00:00:00:02"
)

var testClock = func() time.Time {
	return time.Date(2025, 3, 14, 12, 34, 56, 789_000_000, time.UTC)
}

// CommandTestSuite provides a fake adapter and command execution helpers
type CommandTestSuite struct {
	suite.Suite

	Helper          *testutils.TestHelper
	Backend         *fakeBackend
	originalBackend func(*logrus.Logger) backend
}

func (s *CommandTestSuite) SetupTest() {
	s.Helper = testutils.NewTestHelper(s.T())
	s.Backend = newFakeBackend()
	s.originalBackend = newBackend
	newBackend = func(*logrus.Logger) backend { return s.Backend }
	resetFlags(rootCmd)
}

func (s *CommandTestSuite) TearDownTest() {
	newBackend = s.originalBackend
}

// ExecuteCommand runs the root command with args, returns output and error.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default so
// executions do not leak state into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// fakeAttribute is a characteristic the watch command can read or subscribe to
type fakeAttribute struct {
	ch      *testutils.FakeCharacteristic
	canRead bool
	value   []byte
	readErr error
}

func (a *fakeAttribute) UUID() string    { return a.ch.UUID() }
func (a *fakeAttribute) CanRead() bool   { return a.canRead }
func (a *fakeAttribute) CanNotify() bool { return a.ch.CanNotify() }

func (a *fakeAttribute) Read(context.Context) ([]byte, error) {
	if a.readErr != nil {
		return nil, a.readErr
	}
	a.ch.Read(a.value)
	return a.value, nil
}

// EnableNotifications delivers one notification right away
func (a *fakeAttribute) EnableNotifications() error {
	a.ch.Notify(a.value)
	return nil
}

type fakePeripheral struct {
	dev      *testutils.FakeDevice
	services []string
	attrs    []*fakeAttribute
}

// fakeBackend drives testutils.FakeAdapter the way the go-ble adapter drives its feeds
type fakeBackend struct {
	*testutils.FakeAdapter

	openErr     error
	peripherals map[string]*fakePeripheral
	connected   []*testutils.FakeDevice
	closed      bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		FakeAdapter: testutils.NewFakeAdapter(),
		peripherals: make(map[string]*fakePeripheral),
	}
}

// AddPeripheral registers a connectable device with a battery and a heart rate characteristic
func (b *fakeBackend) AddPeripheral(address string) *fakePeripheral {
	p := &fakePeripheral{
		dev:      testutils.NewFakeDevice(address),
		services: []string{"180f", "180d"},
		attrs: []*fakeAttribute{
			{ch: testutils.NewFakeCharacteristic("2a19", false), canRead: true, value: []byte{0x64}},
			{ch: testutils.NewFakeCharacteristic("2a37", true), value: []byte{0x00, 0x48}},
		},
	}
	b.peripherals[address] = p
	return p
}

func (b *fakeBackend) Open() error {
	if b.openErr != nil {
		b.SetStatus(device.AdapterPoweredOff)
		return b.openErr
	}
	b.SetStatus(device.AdapterPoweredOn)
	return nil
}

func (b *fakeBackend) Scan(_ context.Context, _ bool) error {
	b.SetScanning(true)
	for _, address := range []string{TestDeviceAddress1, TestDeviceAddress2} {
		if p, ok := b.peripherals[address]; ok {
			b.Advertise(p.dev, -50)
		}
	}
	b.SetScanning(false)
	return nil
}

func (b *fakeBackend) Connect(_ context.Context, address string, _ time.Duration) ([]attribute, error) {
	p, ok := b.peripherals[address]
	if !ok {
		return nil, device.ErrTimeout
	}

	b.SetDeviceStatus(p.dev, device.Connecting)
	b.FakeAdapter.Connect(p.dev)
	b.connected = append(b.connected, p.dev)

	for _, svc := range p.services {
		p.dev.DiscoverService(svc)
	}
	attrs := make([]attribute, len(p.attrs))
	for i, a := range p.attrs {
		p.dev.DiscoverCharacteristic(a.ch)
		attrs[i] = a
	}
	return attrs, nil
}

func (b *fakeBackend) Close() error {
	for _, dev := range b.connected {
		b.FakeAdapter.Disconnect(dev)
	}
	b.connected = nil
	b.closed = true
	b.SetStatus(device.AdapterPoweredOff)
	return nil
}
