package goble

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"
)

type mockRadio struct {
	mock.Mock
}

func (m *mockRadio) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	return m.Called(ctx, allowDup, h).Error(0)
}

func (m *mockRadio) Dial(ctx context.Context, addr ble.Addr) (ble.Client, error) {
	args := m.Called(ctx, addr)
	client, _ := args.Get(0).(ble.Client)
	return client, args.Error(1)
}

func (m *mockRadio) Stop() error {
	return m.Called().Error(0)
}

type mockClient struct {
	mock.Mock
	disconnected chan struct{}
}

func newMockClient() *mockClient {
	return &mockClient{disconnected: make(chan struct{})}
}

func (m *mockClient) DiscoverProfile(force bool) (*ble.Profile, error) {
	args := m.Called(force)
	profile, _ := args.Get(0).(*ble.Profile)
	return profile, args.Error(1)
}

func (m *mockClient) ReadCharacteristic(c *ble.Characteristic) ([]byte, error) {
	args := m.Called(c)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockClient) WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error {
	return m.Called(c, value, noRsp).Error(0)
}

func (m *mockClient) ReadDescriptor(d *ble.Descriptor) ([]byte, error) {
	args := m.Called(d)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockClient) WriteDescriptor(d *ble.Descriptor, value []byte) error {
	return m.Called(d, value).Error(0)
}

func (m *mockClient) Subscribe(c *ble.Characteristic, ind bool, h ble.NotificationHandler) error {
	return m.Called(c, ind, h).Error(0)
}

func (m *mockClient) CancelConnection() error {
	return m.Called().Error(0)
}

func (m *mockClient) Disconnected() <-chan struct{} {
	return m.disconnected
}

// fakeAdvertisement overrides the fields the adapter reads; any other method panics
type fakeAdvertisement struct {
	ble.Advertisement
	addr string
	rssi int
}

func (a fakeAdvertisement) Addr() ble.Addr {
	return ble.NewAddr(a.addr)
}

func (a fakeAdvertisement) RSSI() int {
	return a.rssi
}
