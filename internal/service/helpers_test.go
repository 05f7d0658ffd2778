package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldservice-backend/internal/broadcast"
	"fieldservice-backend/internal/domain"
	"fieldservice-backend/internal/repository"
	"fieldservice-backend/internal/repository/memory"
)

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (p *recordingPublisher) Publish(e broadcast.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []broadcast.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broadcast.Event(nil), p.events...)
}

func (p *recordingPublisher) Kinds() []broadcast.Kind {
	var kinds []broadcast.Kind
	for _, e := range p.Events() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(e broadcast.Event) {
	m.Called(e)
}

type fixture struct {
	store *memory.Store
	clock *testclock.Clock
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := testclock.NewClock(testNow)
	return &fixture{
		store: memory.NewStore(clk),
		clock: clk,
		pub:   &recordingPublisher{},
	}
}

func (f *fixture) addDevice(t *testing.T, serial string, availability domain.DeviceAvailability) *domain.Device {
	t.Helper()
	d := &domain.Device{DeviceName: "Pipe camera", SerialNo: serial, Model: "PC-200", Availability: availability}
	require.NoError(t, f.store.Devices().Create(context.Background(), d))
	return d
}

func (f *fixture) addJob(t *testing.T, customer string) *domain.Job {
	t.Helper()
	j := &domain.Job{
		CustomerName: customer,
		PhoneNumber:  "555-0100",
		Location:     "12 Elm St",
		Issue:        "Blocked drain",
		WorkDate:     date("2025-03-11"),
		Priority:     domain.JobPriorityHigh,
	}
	require.NoError(t, f.store.Jobs().Create(context.Background(), j))
	return j
}

// requireLedgerConsistent checks that a device is rented exactly when one
// active rental references its serial.
func requireLedgerConsistent(t *testing.T, ledger repository.Ledger) {
	t.Helper()
	ctx := context.Background()

	devices, err := ledger.Devices().List(ctx, "")
	require.NoError(t, err)
	active, err := ledger.Rentals().List(ctx, domain.RentalStatusActive)
	require.NoError(t, err)

	activeBySerial := make(map[string]int)
	for _, r := range active {
		activeBySerial[r.DeviceSerial]++
	}
	for _, d := range devices {
		n := activeBySerial[d.SerialNo]
		require.LessOrEqual(t, n, 1, "device %s has %d active rentals", d.SerialNo, n)
		require.Equal(t, d.Availability == domain.DeviceRented, n == 1,
			"device %s is %s with %d active rentals", d.SerialNo, d.Availability, n)
	}
}
