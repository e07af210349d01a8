package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ardnew/temperhum/host/hal"
)

// =============================================================================
// Mock Transport for Testing
// =============================================================================

// mockTransport implements hal.ControlTransport with testify/mock.
type mockTransport struct {
	mock.Mock
	name string
}

func newMockTransport(name string) *mockTransport {
	return &mockTransport{name: name}
}

func (m *mockTransport) String() string {
	return m.name
}

func (m *mockTransport) ControlTransfer(ctx context.Context, setup *hal.SetupPacket, data []byte) (int, error) {
	args := m.Called(ctx, setup, data)
	return args.Int(0), args.Error(1)
}

func (m *mockTransport) Close() error {
	return m.Called().Error(0)
}

var (
	isWrite = mock.MatchedBy(func(s *hal.SetupPacket) bool { return !s.IsIn() })
	isRead  = mock.MatchedBy(func(s *hal.SetupPacket) bool { return s.IsIn() })
)

// noSleep replaces the settle wait for the duration of the test and returns
// a pointer to the number of waits observed.
func noSleep(t *testing.T) *int {
	t.Helper()
	var count int
	saved := sleep
	sleep = func(time.Duration) { count++ }
	t.Cleanup(func() { sleep = saved })
	return &count
}
