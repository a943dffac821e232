package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
	"github.com/DoyleJ11/draw-guess-backend/internal/store/memory"
)

// --- WordSource ---

type MockWordSource struct {
	mock.Mock
}

func (m *MockWordSource) Next(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockWordSource) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- EventLog ---

type MockEventLog struct {
	mock.Mock
}

func (m *MockEventLog) Append(ctx context.Context, roomID string, events []engine.Event) error {
	args := m.Called(ctx, roomID, events)
	return args.Error(0)
}

// --- RoomStore ---

var errDiskOnFire = errors.New("disk on fire")

// flakyStore fails Save while failSave is set.
type flakyStore struct {
	*memory.Store
	failSave atomic.Bool
}

func (f *flakyStore) Save(ctx context.Context, room engine.Room) error {
	if f.failSave.Load() {
		return errDiskOnFire
	}
	return f.Store.Save(ctx, room)
}

// --- clock and ids ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	n atomic.Int64
}

func (s *seqIDs) player() string { return fmt.Sprintf("P%d", s.n.Add(1)) }

func (s *seqIDs) round() string { return fmt.Sprintf("round-%d", s.n.Add(1)) }
