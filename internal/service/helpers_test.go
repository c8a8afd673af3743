package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/sse"
	"github.com/humidorapp/humidor-server/internal/store"
	"github.com/humidorapp/humidor-server/internal/store/badger"
	"github.com/humidorapp/humidor-server/internal/validation"
)

var testLogger = slog.New(slog.DiscardHandler)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev, ok := event.(sse.Event); ok {
		r.events = append(r.events, ev)
	}
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

var errDiskGone = errors.New("disk gone")

// failingStore wraps a real store and fails the writes that are switched on.
type failingStore struct {
	store.Store
	failSave     bool
	failComplete bool
	failReads    bool
	failRestore  bool
}

func (f *failingStore) RestoreOwner(ctx context.Context, userID string, data *store.OwnerData) error {
	if f.failRestore {
		return errDiskGone
	}
	return f.Store.RestoreOwner(ctx, userID, data)
}

func (f *failingStore) SaveActive(ctx context.Context, userID string, active []domain.ActiveTasting) error {
	if f.failSave {
		return errDiskGone
	}
	return f.Store.SaveActive(ctx, userID, active)
}

func (f *failingStore) CompleteTasting(ctx context.Context, rec *domain.ArchivedTasting, remaining []domain.ActiveTasting) error {
	if f.failComplete {
		return errDiskGone
	}
	return f.Store.CompleteTasting(ctx, rec, remaining)
}

func (f *failingStore) ListArchived(ctx context.Context, userID string) ([]domain.ArchivedTasting, error) {
	if f.failReads {
		return nil, errDiskGone
	}
	return f.Store.ListArchived(ctx, userID)
}

func newTestStore(t *testing.T) *badger.Store {
	t.Helper()
	s, err := badger.OpenInMemory(testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestCigar(t *testing.T, s store.Store, userID, name, brand string, quantity int) *domain.Cigar {
	t.Helper()
	inv := NewInventoryService(s, nil, validation.New(), testLogger)
	c, err := inv.Create(context.Background(), userID, domain.Cigar{
		Name:     name,
		Brand:    brand,
		Strength: 3,
		Price:    25,
		Quantity: quantity,
	})
	require.NoError(t, err)
	return c
}
