package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/sse"
	"github.com/humidorapp/humidor-server/internal/validation"
)

func setupInventory(t *testing.T) (*InventoryService, *recordingEmitter) {
	t.Helper()
	events := &recordingEmitter{}
	svc := NewInventoryService(newTestStore(t), events, validation.New(), testLogger)
	clock := newFakeClock()
	svc.now = clock.Now
	return svc, events
}

func TestInventory_CreateAssignsIdentity(t *testing.T) {
	svc, events := setupInventory(t)

	c, err := svc.Create(context.Background(), "user-1", domain.Cigar{
		ID:       "caller-supplied",
		Name:     "Robusto X",
		Brand:    "Marca Y",
		Origin:   "Cuba",
		Strength: 4,
		Price:    30,
		Quantity: 5,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "caller-supplied", c.ID)
	assert.Equal(t, "user-1", c.UserID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
	assert.Equal(t, []sse.EventType{sse.EventCigarCreated}, events.types())
}

func TestInventory_CreateValidation(t *testing.T) {
	svc, _ := setupInventory(t)

	_, err := svc.Create(context.Background(), "user-1", domain.Cigar{Brand: "B", Strength: 9, Quantity: -1})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	details, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "strength")
	assert.Contains(t, details, "quantity")
}

func TestInventory_UpdateAndDelete(t *testing.T) {
	svc, events := setupInventory(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "user-1", domain.Cigar{Name: "Corona", Brand: "B", Strength: 2, Quantity: 2})
	require.NoError(t, err)

	zero := 0
	notes := "last box"
	updated, err := svc.Update(ctx, "user-1", c.ID, domain.CigarPatch{Quantity: &zero, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)
	assert.Equal(t, "last box", updated.Notes)
	assert.Equal(t, "Corona", updated.Name)

	bad := -3
	_, err = svc.Update(ctx, "user-1", c.ID, domain.CigarPatch{Quantity: &bad})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.Update(ctx, "user-2", c.ID, domain.CigarPatch{Notes: &notes})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "user-1", c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "user-1", c.ID), domainerrors.ErrNotFound)

	_, err = svc.Get(ctx, "user-1", c.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.Equal(t, []sse.EventType{sse.EventCigarCreated, sse.EventCigarUpdated, sse.EventCigarDeleted}, events.types())
}

func TestInventory_ListSearch(t *testing.T) {
	svc, _ := setupInventory(t)
	ctx := context.Background()

	for _, c := range []domain.Cigar{
		{Name: "Número 2", Brand: "Montecristo", Origin: "Cuba", Strength: 3, Quantity: 1},
		{Name: "Robusto", Brand: "Padrón", Origin: "Nicarágua", Strength: 4, Quantity: 1},
	} {
		_, err := svc.Create(ctx, "user-1", c)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.List(ctx, "user-1", "numero")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Montecristo", found[0].Brand)

	found, err = svc.List(ctx, "user-1", "NICARAGUA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Padrón", found[0].Brand)
}

func TestInventory_Available(t *testing.T) {
	s := newTestStore(t)
	inv := NewInventoryService(s, nil, validation.New(), testLogger)
	tastings := NewTastingService(s, nil, validation.New(), nil, TastingOptions{}, testLogger)
	ctx := context.Background()

	inStock := createTestCigar(t, s, "user-1", "In stock", "B", 2)
	busy := createTestCigar(t, s, "user-1", "Busy", "B", 1)
	createTestCigar(t, s, "user-1", "Empty", "B", 0)

	_, err := tastings.Start(ctx, "user-1", busy.ID)
	require.NoError(t, err)

	got, err := inv.Available(ctx, "user-1", false)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = inv.Available(ctx, "user-1", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inStock.ID, got[0].ID)
}

func TestInventory_PurchaseDateRoundTrip(t *testing.T) {
	svc, _ := setupInventory(t)
	ctx := context.Background()

	bought := time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)
	c, err := svc.Create(ctx, "user-1", domain.Cigar{Name: "Churchill", Brand: "B", Strength: 5, Quantity: 1, PurchaseDate: &bought})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user-1", c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PurchaseDate)
	assert.True(t, bought.Equal(*got.PurchaseDate))
}
