package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/history"
)

// seedTastings finishes one tasting per review against fresh cigars.
func seedTastings(t *testing.T, f *tastingFixture, reviews map[string]domain.Review, order []string) {
	t.Helper()
	ctx := context.Background()
	for _, name := range order {
		c := createTestCigar(t, f.store, "user-1", name, "Brand", 1)
		a, err := f.svc.Start(ctx, "user-1", c.ID)
		require.NoError(t, err)
		f.clock.Advance(45 * time.Minute)
		_, err = f.svc.Finish(ctx, "user-1", a.ID, reviews[name])
		require.NoError(t, err)
	}
}

func TestStats_Overview(t *testing.T) {
	s := newTestStore(t)
	f := setupTasting(t, s, TastingOptions{})
	seedTastings(t, f, map[string]domain.Review{
		"Robusto": {Rating: 4, Flavors: []string{"Café", "Cedro"}},
		"Corona":  {Rating: 5, Flavors: []string{"Cedro"}},
	}, []string{"Robusto", "Corona"})

	svc := NewStatsService(s, nil, testLogger)
	svc.now = f.clock.Now

	o, err := svc.Overview(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, o.TotalCigars)
	assert.Equal(t, 2, o.TotalUnits)
	assert.Equal(t, 50.0, o.InventoryValue)
	assert.Equal(t, 2, o.TotalSessions)
	assert.Equal(t, 2, o.SessionsLast30Days)
	assert.Equal(t, 4.5, o.AverageRating)
	assert.Equal(t, 90, o.TotalDuration)
	assert.Equal(t, 45, o.AverageDuration)
	require.NotEmpty(t, o.TopFlavors)
	assert.Equal(t, "Cedro", o.TopFlavors[0].Flavor)
	assert.Equal(t, 2, o.TopFlavors[0].Count)
	require.Len(t, o.RecentSessions, 2)
	assert.Equal(t, "Corona", o.RecentSessions[0].CigarName)
}

func TestStats_OverviewEmpty(t *testing.T) {
	svc := NewStatsService(newTestStore(t), nil, testLogger)

	o, err := svc.Overview(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, o.TotalSessions)
	assert.Zero(t, o.AverageRating)
	assert.Empty(t, o.TopCigars)
}

func TestStats_History(t *testing.T) {
	s := newTestStore(t)
	f := setupTasting(t, s, TastingOptions{})
	seedTastings(t, f, map[string]domain.Review{
		"Robusto": {Rating: 3, Notes: "Notas de café"},
		"Corona":  {Rating: 5},
		"Toro":    {Rating: 3},
	}, []string{"Robusto", "Corona", "Toro"})

	svc := NewStatsService(s, nil, testLogger)
	ctx := context.Background()

	got, err := svc.History(ctx, "user-1", history.Query{Sort: history.SortDate})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Toro", got[0].CigarName)

	got, err = svc.History(ctx, "user-1", history.Query{Rating: 3, Sort: history.SortName})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Robusto", got[0].CigarName)

	got, err = svc.History(ctx, "user-1", history.Query{Search: "CAFE"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = svc.History(ctx, "user-1", history.Query{Rating: 9})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestStats_StoreFailure(t *testing.T) {
	fs := &failingStore{Store: newTestStore(t), failReads: true}
	svc := NewStatsService(fs, nil, testLogger)

	_, err := svc.Overview(context.Background(), "user-1")
	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
}

func TestStats_Recommend(t *testing.T) {
	s := newTestStore(t)
	f := setupTasting(t, s, TastingOptions{})
	seedTastings(t, f, map[string]domain.Review{
		"Robusto": {Rating: 4, Flavors: []string{"Chocolate", "Couro"}},
		"Corona":  {Rating: 5, Flavors: []string{"Floral"}},
	}, []string{"Robusto", "Corona"})

	svc := NewStatsService(s, nil, testLogger)
	ctx := context.Background()

	got, err := svc.Recommend(ctx, "user-1", []string{"Chocolate", "Couro"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Robusto", got[0].Cigar.Name)
	assert.Equal(t, []string{"Chocolate", "Couro"}, got[0].Matched)

	_, err = svc.Recommend(ctx, "user-1", []string{"Bacon"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
