package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
)

var t0 = time.Date(2025, 5, 1, 19, 0, 0, 0, time.UTC)

func session(seq uint64, name, brand string, rating, duration int, flavors ...string) domain.ArchivedTasting {
	return domain.ArchivedTasting{
		ID:         "tasting-" + name,
		Seq:        seq,
		CigarID:    "cigar-" + name,
		CigarName:  name,
		CigarBrand: brand,
		StartTime:  t0,
		EndTime:    t0.Add(time.Duration(duration) * time.Minute),
		Duration:   duration,
		Rating:     rating,
		Flavors:    flavors,
	}
}

func TestEmptyInput(t *testing.T) {
	assert.Zero(t, AverageRating(nil))
	assert.Zero(t, TotalDuration(nil))
	assert.Zero(t, AverageDuration(nil))
	assert.Empty(t, FlavorFrequency(nil))
	assert.Empty(t, TopRatedCigars(nil, 5))
	assert.Empty(t, RecentSessions(nil, 5))
	assert.Zero(t, TotalInventoryValue(nil))
	assert.Zero(t, TotalInventoryUnits(nil))
	assert.Empty(t, AvailableCigars(nil, nil, true))
}

func TestAverageRating(t *testing.T) {
	archive := []domain.ArchivedTasting{
		session(1, "A", "x", 5, 10),
		session(2, "B", "x", 3, 10),
	}
	assert.InDelta(t, 4.0, AverageRating(archive), 0.0001)

	archive = append(archive, session(3, "C", "x", 4, 10))
	archive = append(archive, session(4, "D", "x", 4, 10))
	archive = append(archive, session(5, "E", "x", 5, 10))
	archive = append(archive, session(6, "F", "x", 4, 10))
	// 25 / 6 = 4.1666...
	assert.InDelta(t, 4.2, AverageRating(archive), 0.0001)
}

func TestAverageRating_Bounds(t *testing.T) {
	for r1 := 1; r1 <= 5; r1++ {
		for r2 := 1; r2 <= 5; r2++ {
			avg := AverageRating([]domain.ArchivedTasting{
				session(1, "A", "x", r1, 0),
				session(2, "B", "x", r2, 0),
			})
			assert.GreaterOrEqual(t, avg, 1.0)
			assert.LessOrEqual(t, avg, 5.0)
		}
	}
}

func TestDurations(t *testing.T) {
	archive := []domain.ArchivedTasting{
		session(1, "A", "x", 4, 30),
		session(2, "B", "x", 4, 45),
		session(3, "C", "x", 4, 50),
	}
	assert.Equal(t, 125, TotalDuration(archive))
	// 41.67 rounds to 42
	assert.Equal(t, 42, AverageDuration(archive))
}

func TestFlavorFrequency(t *testing.T) {
	archive := []domain.ArchivedTasting{
		session(1, "A", "x", 4, 30, "Cedro", "Café", "Cedro"),
		session(2, "B", "x", 4, 30, "Couro", "Café"),
		session(3, "C", "x", 4, 30, "Mel", "Couro"),
	}

	got := FlavorFrequency(archive)
	assert.Equal(t, []FlavorCount{
		{Flavor: "Café", Count: 2},
		{Flavor: "Couro", Count: 2},
		{Flavor: "Cedro", Count: 1},
		{Flavor: "Mel", Count: 1},
	}, got)

	// Unchanged input gives an identical ordered result.
	assert.Equal(t, got, FlavorFrequency(archive))
}

func TestTopRatedCigars(t *testing.T) {
	archive := []domain.ArchivedTasting{
		session(1, "Robusto", "Casa", 3, 30),
		session(2, "Toro", "Casa", 5, 30),
		session(3, "Robusto", "Casa", 5, 30),
		session(4, "Robusto", "Outra", 4, 30),
		session(5, "Corona", "Casa", 4, 30),
	}

	got := TopRatedCigars(archive, 10)
	require.Len(t, got, 4)

	assert.Equal(t, "Toro", got[0].Name)
	assert.InDelta(t, 5.0, got[0].AverageRating, 0.0001)

	// Robusto/Casa (4.0, first seen at 1), Robusto/Outra (4.0), Corona (4.0).
	assert.Equal(t, "Robusto", got[1].Name)
	assert.Equal(t, "Casa", got[1].Brand)
	assert.Equal(t, 2, got[1].Sessions)
	assert.Equal(t, "Outra", got[2].Brand)
	assert.Equal(t, "Corona", got[3].Name)

	assert.Len(t, TopRatedCigars(archive, 1), 1)
	assert.Empty(t, TopRatedCigars(archive, 0))
}

func TestTopRatedCigars_TwoCigars(t *testing.T) {
	archive := []domain.ArchivedTasting{
		session(1, "Mild", "x", 3, 30),
		session(2, "Great", "x", 5, 30),
	}
	got := TopRatedCigars(archive, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "Great", got[0].Name)
}

func TestRecentSessions(t *testing.T) {
	archive := []domain.ArchivedTasting{
		session(1, "A", "x", 4, 30),
		session(2, "B", "x", 4, 30),
		session(3, "C", "x", 4, 30),
	}

	got := RecentSessions(archive, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].CigarName)
	assert.Equal(t, "B", got[1].CigarName)

	assert.Len(t, RecentSessions(archive, 10), 3)
	assert.Empty(t, RecentSessions(archive, 0))

	// Input order is untouched.
	assert.Equal(t, "A", archive[0].CigarName)
}

func TestInventory(t *testing.T) {
	cigars := []domain.Cigar{
		{ID: "c1", Price: 10, Quantity: 3},
		{ID: "c2", Price: 25.5, Quantity: 2},
		{ID: "c3", Price: 40, Quantity: 0},
	}
	assert.InDelta(t, 81.0, TotalInventoryValue(cigars), 0.0001)
	assert.Equal(t, 5, TotalInventoryUnits(cigars))

	active := []domain.ActiveTasting{{CigarID: "c1"}}

	got := AvailableCigars(cigars, active, false)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)

	got = AvailableCigars(cigars, active, true)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)
}

func TestAverageUnitValue(t *testing.T) {
	assert.Zero(t, AverageUnitValue(nil))
	// Cigars on record but none in stock: no division by zero.
	assert.Zero(t, AverageUnitValue([]domain.Cigar{{Price: 12, Quantity: 0}, {Price: 30, Quantity: 0}}))
	assert.InDelta(t, 17.5, AverageUnitValue([]domain.Cigar{{Price: 10, Quantity: 3}, {Price: 40, Quantity: 1}}), 0.0001)
	assert.InDelta(t, 3.33, AverageUnitValue([]domain.Cigar{{Price: 10, Quantity: 1}, {Price: 0, Quantity: 2}}), 0.0001)
}

func TestSummarize(t *testing.T) {
	now := t0.Add(40 * 24 * time.Hour)
	old := session(1, "Old", "x", 2, 20, "Terroso")
	recent := session(2, "New", "x", 5, 40, "Café")
	recent.EndTime = now.Add(-24 * time.Hour)

	ov := Summarize(
		[]domain.Cigar{{Price: 10, Quantity: 2}, {Price: 1.005, Quantity: 1}},
		[]domain.ArchivedTasting{old, recent},
		[]domain.ActiveTasting{{}},
		now,
	)

	assert.Equal(t, 2, ov.TotalCigars)
	assert.Equal(t, 3, ov.TotalUnits)
	assert.InDelta(t, 7.0, ov.AverageUnitValue, 0.0001)
	assert.Equal(t, 1, ov.ActiveSessions)
	assert.Equal(t, 2, ov.TotalSessions)
	assert.Equal(t, 1, ov.SessionsLast30Days)
	assert.InDelta(t, 3.5, ov.AverageRating, 0.0001)
	assert.Equal(t, 60, ov.TotalDuration)
	assert.Equal(t, 30, ov.AverageDuration)
	assert.Len(t, ov.TopFlavors, 2)
	assert.Equal(t, "New", ov.TopCigars[0].Name)
	assert.Equal(t, "New", ov.RecentSessions[0].CigarName)

	empty := Summarize([]domain.Cigar{{Price: 15, Quantity: 0}}, nil, nil, now)
	assert.Zero(t, empty.AverageUnitValue)
	assert.Zero(t, empty.TotalUnits)
}
