// Package stats derives summary metrics from the tasting archive and the
// inventory. Every function is pure and defined on empty input.
//
// Archive slices are expected in archival order (ascending Seq), which is
// what the store returns.
package stats

import (
	"math"
	"slices"
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// FlavorCount is the number of sessions that listed a flavor.
type FlavorCount struct {
	Flavor string `json:"flavor"`
	Count  int    `json:"count"`
}

// CigarRating is the mean rating of one cigar across the archive.
type CigarRating struct {
	CigarID       string  `json:"cigar_id"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	AverageRating float64 `json:"average_rating"`
	Sessions      int     `json:"sessions"`
}

// AverageRating is the mean rating rounded to one decimal, or 0.
func AverageRating(archive []domain.ArchivedTasting) float64 {
	if len(archive) == 0 {
		return 0
	}
	sum := 0
	for i := range archive {
		sum += archive[i].Rating
	}
	return roundTo(float64(sum)/float64(len(archive)), 1)
}

// TotalDuration is the sum of durations in minutes.
func TotalDuration(archive []domain.ArchivedTasting) int {
	total := 0
	for i := range archive {
		total += archive[i].Duration
	}
	return total
}

// AverageDuration is the mean duration rounded to the nearest minute, or 0.
func AverageDuration(archive []domain.ArchivedTasting) int {
	if len(archive) == 0 {
		return 0
	}
	return int(math.Round(float64(TotalDuration(archive)) / float64(len(archive))))
}

// FlavorFrequency counts, per flavor, the sessions that list it. A session
// counts once per flavor even if it repeats a tag. The result is ordered by
// count descending; equal counts keep first-encountered order.
func FlavorFrequency(archive []domain.ArchivedTasting) []FlavorCount {
	counts := []FlavorCount{}
	index := make(map[string]int)

	for i := range archive {
		seen := make(map[string]bool, len(archive[i].Flavors))
		for _, f := range archive[i].Flavors {
			if seen[f] {
				continue
			}
			seen[f] = true

			pos, ok := index[f]
			if !ok {
				pos = len(counts)
				index[f] = pos
				counts = append(counts, FlavorCount{Flavor: f})
			}
			counts[pos].Count++
		}
	}

	slices.SortStableFunc(counts, func(a, b FlavorCount) int {
		return b.Count - a.Count
	})
	return counts
}

// TopRatedCigars groups sessions by cigar name and brand and returns the n
// groups with the highest mean rating. Ties keep first-appearance order.
func TopRatedCigars(archive []domain.ArchivedTasting, n int) []CigarRating {
	type group struct {
		CigarRating
		sum int
	}

	groups := []*group{}
	index := make(map[string]*group)
	for i := range archive {
		t := &archive[i]
		g, ok := index[t.Key()]
		if !ok {
			g = &group{CigarRating: CigarRating{CigarID: t.CigarID, Name: t.CigarName, Brand: t.CigarBrand}}
			index[t.Key()] = g
			groups = append(groups, g)
		}
		g.sum += t.Rating
		g.Sessions++
	}

	out := make([]CigarRating, 0, len(groups))
	for _, g := range groups {
		g.AverageRating = float64(g.sum) / float64(g.Sessions)
		out = append(out, g.CigarRating)
	}

	slices.SortStableFunc(out, func(a, b CigarRating) int {
		switch {
		case a.AverageRating > b.AverageRating:
			return -1
		case a.AverageRating < b.AverageRating:
			return 1
		default:
			return 0
		}
	})

	for i := range out {
		out[i].AverageRating = roundTo(out[i].AverageRating, 1)
	}
	return head(out, n)
}

// RecentSessions returns the last n archived sessions, most recent first.
func RecentSessions(archive []domain.ArchivedTasting, n int) []domain.ArchivedTasting {
	if n <= 0 {
		return []domain.ArchivedTasting{}
	}
	start := max(len(archive)-n, 0)
	out := slices.Clone(archive[start:])
	slices.Reverse(out)
	if out == nil {
		out = []domain.ArchivedTasting{}
	}
	return out
}

// SessionsSince counts sessions that ended at or after t.
func SessionsSince(archive []domain.ArchivedTasting, t time.Time) int {
	n := 0
	for i := range archive {
		if !archive[i].EndTime.Before(t) {
			n++
		}
	}
	return n
}

// TotalInventoryValue is the sum of price times quantity.
func TotalInventoryValue(cigars []domain.Cigar) float64 {
	total := 0.0
	for i := range cigars {
		total += cigars[i].Value()
	}
	return total
}

// TotalInventoryUnits is the sum of quantities.
func TotalInventoryUnits(cigars []domain.Cigar) int {
	total := 0
	for i := range cigars {
		total += cigars[i].Quantity
	}
	return total
}

// AverageUnitValue is the inventory value per unit held, to two decimals.
// It is 0 when no units are held.
func AverageUnitValue(cigars []domain.Cigar) float64 {
	units := TotalInventoryUnits(cigars)
	if units == 0 {
		return 0
	}
	return roundTo(TotalInventoryValue(cigars)/float64(units), 2)
}

// AvailableCigars returns cigars with stock on hand. With excludeActive set,
// cigars that have a tasting in progress are left out too.
func AvailableCigars(cigars []domain.Cigar, active []domain.ActiveTasting, excludeActive bool) []domain.Cigar {
	busy := make(map[string]bool, len(active))
	if excludeActive {
		for i := range active {
			busy[active[i].CigarID] = true
		}
	}

	out := []domain.Cigar{}
	for i := range cigars {
		if cigars[i].Available() && !busy[cigars[i].ID] {
			out = append(out, cigars[i])
		}
	}
	return out
}

func head[T any](s []T, n int) []T {
	if n <= 0 {
		return s[:0]
	}
	if n < len(s) {
		return s[:n]
	}
	return s
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
