// Package history filters and orders the tasting archive and the inventory
// for browsing.
package history

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/normalize"
)

// SortOrder is the ordering applied to history results.
type SortOrder string

// Sort orders.
const (
	SortDate     SortOrder = "date"
	SortRating   SortOrder = "rating"
	SortDuration SortOrder = "duration"
	SortName     SortOrder = "name"
)

// ParseSortOrder maps "" to SortDate and rejects unknown values.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return SortDate, nil
	case SortDate, SortRating, SortDuration, SortName:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Query selects and orders archived sessions.
type Query struct {
	// Search matches cigar name, brand, notes and flavors, ignoring case and accents.
	Search string
	// Rating keeps only sessions with exactly this rating. Zero disables the filter.
	Rating int
	Sort   SortOrder
}

// Apply returns the sessions matching q in q.Sort order. The input slice is
// not modified. Sorting is stable so equal keys keep archival order.
func Apply(archive []domain.ArchivedTasting, q Query) []domain.ArchivedTasting {
	m := normalize.NewMatcher(q.Search)

	out := make([]domain.ArchivedTasting, 0, len(archive))
	for i := range archive {
		t := &archive[i]
		if q.Rating != 0 && t.Rating != q.Rating {
			continue
		}
		if !m.Empty() && !m.Match(append([]string{t.CigarName, t.CigarBrand, t.Notes}, t.Flavors...)...) {
			continue
		}
		out = append(out, *t)
	}

	slices.SortStableFunc(out, compareFor(q.Sort))
	return out
}

func compareFor(order SortOrder) func(a, b domain.ArchivedTasting) int {
	switch order {
	case SortRating:
		return func(a, b domain.ArchivedTasting) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortDuration:
		return func(a, b domain.ArchivedTasting) int { return cmp.Compare(b.Duration, a.Duration) }
	case SortName:
		return func(a, b domain.ArchivedTasting) int {
			return cmp.Compare(normalize.Fold(a.CigarName), normalize.Fold(b.CigarName))
		}
	default:
		return func(a, b domain.ArchivedTasting) int { return b.EndTime.Compare(a.EndTime) }
	}
}

// SearchCigars returns the cigars whose name, brand or origin contains query.
func SearchCigars(cigars []domain.Cigar, query string) []domain.Cigar {
	m := normalize.NewMatcher(query)
	out := make([]domain.Cigar, 0, len(cigars))
	for i := range cigars {
		if m.Match(cigars[i].Name, cigars[i].Brand, cigars[i].Origin) {
			out = append(out, cigars[i])
		}
	}
	return out
}
