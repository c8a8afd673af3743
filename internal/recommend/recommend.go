// Package recommend ranks inventory cigars against a set of wanted flavors.
package recommend

import (
	"slices"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// RankedCigar is a recommendation with its score.
type RankedCigar struct {
	Cigar domain.Cigar `json:"cigar"`
	Score float64      `json:"score"`
	// Matched lists the selected flavors found in past tastings of this cigar.
	Matched []string `json:"matched_flavors"`
}

// Recommender ranks inventory for a flavor selection.
type Recommender interface {
	Recommend(selected []string, history []domain.ArchivedTasting, inventory []domain.Cigar) []RankedCigar
}

// FlavorOverlap scores each cigar in stock by how many selected flavors were
// noted in its past tastings, plus its mean rating divided by ten as a
// tie-breaker. Cigars with no overlap are left out.
type FlavorOverlap struct{}

// Recommend implements Recommender.
func (FlavorOverlap) Recommend(selected []string, history []domain.ArchivedTasting, inventory []domain.Cigar) []RankedCigar {
	type profile struct {
		flavors map[string]bool
		sum     int
		n       int
	}

	profiles := make(map[string]*profile)
	for i := range history {
		t := &history[i]
		p := profiles[t.Key()]
		if p == nil {
			p = &profile{flavors: make(map[string]bool)}
			profiles[t.Key()] = p
		}
		for _, f := range t.Flavors {
			p.flavors[f] = true
		}
		p.sum += t.Rating
		p.n++
	}

	out := []RankedCigar{}
	for i := range inventory {
		c := inventory[i]
		if !c.Available() {
			continue
		}
		p := profiles[domain.CigarKey(c.Name, c.Brand)]
		if p == nil {
			continue
		}

		var matched []string
		for _, f := range selected {
			if p.flavors[f] && !slices.Contains(matched, f) {
				matched = append(matched, f)
			}
		}
		if len(matched) == 0 {
			continue
		}

		out = append(out, RankedCigar{
			Cigar:   c,
			Score:   float64(len(matched)) + float64(p.sum)/float64(p.n)/10,
			Matched: matched,
		})
	}

	slices.SortStableFunc(out, func(a, b RankedCigar) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return out
}
