package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
)

func TestFlavorOverlap(t *testing.T) {
	history := []domain.ArchivedTasting{
		{CigarName: "Robusto", CigarBrand: "Casa", Rating: 3, Flavors: []string{"Café", "Cedro"}},
		{CigarName: "Toro", CigarBrand: "Casa", Rating: 5, Flavors: []string{"Café"}},
		{CigarName: "Corona", CigarBrand: "Casa", Rating: 5, Flavors: []string{"Mel"}},
		{CigarName: "Lancero", CigarBrand: "Casa", Rating: 5, Flavors: []string{"Café", "Cedro"}},
	}
	inventory := []domain.Cigar{
		{ID: "c1", Name: "Robusto", Brand: "Casa", Quantity: 1},
		{ID: "c2", Name: "Toro", Brand: "Casa", Quantity: 2},
		{ID: "c3", Name: "Corona", Brand: "Casa", Quantity: 2},
		{ID: "c4", Name: "Lancero", Brand: "Casa", Quantity: 0},
		{ID: "c5", Name: "Unknown", Brand: "Casa", Quantity: 5},
	}

	var r Recommender = FlavorOverlap{}
	got := r.Recommend([]string{"Café", "Cedro", "Café"}, history, inventory)

	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].Cigar.ID)
	assert.Equal(t, []string{"Café", "Cedro"}, got[0].Matched)
	assert.InDelta(t, 2.3, got[0].Score, 0.0001)
	assert.Equal(t, "c2", got[1].Cigar.ID)
	assert.InDelta(t, 1.5, got[1].Score, 0.0001)
}

func TestFlavorOverlap_Empty(t *testing.T) {
	got := FlavorOverlap{}.Recommend(nil, nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
