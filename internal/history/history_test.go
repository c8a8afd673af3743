package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
)

func archive() []domain.ArchivedTasting {
	base := time.Date(2025, 6, 1, 21, 0, 0, 0, time.UTC)
	return []domain.ArchivedTasting{
		{ID: "t1", Seq: 1, CigarName: "Robusto", CigarBrand: "Casa Magna", Rating: 4, Duration: 45,
			EndTime: base, Flavors: []string{"Café", "Cedro"}},
		{ID: "t2", Seq: 2, CigarName: "Churchill", CigarBrand: "Romeo", Rating: 5, Duration: 90,
			EndTime: base.Add(24 * time.Hour), Notes: "Notas herbáceas no final"},
		{ID: "t3", Seq: 3, CigarName: "corona", CigarBrand: "Partagás", Rating: 4, Duration: 30,
			EndTime: base.Add(48 * time.Hour), Flavors: []string{"Couro"}},
	}
}

func ids(ts []domain.ArchivedTasting) []string {
	out := make([]string, len(ts))
	for i := range ts {
		out[i] = ts[i].ID
	}
	return out
}

func TestApply_Sort(t *testing.T) {
	tests := []struct {
		sort SortOrder
		want []string
	}{
		{SortDate, []string{"t3", "t2", "t1"}},
		{"", []string{"t3", "t2", "t1"}},
		{SortRating, []string{"t2", "t1", "t3"}},
		{SortDuration, []string{"t2", "t1", "t3"}},
		{SortName, []string{"t2", "t3", "t1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(archive(), Query{Sort: tt.sort})))
		})
	}
}

func TestApply_Search(t *testing.T) {
	tests := []struct {
		search string
		want   []string
	}{
		{"cafe", []string{"t1"}},
		{"PARTAGAS", []string{"t3"}},
		{"herbaceas", []string{"t2"}},
		{"magna", []string{"t1"}},
		{"nothing", []string{}},
		{"", []string{"t3", "t2", "t1"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(archive(), Query{Search: tt.search})))
		})
	}
}

func TestApply_RatingFilter(t *testing.T) {
	got := Apply(archive(), Query{Rating: 4, Sort: SortDuration})
	assert.Equal(t, []string{"t1", "t3"}, ids(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := archive()
	_ = Apply(in, Query{Sort: SortRating})
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(in))
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDate, o)

	o, err = ParseSortOrder("name")
	require.NoError(t, err)
	assert.Equal(t, SortName, o)

	_, err = ParseSortOrder("price")
	assert.Error(t, err)
}

func TestSearchCigars(t *testing.T) {
	cigars := []domain.Cigar{
		{ID: "c1", Name: "Robusto", Brand: "Casa", Origin: "República Dominicana"},
		{ID: "c2", Name: "Toro", Brand: "Cohiba", Origin: "Cuba"},
	}
	got := SearchCigars(cigars, "republica")
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	assert.Len(t, SearchCigars(cigars, ""), 2)
	assert.Len(t, SearchCigars(cigars, "COHIBA"), 1)
}
