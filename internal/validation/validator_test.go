package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/validation"
)

func intPtr(v int) *int { return &v }

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	var derr *errors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, errors.CodeValidation, derr.Code)
	m, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	return m
}

func TestValidate_Cigar(t *testing.T) {
	v := validation.New()

	ok := domain.Cigar{Name: "Robusto", Brand: "Casa", Strength: 3, Price: 10, Quantity: 2}
	assert.NoError(t, v.Validate(ok))

	bad := domain.Cigar{Brand: "Casa", Strength: 6, Price: -1, Quantity: -1}
	fields := details(t, v.Validate(bad))
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be less than or equal to 5", fields["strength"])
	assert.Equal(t, "must be greater than or equal to 0", fields["price"])
	assert.Equal(t, "must be greater than or equal to 0", fields["quantity"])
}

func TestValidateReview_Minimal(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		review    domain.Review
		wantField string
	}{
		{name: "rating only", review: domain.Review{Rating: 4}},
		{name: "rating zero", review: domain.Review{Rating: 0}, wantField: "rating"},
		{name: "rating six", review: domain.Review{Rating: 6}, wantField: "rating"},
		{name: "bad burn", review: domain.Review{Rating: 3, BurnQuality: intPtr(9)}, wantField: "burn_quality"},
		{name: "unknown flavor", review: domain.Review{Rating: 3, Flavors: []string{"Café", "Bacon"}}, wantField: "flavors[1]"},
		{name: "known flavors", review: domain.Review{Rating: 3, Flavors: []string{"Café", "Cedro"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateReview(tt.review, domain.ReviewMinimal)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, details(t, err), tt.wantField)
		})
	}
}

func TestValidateReview_Full(t *testing.T) {
	v := validation.New()

	fields := details(t, v.ValidateReview(domain.Review{Rating: 4}, domain.ReviewFull))
	assert.Equal(t, "is required", fields["flavors"])
	assert.Equal(t, "is required", fields["burn_quality"])
	assert.Equal(t, "is required", fields["draw_quality"])
	assert.Equal(t, "is required", fields["ash_quality"])

	complete := domain.Review{
		Rating:      4,
		Flavors:     []string{"Couro"},
		BurnQuality: intPtr(5),
		DrawQuality: intPtr(4),
		AshQuality:  intPtr(3),
	}
	assert.NoError(t, v.ValidateReview(complete, domain.ReviewFull))
}
