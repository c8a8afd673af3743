package domain

import (
	"math"
	"time"
)

// ActiveTasting is a tasting in progress. The cigar name and brand are
// copied at start so the session stays readable if the cigar is edited or
// deleted later.
type ActiveTasting struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CigarID    string    `json:"cigar_id"`
	CigarName  string    `json:"cigar_name"`
	CigarBrand string    `json:"cigar_brand"`
	StartTime  time.Time `json:"start_time"`
}

// Elapsed returns the running time at now, never negative.
func (a *ActiveTasting) Elapsed(now time.Time) time.Duration {
	return max(now.Sub(a.StartTime), 0)
}

// Review is what the user fills in when finishing a tasting.
// Only Rating is always required; see ReviewMode.
type Review struct {
	Rating      int      `json:"rating" validate:"gte=1,lte=5"`
	BurnQuality *int     `json:"burn_quality,omitempty" validate:"omitempty,gte=1,lte=5"`
	DrawQuality *int     `json:"draw_quality,omitempty" validate:"omitempty,gte=1,lte=5"`
	AshQuality  *int     `json:"ash_quality,omitempty" validate:"omitempty,gte=1,lte=5"`
	Flavors     []string `json:"flavors,omitempty" validate:"dive,flavor"`
	Notes       string   `json:"notes,omitempty" validate:"max=2000"`
	Environment string   `json:"environment,omitempty" validate:"max=200"`
	Pairing     string   `json:"pairing,omitempty" validate:"max=200"`
}

// ReviewMode selects which review fields are mandatory.
type ReviewMode string

const (
	// ReviewMinimal requires only the rating.
	ReviewMinimal ReviewMode = "minimal"
	// ReviewFull also requires flavors and burn, draw and ash quality.
	ReviewFull ReviewMode = "full"
)

// ArchivedTasting is a finished, reviewed tasting. Records are immutable.
type ArchivedTasting struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	// Seq is the archival position assigned by the store. Larger is later.
	Seq uint64 `json:"seq"`

	CigarID    string `json:"cigar_id"`
	CigarName  string `json:"cigar_name"`
	CigarBrand string `json:"cigar_brand"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	// Duration is in whole minutes.
	Duration int `json:"duration"`

	Rating      int      `json:"rating"`
	BurnQuality *int     `json:"burn_quality,omitempty"`
	DrawQuality *int     `json:"draw_quality,omitempty"`
	AshQuality  *int     `json:"ash_quality,omitempty"`
	Flavors     []string `json:"flavors"`
	Notes       string   `json:"notes,omitempty"`
	Environment string   `json:"environment,omitempty"`
	Pairing     string   `json:"pairing,omitempty"`
}

// Complete converts the active session into its archive record.
func (a *ActiveTasting) Complete(end time.Time, r Review) *ArchivedTasting {
	flavors := make([]string, len(r.Flavors))
	copy(flavors, r.Flavors)

	return &ArchivedTasting{
		ID:          a.ID,
		UserID:      a.UserID,
		CigarID:     a.CigarID,
		CigarName:   a.CigarName,
		CigarBrand:  a.CigarBrand,
		StartTime:   a.StartTime,
		EndTime:     end,
		Duration:    DurationMinutes(a.StartTime, end),
		Rating:      r.Rating,
		BurnQuality: r.BurnQuality,
		DrawQuality: r.DrawQuality,
		AshQuality:  r.AshQuality,
		Flavors:     flavors,
		Notes:       r.Notes,
		Environment: r.Environment,
		Pairing:     r.Pairing,
	}
}

// DurationMinutes rounds end-start to the nearest minute, half up, and
// clamps clock skew to zero.
func DurationMinutes(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int(math.Round(float64(ms) / 60000))
}

// CigarKey groups archive records that refer to the same cigar. Name and
// brand are used instead of the id so records survive re-created cigars.
func CigarKey(name, brand string) string {
	return name + "\x00" + brand
}

// Key returns the CigarKey of the record.
func (t *ArchivedTasting) Key() string {
	return CigarKey(t.CigarName, t.CigarBrand)
}

// Identity is the authenticated caller.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
