package stats

import (
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// RecentWindow is the span counted by Overview.SessionsLast30Days.
const RecentWindow = 30 * 24 * time.Hour

// Number of entries in each Overview top list.
const topN = 5

// Overview is the dashboard summary.
type Overview struct {
	TotalCigars        int                      `json:"total_cigars"`
	TotalUnits         int                      `json:"total_units"`
	InventoryValue     float64                  `json:"inventory_value"`
	AverageUnitValue   float64                  `json:"average_unit_value"`
	ActiveSessions     int                      `json:"active_sessions"`
	TotalSessions      int                      `json:"total_sessions"`
	SessionsLast30Days int                      `json:"sessions_last_30_days"`
	AverageRating      float64                  `json:"average_rating"`
	TotalDuration      int                      `json:"total_duration"`
	AverageDuration    int                      `json:"average_duration"`
	TopFlavors         []FlavorCount            `json:"top_flavors"`
	TopCigars          []CigarRating            `json:"top_cigars"`
	RecentSessions     []domain.ArchivedTasting `json:"recent_sessions"`
}

// Summarize computes the Overview as of now.
func Summarize(
	cigars []domain.Cigar,
	archive []domain.ArchivedTasting,
	active []domain.ActiveTasting,
	now time.Time,
) Overview {
	return Overview{
		TotalCigars:        len(cigars),
		TotalUnits:         TotalInventoryUnits(cigars),
		InventoryValue:     roundTo(TotalInventoryValue(cigars), 2),
		AverageUnitValue:   AverageUnitValue(cigars),
		ActiveSessions:     len(active),
		TotalSessions:      len(archive),
		SessionsLast30Days: SessionsSince(archive, now.Add(-RecentWindow)),
		AverageRating:      AverageRating(archive),
		TotalDuration:      TotalDuration(archive),
		AverageDuration:    AverageDuration(archive),
		TopFlavors:         head(FlavorFrequency(archive), topN),
		TopCigars:          TopRatedCigars(archive, topN),
		RecentSessions:     RecentSessions(archive, topN),
	}
}
