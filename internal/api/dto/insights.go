package dto

import (
	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/recommend"
	"github.com/humidorapp/humidor-server/internal/service"
	"github.com/humidorapp/humidor-server/internal/stats"
)

// HistoryInput filters and orders the archive.
type HistoryInput struct {
	Search string `query:"search" doc:"Match cigar name, brand, notes and flavors"`
	Rating int    `query:"rating" doc:"Only sessions with this rating (1-5)"`
	Sort   string `query:"sort" enum:"date,rating,duration,name" doc:"Sort order (default date)"`
}

// HistoryOutput wraps the filtered archive.
type HistoryOutput struct {
	Body ListResponse[domain.ArchivedTasting]
}

// StatsOutput wraps the dashboard overview.
type StatsOutput struct {
	Body *stats.Overview
}

// FlavorsResponse is the flavor vocabulary.
type FlavorsResponse struct {
	Flavors []string `json:"flavors" doc:"Accepted flavor tags in display order"`
}

// FlavorsOutput wraps the flavor vocabulary.
type FlavorsOutput struct {
	Body FlavorsResponse
}

// RecommendRequest selects wanted flavors.
type RecommendRequest struct {
	Flavors []string `json:"flavors" doc:"Flavors to look for"`
}

// RecommendInput wraps the recommendation request for huma.
type RecommendInput struct {
	Body RecommendRequest
}

// RecommendOutput wraps the ranking.
type RecommendOutput struct {
	Body ListResponse[recommend.RankedCigar]
}

// IdentityOutput wraps the caller's identity.
type IdentityOutput struct {
	Body domain.Identity
}

// ImportInput carries a browser localStorage export. The body is decoded
// by the importer, which skips invalid records instead of rejecting the
// whole document.
type ImportInput struct {
	RawBody []byte `contentType:"application/json" doc:"Object with cigars, tastingSessions and currentTastingSessions arrays"`
}

// ImportOutput reports what an import wrote.
type ImportOutput struct {
	Body *service.ImportResult
}
