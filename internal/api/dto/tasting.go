package dto

import (
	"time"

	"github.com/humidorapp/humidor-server/internal/domain"
)

// StartTastingRequest starts a tasting.
type StartTastingRequest struct {
	CigarID string `json:"cigar_id" doc:"Cigar to smoke"`
}

// StartTastingInput wraps the start request for huma.
type StartTastingInput struct {
	Body StartTastingRequest
}

// FinishTastingInput carries the review for a tasting.
type FinishTastingInput struct {
	IDPath
	Body domain.Review
}

// ActiveTastingResponse is an in-progress tasting with its running time.
type ActiveTastingResponse struct {
	domain.ActiveTasting
	ElapsedSeconds int64 `json:"elapsed_seconds" doc:"Seconds since start"`
}

// NewActiveTastingResponse computes the elapsed time at now.
func NewActiveTastingResponse(a domain.ActiveTasting, now time.Time) ActiveTastingResponse {
	return ActiveTastingResponse{
		ActiveTasting:  a,
		ElapsedSeconds: int64(a.Elapsed(now) / time.Second),
	}
}

// ActiveTastingsResponse lists in-progress tastings.
type ActiveTastingsResponse struct {
	Tastings   []ActiveTastingResponse `json:"tastings" doc:"In-progress tastings in start order"`
	ReviewMode domain.ReviewMode       `json:"review_mode" doc:"Which review fields finishing requires"`
}

// ActiveTastingsOutput wraps the active list.
type ActiveTastingsOutput struct {
	Body ActiveTastingsResponse
}

// ActiveTastingOutput wraps a started tasting.
type ActiveTastingOutput struct {
	Body ActiveTastingResponse
}

// ArchivedTastingOutput wraps a finished tasting.
type ArchivedTastingOutput struct {
	Body *domain.ArchivedTasting
}
