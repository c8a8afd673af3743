package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/humidorapp/humidor-server/internal/api/dto"
)

func (s *Server) registerTastingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listActiveTastings",
		Method:      http.MethodGet,
		Path:        "/api/v1/tastings/active",
		Summary:     "Active tastings",
		Description: "Returns in-progress tastings in start order with their elapsed time",
		Tags:        []string{"Tastings"},
		Security:    bearerSecurity,
	}, s.handleListActiveTastings)

	huma.Register(s.api, huma.Operation{
		OperationID:   "startTasting",
		Method:        http.MethodPost,
		Path:          "/api/v1/tastings",
		Summary:       "Start tasting",
		Description:   "Starts a tasting of an available cigar",
		Tags:          []string{"Tastings"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleStartTasting)

	huma.Register(s.api, huma.Operation{
		OperationID: "finishTasting",
		Method:      http.MethodPost,
		Path:        "/api/v1/tastings/{id}/finish",
		Summary:     "Finish tasting",
		Description: "Reviews an in-progress tasting and moves it to the archive",
		Tags:        []string{"Tastings"},
		Security:    bearerSecurity,
	}, s.handleFinishTasting)

	huma.Register(s.api, huma.Operation{
		OperationID:   "cancelTasting",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tastings/{id}",
		Summary:       "Cancel tasting",
		Description:   "Discards an in-progress tasting without archiving it",
		Tags:          []string{"Tastings"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerSecurity,
	}, s.handleCancelTasting)
}

func (s *Server) handleListActiveTastings(ctx context.Context, _ *struct{}) (*dto.ActiveTastingsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.services.Tastings.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.services.Tastings.Now()
	out := make([]dto.ActiveTastingResponse, 0, len(active))
	for _, a := range active {
		out = append(out, dto.NewActiveTastingResponse(a, now))
	}

	return &dto.ActiveTastingsOutput{Body: dto.ActiveTastingsResponse{
		Tastings:   out,
		ReviewMode: s.services.Tastings.ReviewMode(),
	}}, nil
}

func (s *Server) handleStartTasting(ctx context.Context, input *dto.StartTastingInput) (*dto.ActiveTastingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	started, err := s.services.Tastings.Start(ctx, userID, input.Body.CigarID)
	if err != nil {
		return nil, err
	}
	return &dto.ActiveTastingOutput{
		Body: dto.NewActiveTastingResponse(*started, s.services.Tastings.Now()),
	}, nil
}

func (s *Server) handleFinishTasting(ctx context.Context, input *dto.FinishTastingInput) (*dto.ArchivedTastingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	archived, err := s.services.Tastings.Finish(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &dto.ArchivedTastingOutput{Body: archived}, nil
}

func (s *Server) handleCancelTasting(ctx context.Context, input *dto.IDPath) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Tastings.Cancel(ctx, userID, input.ID)
}
