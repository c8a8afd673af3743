package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/humidorapp/humidor-server/internal/api/dto"
)

func (s *Server) registerCigarRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCigars",
		Method:      http.MethodGet,
		Path:        "/api/v1/cigars",
		Summary:     "List cigars",
		Description: "Returns the caller's inventory, optionally filtered by a search term",
		Tags:        []string{"Cigars"},
		Security:    bearerSecurity,
	}, s.handleListCigars)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCigar",
		Method:        http.MethodPost,
		Path:          "/api/v1/cigars",
		Summary:       "Add cigar",
		Description:   "Adds a cigar to the caller's inventory",
		Tags:          []string{"Cigars"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleCreateCigar)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAvailableCigars",
		Method:      http.MethodGet,
		Path:        "/api/v1/cigars/available",
		Summary:     "Available cigars",
		Description: "Returns cigars with at least one unit on hand",
		Tags:        []string{"Cigars"},
		Security:    bearerSecurity,
	}, s.handleListAvailableCigars)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCigar",
		Method:      http.MethodGet,
		Path:        "/api/v1/cigars/{id}",
		Summary:     "Get cigar",
		Tags:        []string{"Cigars"},
		Security:    bearerSecurity,
	}, s.handleGetCigar)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCigar",
		Method:      http.MethodPatch,
		Path:        "/api/v1/cigars/{id}",
		Summary:     "Update cigar",
		Description: "Applies a partial update; omitted fields keep their value",
		Tags:        []string{"Cigars"},
		Security:    bearerSecurity,
	}, s.handleUpdateCigar)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCigar",
		Method:        http.MethodDelete,
		Path:          "/api/v1/cigars/{id}",
		Summary:       "Delete cigar",
		Description:   "Removes a cigar. Archived tastings keep their snapshot of it.",
		Tags:          []string{"Cigars"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerSecurity,
	}, s.handleDeleteCigar)
}

func (s *Server) handleListCigars(ctx context.Context, input *dto.ListCigarsInput) (*dto.CigarListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	cigars, err := s.services.Inventory.List(ctx, userID, input.Search)
	if err != nil {
		return nil, err
	}
	return &dto.CigarListOutput{Body: dto.NewListResponse(cigars)}, nil
}

func (s *Server) handleCreateCigar(ctx context.Context, input *dto.CreateCigarInput) (*dto.CigarOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	cigar, err := s.services.Inventory.Create(ctx, userID, input.Body.Cigar())
	if err != nil {
		return nil, err
	}
	return &dto.CigarOutput{Body: cigar}, nil
}

func (s *Server) handleListAvailableCigars(ctx context.Context, input *dto.AvailableCigarsInput) (*dto.CigarListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	cigars, err := s.services.Inventory.Available(ctx, userID, input.ExcludeActive)
	if err != nil {
		return nil, err
	}
	return &dto.CigarListOutput{Body: dto.NewListResponse(cigars)}, nil
}

func (s *Server) handleGetCigar(ctx context.Context, input *dto.IDPath) (*dto.CigarOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	cigar, err := s.services.Inventory.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &dto.CigarOutput{Body: cigar}, nil
}

func (s *Server) handleUpdateCigar(ctx context.Context, input *dto.UpdateCigarInput) (*dto.CigarOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	cigar, err := s.services.Inventory.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &dto.CigarOutput{Body: cigar}, nil
}

func (s *Server) handleDeleteCigar(ctx context.Context, input *dto.IDPath) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Inventory.Delete(ctx, userID, input.ID)
}
