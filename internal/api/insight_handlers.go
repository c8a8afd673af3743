package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/humidorapp/humidor-server/internal/api/dto"
	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
	"github.com/humidorapp/humidor-server/internal/history"
)

func (s *Server) registerInsightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "Tasting history",
		Description: "Returns archived tastings filtered by search and rating, in the requested order",
		Tags:        []string{"History"},
		Security:    bearerSecurity,
	}, s.handleListHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Dashboard statistics",
		Tags:        []string{"History"},
		Security:    bearerSecurity,
	}, s.handleGetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFlavors",
		Method:      http.MethodGet,
		Path:        "/api/v1/flavors",
		Summary:     "Flavor vocabulary",
		Tags:        []string{"Recommendations"},
	}, s.handleListFlavors)

	huma.Register(s.api, huma.Operation{
		OperationID: "recommendCigars",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations",
		Summary:     "Recommend cigars",
		Description: "Ranks available cigars by how often past tastings of them showed the wanted flavors",
		Tags:        []string{"Recommendations"},
		Security:    bearerSecurity,
	}, s.handleRecommend)
}

func (s *Server) handleListHistory(ctx context.Context, input *dto.HistoryInput) (*dto.HistoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	order, err := history.ParseSortOrder(input.Sort)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	archive, err := s.services.Stats.History(ctx, userID, history.Query{
		Search: input.Search,
		Rating: input.Rating,
		Sort:   order,
	})
	if err != nil {
		return nil, err
	}
	return &dto.HistoryOutput{Body: dto.NewListResponse(archive)}, nil
}

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*dto.StatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Stats.Overview(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.StatsOutput{Body: overview}, nil
}

func (s *Server) handleListFlavors(_ context.Context, _ *struct{}) (*dto.FlavorsOutput, error) {
	return &dto.FlavorsOutput{Body: dto.FlavorsResponse{Flavors: slices.Clone(domain.Flavors)}}, nil
}

func (s *Server) handleRecommend(ctx context.Context, input *dto.RecommendInput) (*dto.RecommendOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ranked, err := s.services.Stats.Recommend(ctx, userID, input.Body.Flavors)
	if err != nil {
		return nil, err
	}
	return &dto.RecommendOutput{Body: dto.NewListResponse(ranked)}, nil
}
