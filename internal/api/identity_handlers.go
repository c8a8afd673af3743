package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/humidorapp/humidor-server/internal/api/dto"
)

func (s *Server) registerIdentityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "Current identity",
		Description: "Returns the identity carried by the bearer token",
		Tags:        []string{"Identity"},
		Security:    bearerSecurity,
	}, s.handleGetCurrentUser)
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*dto.IdentityOutput, error) {
	id, err := GetIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.IdentityOutput{Body: id}, nil
}
