package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/humidorapp/humidor-server/internal/api/dto"
	"github.com/humidorapp/humidor-server/internal/service"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "importBrowserExport",
		Method:      http.MethodPost,
		Path:        "/api/v1/import",
		Summary:     "Import browser data",
		Description: "Loads a localStorage export from the single-page app. Invalid records are skipped and listed.",
		Tags:        []string{"Import"},
		Security:    bearerSecurity,
	}, s.handleImport)
}

func (s *Server) handleImport(ctx context.Context, input *dto.ImportInput) (*dto.ImportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	exp, err := service.DecodeBrowserExport(bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}

	res, err := s.services.Import.Import(ctx, userID, exp)
	if err != nil {
		return nil, err
	}
	return &dto.ImportOutput{Body: res}, nil
}
