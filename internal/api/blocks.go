package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/pixynode/internal/api/models"
	"github.com/smazurov/pixynode/internal/device"
)

func (s *Server) registerBlockRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-blocks",
		Method:      http.MethodGet,
		Path:        "/api/blocks",
		Summary:     "Read Blocks",
		Description: "Read the detection buffer once and return the classified blocks",
		Tags:        []string{"blocks"},
		Security:    withAuth(),
		Errors:      []int{401, 502},
	}, func(_ context.Context, _ *struct{}) (*models.BlocksResponse, error) {
		found, err := s.camera.ReadBlocks()
		if err != nil {
			return nil, deviceError("Failed to read blocks", err)
		}
		return &models.BlocksResponse{
			Body: models.BlocksData{
				Count:  len(found),
				Blocks: device.BlockInfos(found),
			},
		}, nil
	})
}
