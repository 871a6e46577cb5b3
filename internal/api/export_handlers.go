package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportReadingLog",
		Method:      http.MethodGet,
		Path:        "/api/v1/exports",
		Summary:     "Export reading log",
		Description: "Downloads the unified view as JSON or CSV",
		Tags:        []string{"Exports"},
	}, s.handleExport)
}

// ExportInput contains the export options.
type ExportInput struct {
	UserID string `header:"X-User-ID"`
	Type   string `query:"type" doc:"Column preset (default minimal)"`
	Format string `query:"format" doc:"Encoding (default json)"`
}

// ExportOutput is a file download. The raw body is not enveloped.
type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (s *Server) handleExport(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}

	file, err := s.services.Exports.Export(ctx, userID, input.Type, input.Format)
	if err != nil {
		return nil, err
	}

	return &ExportOutput{
		ContentType:        file.ContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", file.Filename),
		Body:               file.Data,
	}, nil
}
