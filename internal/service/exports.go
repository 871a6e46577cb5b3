package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/listenupapp/readlog/internal/export"
)

// ExportService renders the unified view as a downloadable file.
type ExportService struct {
	finished *FinishedService
	logger   *slog.Logger
	now      func() time.Time
}

// NewExportService creates a new export service.
func NewExportService(finished *FinishedService, logger *slog.Logger) *ExportService {
	return &ExportService{finished: finished, logger: logger, now: time.Now}
}

// Export renders every entry of the user's view with the given preset and
// encoding. Empty values pick the defaults.
func (s *ExportService) Export(ctx context.Context, userID, preset, encoding string) (*export.File, error) {
	p, err := export.ParsePreset(preset)
	if err != nil {
		return nil, err
	}
	enc, err := export.ParseEncoding(encoding)
	if err != nil {
		return nil, err
	}

	entries, err := s.finished.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	file, err := export.Render(entries, p, enc, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading log exported",
		"user_id", userID,
		"type", p,
		"format", enc,
		"count", len(entries),
	)
	return file, nil
}
