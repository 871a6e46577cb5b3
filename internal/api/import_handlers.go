package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/resolve"
	"github.com/listenupapp/readlog/internal/service"
)

// maxImportBytes bounds an upload. Spreadsheets arrive base64-encoded.
const maxImportBytes = 20 << 20

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "parseImport",
		Method:       http.MethodPost,
		Path:         "/api/v1/imports/parse",
		Summary:      "Preview an import",
		Description:  "Normalizes an upload and classifies every row. Nothing is written.",
		Tags:         []string{"Imports"},
		MaxBodyBytes: maxImportBytes,
	}, s.handleParseImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "commitImport",
		Method:      http.MethodPost,
		Path:        "/api/v1/imports/commit",
		Summary:     "Commit an import",
		Description: "Writes the approved rows and library updates. Each row commits on its own.",
		Tags:        []string{"Imports"},
	}, s.handleCommitImport)
}

// === DTOs ===

// ParseImportRequest is the request body for previewing an import.
type ParseImportRequest struct {
	Data   string `json:"data" validate:"required" doc:"CSV or JSON text, or base64 for spreadsheets"`
	Format string `json:"format" validate:"required" doc:"json, csv, spreadsheet, xlsx or xls"`
}

// ParseImportInput wraps the parse request for Huma.
type ParseImportInput struct {
	UserID string `header:"X-User-ID"`
	Body   ParseImportRequest
}

// PreviewOutput wraps an import preview.
type PreviewOutput struct {
	Body resolve.Preview
}

// ImportRow is one approved row, usually echoed back from a preview.
type ImportRow struct {
	Title          string   `json:"title" validate:"required"`
	Author         string   `json:"author,omitempty"`
	ISBN           string   `json:"isbn,omitempty" validate:"isbndigits"`
	PageCount      int      `json:"pageCount,omitempty" validate:"min=0"`
	Genre          string   `json:"genre,omitempty"`
	Synopsis       string   `json:"synopsis,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	SeriesName     string   `json:"seriesName,omitempty"`
	SeriesPosition string   `json:"seriesPosition,omitempty"`
	DateFinished   string   `json:"dateFinished,omitempty" validate:"isodate"`
	Owned          bool     `json:"owned,omitempty"`
	OwnedCopies    int      `json:"ownedCopies,omitempty" validate:"min=0"`
	Rating         int      `json:"rating,omitempty" validate:"min=0,max=5"`
}

// LibraryUpdateRequest marks an existing library book read.
type LibraryUpdateRequest struct {
	LibraryBookID   int64  `json:"libraryBookId" validate:"required,gt=0"`
	NewDateFinished string `json:"newDateFinished,omitempty" validate:"isodate"`
}

// CommitImportRequest is the request body for committing an import.
type CommitImportRequest struct {
	BooksToImport  []ImportRow            `json:"booksToImport,omitempty" validate:"dive"`
	LibraryUpdates []LibraryUpdateRequest `json:"libraryUpdates,omitempty" validate:"dive"`
}

// CommitImportInput wraps the commit request for Huma.
type CommitImportInput struct {
	UserID string `header:"X-User-ID"`
	Body   CommitImportRequest
}

// CommitOutput wraps a commit result.
type CommitOutput struct {
	Body service.CommitResult
}

// === Handlers ===

func (s *Server) handleParseImport(ctx context.Context, input *ParseImportInput) (*PreviewOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	preview, err := s.services.Imports.Parse(ctx, userID, input.Body.Data, input.Body.Format)
	if err != nil {
		return nil, err
	}

	return &PreviewOutput{Body: *preview}, nil
}

func (s *Server) handleCommitImport(ctx context.Context, input *CommitImportInput) (*CommitOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}

	body := input.Body
	for i := range body.BooksToImport {
		body.BooksToImport[i].ISBN = dedup.NormalizeISBN(body.BooksToImport[i].ISBN)
	}
	if err := s.validator.Validate(&body); err != nil {
		return nil, err
	}

	req := service.CommitRequest{
		BooksToImport:  make([]ingest.Row, 0, len(body.BooksToImport)),
		LibraryUpdates: make([]service.LibraryUpdate, 0, len(body.LibraryUpdates)),
	}
	for _, r := range body.BooksToImport {
		req.BooksToImport = append(req.BooksToImport, ingest.Row{
			Title:          r.Title,
			Author:         r.Author,
			ISBN:           r.ISBN,
			PageCount:      r.PageCount,
			Genre:          r.Genre,
			Synopsis:       r.Synopsis,
			Tags:           r.Tags,
			SeriesName:     r.SeriesName,
			SeriesPosition: r.SeriesPosition,
			DateFinished:   r.DateFinished,
			Owned:          r.Owned,
			OwnedCopies:    r.OwnedCopies,
			Rating:         r.Rating,
		})
	}
	for _, u := range body.LibraryUpdates {
		req.LibraryUpdates = append(req.LibraryUpdates, service.LibraryUpdate{
			LibraryBookID:   u.LibraryBookID,
			NewDateFinished: u.NewDateFinished,
		})
	}

	result, err := s.services.Imports.Commit(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	return &CommitOutput{Body: *result}, nil
}
