package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/service"
)

func (s *Server) registerFinishedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFinished",
		Method:      http.MethodGet,
		Path:        "/api/v1/finished",
		Summary:     "List finished books",
		Description: "Returns the unified view of read library books and completed books",
		Tags:        []string{"Finished"},
	}, s.handleListFinished)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addFinished",
		Method:        http.MethodPost,
		Path:          "/api/v1/finished",
		Summary:       "Log a finished book",
		Description:   "Adds a completed book. Owned books are also mirrored into the library.",
		Tags:          []string{"Finished"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddFinished)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFinished",
		Method:      http.MethodGet,
		Path:        "/api/v1/finished/{id}",
		Summary:     "Get finished book",
		Description: "Returns one entry with the user's rating",
		Tags:        []string{"Finished"},
	}, s.handleGetFinished)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateFinished",
		Method:      http.MethodPatch,
		Path:        "/api/v1/finished/{id}",
		Summary:     "Update finished book",
		Description: "Updates the finish date, or the owned flag of a completed book",
		Tags:        []string{"Finished"},
	}, s.handleUpdateFinished)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFinished",
		Method:      http.MethodDelete,
		Path:        "/api/v1/finished/{id}",
		Summary:     "Remove finished book",
		Description: "Deletes a completed book, or marks a library book unread",
		Tags:        []string{"Finished"},
	}, s.handleDeleteFinished)

	huma.Register(s.api, huma.Operation{
		OperationID: "rateFinished",
		Method:      http.MethodPut,
		Path:        "/api/v1/finished/{id}/rating",
		Summary:     "Rate finished book",
		Tags:        []string{"Finished"},
	}, s.handleRateFinished)

	huma.Register(s.api, huma.Operation{
		OperationID: "promoteFinished",
		Method:      http.MethodPost,
		Path:        "/api/v1/finished/{id}/promote",
		Summary:     "Add to library",
		Description: "Moves a completed book into the library, merging with an existing copy",
		Tags:        []string{"Finished"},
	}, s.handlePromoteFinished)
}

// === DTOs ===

// ListFinishedInput contains parameters for listing finished books.
type ListFinishedInput struct {
	UserID string `header:"X-User-ID"`
}

// FinishedListResponse contains the unified view.
type FinishedListResponse struct {
	Entries []domain.UnifiedEntry `json:"entries" doc:"Entries, newest finish first"`
	Total   int                   `json:"total" doc:"Number of entries"`
}

// FinishedListOutput wraps the list response for Huma.
type FinishedListOutput struct {
	Body FinishedListResponse
}

// AddFinishedRequest is the request body for logging a finished book.
type AddFinishedRequest struct {
	Title          string   `json:"title" validate:"required,max=500" doc:"Book title"`
	Author         string   `json:"author,omitempty" validate:"omitempty,max=300" doc:"Primary author"`
	ISBN           string   `json:"isbn,omitempty" validate:"isbndigits" doc:"ISBN-10 or ISBN-13; hyphens are ignored"`
	DateFinished   string   `json:"dateFinished,omitempty" validate:"isodate" doc:"YYYY-MM-DD"`
	SeriesName     string   `json:"seriesName,omitempty" validate:"omitempty,max=300"`
	SeriesPosition string   `json:"seriesPosition,omitempty" validate:"omitempty,max=20"`
	Genre          string   `json:"genre,omitempty" validate:"omitempty,max=100"`
	Synopsis       string   `json:"synopsis,omitempty"`
	Tags           []string `json:"tags,omitempty" validate:"omitempty,dive,max=100"`
	PageCount      int      `json:"pageCount,omitempty" validate:"min=0"`
	Owned          bool     `json:"owned,omitempty" doc:"Also keep the book in the library"`
	Rating         int      `json:"rating,omitempty" validate:"min=0,max=5" doc:"1-5, 0 for none"`
}

// AddFinishedInput wraps the add request for Huma.
type AddFinishedInput struct {
	UserID string `header:"X-User-ID"`
	Body   AddFinishedRequest
}

// EntryInput identifies one entry.
type EntryInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Entry id, library_<n> or completed_<n>"`
}

// EntryOutput wraps an entry with its rating.
type EntryOutput struct {
	Body service.EntryDetail
}

// UpdateFinishedRequest is the request body for editing an entry.
type UpdateFinishedRequest struct {
	DateFinished *string `json:"dateFinished,omitempty" validate:"omitempty,isodate" doc:"YYYY-MM-DD; empty clears it"`
	Owned        *bool   `json:"owned,omitempty" doc:"Completed books only"`
}

// UpdateFinishedInput wraps the update request for Huma.
type UpdateFinishedInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Entry id"`
	Body   UpdateFinishedRequest
}

// RateFinishedRequest is the request body for rating an entry.
type RateFinishedRequest struct {
	Rating int `json:"rating" validate:"min=1,max=5" doc:"1-5"`
}

// RateFinishedInput wraps the rating request for Huma.
type RateFinishedInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Entry id"`
	Body   RateFinishedRequest
}

// RatingOutput wraps a stored rating.
type RatingOutput struct {
	Body domain.Rating
}

// PromotionOutput wraps a promotion result.
type PromotionOutput struct {
	Body service.PromotionResult
}

// === Handlers ===

func (s *Server) handleListFinished(ctx context.Context, input *ListFinishedInput) (*FinishedListOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Finished.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &FinishedListOutput{Body: FinishedListResponse{Entries: entries, Total: len(entries)}}, nil
}

func (s *Server) handleAddFinished(ctx context.Context, input *AddFinishedInput) (*EntryOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}

	body := input.Body
	body.ISBN = dedup.NormalizeISBN(body.ISBN)
	if err := s.validator.Validate(&body); err != nil {
		return nil, err
	}

	detail, err := s.services.Finished.AddCompleted(ctx, userID, ingest.Row{
		Title:          body.Title,
		Author:         body.Author,
		ISBN:           body.ISBN,
		DateFinished:   body.DateFinished,
		SeriesName:     body.SeriesName,
		SeriesPosition: body.SeriesPosition,
		Genre:          body.Genre,
		Synopsis:       body.Synopsis,
		Tags:           body.Tags,
		PageCount:      body.PageCount,
		Owned:          body.Owned,
		Rating:         body.Rating,
	})
	if err != nil {
		return nil, err
	}

	return &EntryOutput{Body: *detail}, nil
}

func (s *Server) handleGetFinished(ctx context.Context, input *EntryInput) (*EntryOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}
	ref, err := parseEntryID(input.ID)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Finished.Get(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	return &EntryOutput{Body: *detail}, nil
}

func (s *Server) handleUpdateFinished(ctx context.Context, input *UpdateFinishedInput) (*EntryOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}
	ref, err := parseEntryID(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	detail, err := s.services.Finished.Update(ctx, userID, ref, service.EntryUpdate{
		DateFinished: input.Body.DateFinished,
		Owned:        input.Body.Owned,
	})
	if err != nil {
		return nil, err
	}

	return &EntryOutput{Body: *detail}, nil
}

func (s *Server) handleDeleteFinished(ctx context.Context, input *EntryInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}
	ref, err := parseEntryID(input.ID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Finished.Delete(ctx, userID, ref); err != nil {
		return nil, err
	}

	return nil, nil
}

func (s *Server) handleRateFinished(ctx context.Context, input *RateFinishedInput) (*RatingOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}
	ref, err := parseEntryID(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	rating, err := s.services.Finished.SetRating(ctx, userID, ref, input.Body.Rating)
	if err != nil {
		return nil, err
	}

	return &RatingOutput{Body: *rating}, nil
}

func (s *Server) handlePromoteFinished(ctx context.Context, input *EntryInput) (*PromotionOutput, error) {
	userID, err := s.authenticateRequest(input.UserID)
	if err != nil {
		return nil, err
	}
	ref, err := parseEntryID(input.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Finished.Promote(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("promote request handled", "user_id", userID, "ref", ref.String())
	return &PromotionOutput{Body: *result}, nil
}
