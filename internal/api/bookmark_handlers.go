package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/service"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBookmark",
		Method:        http.MethodPost,
		Path:          "/api/v1/bookmarks",
		Summary:       "Create bookmark",
		Description:   "Saves a new bookmark. It starts in pending status until the ingestion pipeline fills in metadata.",
		Tags:          []string{"Bookmarks"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookmark",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Get bookmark",
		Description: "Returns a bookmark by ID",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookmark",
		Method:      http.MethodPatch,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Update bookmark",
		Description: "Applies a partial update. Absent fields are left unchanged; a present tags list replaces the whole tag set.",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Delete bookmark",
		Description: "Deletes a bookmark and its tag links",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "openBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks/{id}/open",
		Summary:     "Record bookmark open",
		Description: "Records an open event used for engagement ranking",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleOpenBookmark)
}

// === DTOs ===

// CreateBookmarkRequest is the request body for creating a bookmark.
type CreateBookmarkRequest struct {
	URL     string   `json:"url" validate:"required,url" doc:"Bookmark URL"`
	Type    string   `json:"type,omitempty" validate:"omitempty,oneof=page article video youtube product image pdf tweet note" doc:"Content type (default page)"`
	Title   string   `json:"title,omitempty" validate:"max=512" doc:"Title"`
	Summary string   `json:"summary,omitempty" doc:"Summary text"`
	Tags    []string `json:"tags,omitempty" validate:"max=32,dive,min=1,max=64" doc:"Tag names to attach"`
}

// CreateBookmarkAPIInput wraps the create bookmark request for Huma.
type CreateBookmarkAPIInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookmarkRequest
}

// BookmarkResponse contains bookmark data in API responses.
type BookmarkResponse struct {
	ID           string    `json:"id" doc:"Bookmark ID"`
	URL          string    `json:"url" doc:"Bookmark URL"`
	Type         string    `json:"type" doc:"Content type"`
	Title        string    `json:"title" doc:"Title"`
	Summary      string    `json:"summary,omitempty" doc:"Summary text"`
	PreviewImage string    `json:"preview_image,omitempty" doc:"Preview image URL"`
	OGImage      string    `json:"og_image,omitempty" doc:"Open Graph image URL"`
	Favicon      string    `json:"favicon,omitempty" doc:"Favicon URL"`
	Status       string    `json:"status" doc:"Processing status"`
	Starred      bool      `json:"starred" doc:"Starred flag"`
	Read         bool      `json:"read" doc:"Read flag"`
	Tags         []string  `json:"tags" doc:"Attached tag names"`
	CreatedAt    time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time `json:"updated_at" doc:"Last update time"`
}

// BookmarkOutput wraps the bookmark response for Huma.
type BookmarkOutput struct {
	Body BookmarkResponse
}

// GetBookmarkInput contains parameters for getting a bookmark.
type GetBookmarkInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Bookmark ID"`
}

// UpdateBookmarkRequest is the request body for updating a bookmark.
type UpdateBookmarkRequest struct {
	Title   *string  `json:"title,omitempty" validate:"omitempty,max=512" doc:"Title"`
	Summary *string  `json:"summary,omitempty" doc:"Summary text"`
	Starred *bool    `json:"starred,omitempty" doc:"Starred flag"`
	Read    *bool    `json:"read,omitempty" doc:"Read flag"`
	Status  *string  `json:"status,omitempty" validate:"omitempty,oneof=pending ready failed" doc:"Processing status"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=32,dive,min=1,max=64" doc:"Replacement tag set"`
}

// UpdateBookmarkAPIInput wraps the update bookmark request for Huma.
type UpdateBookmarkAPIInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Bookmark ID"`
	Body          UpdateBookmarkRequest
}

// DeleteBookmarkInput contains parameters for deleting a bookmark.
type DeleteBookmarkInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Bookmark ID"`
}

// OpenBookmarkInput contains parameters for recording an open event.
type OpenBookmarkInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Bookmark ID"`
}

func bookmarkResponse(b *domain.Bookmark, tags []*domain.Tag) BookmarkResponse {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return BookmarkResponse{
		ID:           b.ID,
		URL:          b.URL,
		Type:         string(b.Type),
		Title:        b.Title,
		Summary:      b.Summary,
		PreviewImage: b.PreviewImage,
		OGImage:      b.OGImage,
		Favicon:      b.Favicon,
		Status:       string(b.Status),
		Starred:      b.Starred,
		Read:         b.Read,
		Tags:         names,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleCreateBookmark(ctx context.Context, input *CreateBookmarkAPIInput) (*BookmarkOutput, error) {
	ownerID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	b, err := s.bookmarks.Create(ctx, ownerID, service.CreateBookmarkInput{
		URL:     input.Body.URL,
		Type:    domain.BookmarkType(input.Body.Type),
		Title:   input.Body.Title,
		Summary: input.Body.Summary,
		Tags:    input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	_, tags, err := s.bookmarks.Get(ctx, ownerID, b.ID)
	if err != nil {
		return nil, err
	}

	return &BookmarkOutput{Body: bookmarkResponse(b, tags)}, nil
}

func (s *Server) handleGetBookmark(ctx context.Context, input *GetBookmarkInput) (*BookmarkOutput, error) {
	ownerID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	b, tags, err := s.bookmarks.Get(ctx, ownerID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookmarkOutput{Body: bookmarkResponse(b, tags)}, nil
}

func (s *Server) handleUpdateBookmark(ctx context.Context, input *UpdateBookmarkAPIInput) (*BookmarkOutput, error) {
	ownerID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	var status *domain.BookmarkStatus
	if input.Body.Status != nil {
		st := domain.BookmarkStatus(*input.Body.Status)
		status = &st
	}

	b, err := s.bookmarks.Update(ctx, ownerID, input.ID, service.UpdateBookmarkInput{
		Title:   input.Body.Title,
		Summary: input.Body.Summary,
		Starred: input.Body.Starred,
		Read:    input.Body.Read,
		Status:  status,
		Tags:    input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	_, tags, err := s.bookmarks.Get(ctx, ownerID, b.ID)
	if err != nil {
		return nil, err
	}

	return &BookmarkOutput{Body: bookmarkResponse(b, tags)}, nil
}

func (s *Server) handleDeleteBookmark(ctx context.Context, input *DeleteBookmarkInput) (*MessageOutput, error) {
	ownerID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.bookmarks.Delete(ctx, ownerID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Bookmark deleted"}}, nil
}

func (s *Server) handleOpenBookmark(ctx context.Context, input *OpenBookmarkInput) (*MessageOutput, error) {
	ownerID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.bookmarks.RecordOpen(ctx, ownerID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Open recorded"}}, nil
}
