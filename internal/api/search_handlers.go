package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/search"
	"github.com/marqed/marqed-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search bookmarks",
		Description: "Runs a ranked search over the current user's bookmarks. With no query and no tags, returns the bookmark list newest first.",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains the search query parameters.
type SearchInput struct {
	Authorization    string  `header:"Authorization"`
	Query            string  `query:"query" doc:"Free-text query"`
	Tags             string  `query:"tags" doc:"Comma-separated tag names, matched case-sensitively"`
	Types            string  `query:"types" doc:"Comma-separated bookmark types; unknown values are ignored"`
	Special          string  `query:"special" doc:"Comma-separated status filters: READ, UNREAD, STAR"`
	Limit            int     `query:"limit" doc:"Page size, 1 to 100 (default 20)"`
	Cursor           string  `query:"cursor" doc:"Opaque cursor from a previous page"`
	MatchingDistance float64 `query:"matchingDistance" doc:"Vector match tolerance in (0, 2]"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body service.SearchResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	ownerID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	req := &search.Request{
		OwnerID:          ownerID,
		Query:            input.Query,
		Tags:             splitCSV(input.Tags),
		Types:            parseTypes(input.Types),
		Special:          parseSpecial(input.Special),
		Limit:            input.Limit,
		Cursor:           input.Cursor,
		MatchingDistance: input.MatchingDistance,
	}

	result, err := s.search.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

// parseTypes parses a comma-separated type list, dropping unknown values.
func parseTypes(raw string) []domain.BookmarkType {
	var out []domain.BookmarkType
	for _, tok := range splitCSV(raw) {
		if t, ok := domain.ParseBookmarkType(tok); ok {
			out = append(out, t)
		}
	}
	return out
}

// parseSpecial parses a comma-separated special filter list, dropping
// unknown values.
func parseSpecial(raw string) []domain.SpecialFilter {
	var out []domain.SpecialFilter
	for _, tok := range splitCSV(raw) {
		if f, ok := domain.ParseSpecialFilter(tok); ok {
			out = append(out, f)
		}
	}
	return out
}
