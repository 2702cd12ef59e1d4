package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/marqed/marqed-server/internal/cache"
	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/errors"
	"github.com/marqed/marqed-server/internal/search"
	"github.com/marqed/marqed-server/internal/store"
)

// engagementLookupTimeout bounds the post-collection engagement count
// read. Separate from the strategy deadline so a deadline-degraded
// search can still rank with the boost.
const engagementLookupTimeout = 500 * time.Millisecond

// ResultCache is the slice of the cache the search service needs.
type ResultCache interface {
	Get(ownerID, signature string, dest any) error
	Set(ownerID, signature string, value any) error
	InvalidateOwner(ownerID string) error
}

// SearchResult is the cached and returned page shape.
type SearchResult struct {
	Items      []SearchItem `json:"items"`
	HasMore    bool         `json:"hasMore"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// SearchItem is one ranked bookmark in a result page.
type SearchItem struct {
	Bookmark    *domain.Bookmark `json:"bookmark"`
	Score       float64          `json:"score"`
	MatchType   search.MatchType `json:"matchType"`
	MatchedTags []string         `json:"matchedTags,omitempty"`
}

// SearchService is the single entry point for bookmark search. It checks
// the result cache, runs the activated strategies concurrently on a miss,
// merges and paginates, and stores the page back.
type SearchService struct {
	reader     store.Reader
	cache      ResultCache
	strategies []search.Strategy
	timeout    time.Duration
	logger     *slog.Logger
}

// NewSearchService creates a search service over the given strategies.
// Strategy order fixes tie-breaking for equal base scores, so pass them
// in priority order.
func NewSearchService(reader store.Reader, resultCache ResultCache, strategies []search.Strategy, timeout time.Duration, logger *slog.Logger) *SearchService {
	return &SearchService{
		reader:     reader,
		cache:      resultCache,
		strategies: strategies,
		timeout:    timeout,
		logger:     logger,
	}
}

// Search validates and executes a search request. It fails only on
// invalid input or when every activated strategy fails.
func (s *SearchService) Search(ctx context.Context, req *search.Request) (*SearchResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	after, err := search.DecodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}
	req.After = after

	sig := req.Signature()
	var cached SearchResult
	switch err := s.cache.Get(req.OwnerID, sig, &cached); {
	case err == nil:
		return &cached, nil
	case !errors.Is(err, cache.ErrMiss):
		// Cache trouble is a forced miss, never a failed search.
		s.logger.Warn("result cache read failed", "owner_id", req.OwnerID, "error", err)
	}

	items, err := s.runStrategies(ctx, req)
	if err != nil {
		return nil, err
	}

	page := search.Paginate(items, req.Limit, req.After)
	result := &SearchResult{
		Items:      make([]SearchItem, 0, len(page.Items)),
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	}
	for _, it := range page.Items {
		result.Items = append(result.Items, SearchItem{
			Bookmark:    it.Bookmark,
			Score:       it.Score,
			MatchType:   it.MatchType,
			MatchedTags: it.MatchedTags,
		})
	}

	if err := s.cache.Set(req.OwnerID, sig, result); err != nil {
		s.logger.Warn("result cache write failed", "owner_id", req.OwnerID, "error", err)
	}
	return result, nil
}

// runStrategies executes all activated strategies concurrently under the
// service deadline, merges their candidates, and applies the engagement
// boost. A strategy that errors or misses the deadline contributes zero
// candidates; only all strategies failing fails the search.
func (s *SearchService) runStrategies(ctx context.Context, req *search.Request) ([]search.Item, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var active []search.Strategy
	for _, st := range s.strategies {
		if st.Active(req) {
			active = append(active, st)
		}
	}
	if len(active) == 0 {
		// Nothing matched the request shape; Active conditions cover the
		// bare listing via the recents strategy, so this is unreachable
		// unless strategies were wired without it.
		return nil, errors.Internal("no search strategy activated")
	}

	type outcome struct {
		idx        int
		candidates []search.Candidate
		err        error
	}
	// Buffered to strategy count, so stragglers can still send after the
	// facade stops listening.
	results := make(chan outcome, len(active))
	for i, st := range active {
		go func(idx int, st search.Strategy) {
			candidates, err := st.Run(runCtx, req)
			results <- outcome{idx: idx, candidates: candidates, err: err}
		}(i, st)
	}

	// Collect into fixed slots so merge order, and with it tie-breaking,
	// never depends on completion order.
	perStrategy := make([][]search.Candidate, len(active))
	settled := make([]bool, len(active))
	succeeded := 0
collect:
	for range active {
		select {
		case out := <-results:
			settled[out.idx] = true
			if out.err != nil {
				s.logger.Warn("search strategy failed",
					"strategy", active[out.idx].Name(),
					"owner_id", req.OwnerID,
					"error", out.err)
				continue
			}
			perStrategy[out.idx] = out.candidates
			succeeded++
		case <-runCtx.Done():
			// Abandon stragglers; they notice the context in their own
			// store calls, we just stop waiting.
			for i, done := range settled {
				if !done {
					s.logger.Warn("search strategy abandoned at deadline",
						"strategy", active[i].Name(),
						"owner_id", req.OwnerID)
				}
			}
			break collect
		}
	}

	// Errors and abandonment degrade to zero candidates, but a search
	// with no live signal at all is a server fault, not an empty result.
	if succeeded == 0 {
		return nil, errors.Unavailable("search unavailable: no strategy produced data")
	}

	var candidates []search.Candidate
	for _, c := range perStrategy {
		candidates = append(candidates, c...)
	}

	var counts map[string]int64
	if ids := boostableIDs(candidates); len(ids) > 0 {
		// Not the strategy context: that one is spent once the deadline
		// fires, and the boost should still apply to whatever candidates
		// made it in.
		countsCtx, countsCancel := context.WithTimeout(ctx, engagementLookupTimeout)
		defer countsCancel()

		var err error
		counts, err = s.reader.EngagementCounts(countsCtx, req.OwnerID, ids)
		if err != nil {
			// Ranking proceeds without the boost.
			s.logger.Warn("engagement lookup failed", "owner_id", req.OwnerID, "error", err)
			counts = nil
		}
	}
	return search.Merge(candidates, counts), nil
}

// boostableIDs returns the distinct bookmark ids eligible for the
// engagement boost. Recent candidates are excluded: bare listings rank
// by recency alone.
func boostableIDs(candidates []search.Candidate) []string {
	seen := make(map[string]struct{}, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Strategy == search.MatchRecent {
			continue
		}
		if _, ok := seen[c.Bookmark.ID]; ok {
			continue
		}
		seen[c.Bookmark.ID] = struct{}{}
		ids = append(ids, c.Bookmark.ID)
	}
	return ids
}
