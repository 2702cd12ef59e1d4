package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqed/marqed-server/internal/cache"
	"github.com/marqed/marqed-server/internal/domain"
	apperrors "github.com/marqed/marqed-server/internal/errors"
	"github.com/marqed/marqed-server/internal/id"
	"github.com/marqed/marqed-server/internal/search"
	"github.com/marqed/marqed-server/internal/store"
	"github.com/marqed/marqed-server/internal/store/sqlite"
)

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f *fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

type searchFixture struct {
	store  store.Store
	cache  *cache.ResultCache
	search *SearchService
	marks  *BookmarkService
	embed  *fixedEmbedder
}

func setupSearch(t *testing.T) *searchFixture {
	t.Helper()

	dir := t.TempDir()
	testStore, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { testStore.Close() })

	logger := slog.New(slog.DiscardHandler)
	resultCache, err := cache.Open(filepath.Join(dir, "cache"), time.Minute, logger)
	require.NoError(t, err)
	t.Cleanup(func() { resultCache.Close() })

	embed := &fixedEmbedder{vec: []float32{1, 0}}
	strategies := []search.Strategy{
		search.NewTagStrategy(testStore),
		search.NewVectorStrategy(testStore, embed),
		search.NewDomainStrategy(testStore),
		search.NewLexicalStrategy(testStore),
		search.NewRecentsStrategy(testStore),
	}

	return &searchFixture{
		store:  testStore,
		cache:  resultCache,
		search: NewSearchService(testStore, resultCache, strategies, 3*time.Second, logger),
		marks:  NewBookmarkService(testStore, resultCache, logger),
		embed:  embed,
	}
}

func seedReady(t *testing.T, s store.Store, ownerID, title string, mutate func(*domain.Bookmark)) *domain.Bookmark {
	t.Helper()
	now := time.Now()
	b := &domain.Bookmark{
		ID:        id.MustGenerate("bmk"),
		OwnerID:   ownerID,
		URL:       "https://example.com/" + title,
		Type:      domain.TypePage,
		Title:     title,
		Status:    domain.StatusReady,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(b)
	}
	require.NoError(t, s.CreateBookmark(context.Background(), b))
	time.Sleep(2 * time.Millisecond) // keep id order aligned with creation order
	return b
}

func attachTags(t *testing.T, s store.Store, b *domain.Bookmark, names ...string) {
	t.Helper()
	ctx := context.Background()
	var ids []string
	for _, name := range names {
		tag, _, err := s.FindOrCreateTag(ctx, b.OwnerID, name, domain.OriginUser)
		require.NoError(t, err)
		ids = append(ids, tag.ID)
	}
	require.NoError(t, s.SetBookmarkTags(ctx, b.ID, ids))
}

func TestSearchTagOnly(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	tagged := seedReady(t, f.store, "user-1", "tagged", nil)
	attachTags(t, f.store, tagged, "x")
	seedReady(t, f.store, "user-1", "untagged", nil)
	pending := seedReady(t, f.store, "user-1", "pending", func(b *domain.Bookmark) {
		b.Status = domain.StatusPending
	})
	attachTags(t, f.store, pending, "x")

	res, err := f.search.Search(ctx, &search.Request{OwnerID: "user-1", Tags: []string{"x"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, tagged.ID, res.Items[0].Bookmark.ID)
	assert.Equal(t, search.MatchTag, res.Items[0].MatchType)
	assert.Equal(t, []string{"x"}, res.Items[0].MatchedTags)
}

func TestSearchEngagementRanking(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	// A and B tagged "js"; A has 10 opens. C only matches lexically.
	a := seedReady(t, f.store, "user-1", "framework guide", nil)
	attachTags(t, f.store, a, "js")
	b := seedReady(t, f.store, "user-1", "another guide", nil)
	attachTags(t, f.store, b, "js")
	c := seedReady(t, f.store, "user-1", "js tutorial", nil)

	for range 10 {
		require.NoError(t, f.store.RecordEngagement(ctx, &domain.EngagementEvent{
			OwnerID: "user-1", BookmarkID: a.ID, OpenedAt: time.Now(),
		}))
	}

	res, err := f.search.Search(ctx, &search.Request{OwnerID: "user-1", Tags: []string{"js"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, a.ID, res.Items[0].Bookmark.ID, "opens must boost A above B")
	assert.Equal(t, b.ID, res.Items[1].Bookmark.ID)

	res, err = f.search.Search(ctx, &search.Request{OwnerID: "user-1", Query: "js"})
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, it := range res.Items {
		ids[it.Bookmark.ID] = true
	}
	assert.True(t, ids[c.ID], "lexical match must surface C")
}

func TestSearchBareListing(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	var created []string
	for i := range 5 {
		b := seedReady(t, f.store, "user-1", fmt.Sprintf("bookmark %d", i), nil)
		created = append(created, b.ID)
	}

	res, err := f.search.Search(ctx, &search.Request{OwnerID: "user-1", Limit: 3})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.True(t, res.HasMore)
	// Most recent first.
	for i, it := range res.Items {
		assert.Equal(t, created[len(created)-1-i], it.Bookmark.ID)
		assert.Equal(t, search.MatchRecent, it.MatchType)
	}

	// Second page continues past the cursor with no repeats.
	res2, err := f.search.Search(ctx, &search.Request{
		OwnerID: "user-1", Limit: 3, Cursor: res.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, res2.Items, 2)
	assert.False(t, res2.HasMore)
	assert.Equal(t, created[1], res2.Items[0].Bookmark.ID)
	assert.Equal(t, created[0], res2.Items[1].Bookmark.ID)
}

func TestSearchBareListingUnaffectedByOpens(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	var created []string
	for i := range 4 {
		b := seedReady(t, f.store, "user-1", fmt.Sprintf("bookmark %d", i), nil)
		created = append(created, b.ID)
	}
	for range 10 {
		require.NoError(t, f.marks.RecordOpen(ctx, "user-1", created[0]))
	}

	var got []string
	cursor := ""
	for range 4 { // bounded; the listing ends well before this
		res, err := f.search.Search(ctx, &search.Request{
			OwnerID: "user-1", Limit: 2, Cursor: cursor,
		})
		require.NoError(t, err)
		for _, it := range res.Items {
			got = append(got, it.Bookmark.ID)
		}
		if !res.HasMore {
			break
		}
		cursor = res.NextCursor
	}

	// Opens never reorder a bare listing, and paging returns every
	// bookmark exactly once, newest first, heavily-opened oldest last.
	want := []string{created[3], created[2], created[1], created[0]}
	assert.Equal(t, want, got)
}

func TestSearchNoDuplicatesAcrossStrategies(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	// Qualifies by domain and lexically ("github" in title and URL).
	b := seedReady(t, f.store, "user-1", "github.com tricks", func(b *domain.Bookmark) {
		b.URL = "https://github.com/golang/go"
	})

	res, err := f.search.Search(ctx, &search.Request{OwnerID: "user-1", Query: "github.com"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, b.ID, res.Items[0].Bookmark.ID)
	// Domain outweighs lexical, so it wins the label.
	assert.Equal(t, search.MatchDomain, res.Items[0].MatchType)
}

func TestSearchIdempotentWithinTTL(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	seedReady(t, f.store, "user-1", "alpha", nil)
	seedReady(t, f.store, "user-1", "beta", nil)

	req := func() *search.Request { return &search.Request{OwnerID: "user-1"} }
	first, err := f.search.Search(ctx, req())
	require.NoError(t, err)
	second, err := f.search.Search(ctx, req())
	require.NoError(t, err)

	// Byte-identical pages within the TTL.
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestSearchInvalidationAfterMutation(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	seedReady(t, f.store, "user-1", "old bookmark", nil)
	req := func() *search.Request { return &search.Request{OwnerID: "user-1"} }

	first, err := f.search.Search(ctx, req())
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	// Mutation through the service invalidates cached pages.
	created, err := f.marks.Create(ctx, "user-1", CreateBookmarkInput{URL: "https://a.example"})
	require.NoError(t, err)
	ready := domain.StatusReady
	_, err = f.marks.Update(ctx, "user-1", created.ID, UpdateBookmarkInput{Status: &ready})
	require.NoError(t, err)

	second, err := f.search.Search(ctx, req())
	require.NoError(t, err)
	assert.Len(t, second.Items, 2, "post-mutation search must see the new bookmark")
}

func TestSearchDegradesWhenEmbedderDown(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	f.embed.err = errors.New("embedder unreachable")
	b := seedReady(t, f.store, "user-1", "resilient title", nil)

	res, err := f.search.Search(ctx, &search.Request{OwnerID: "user-1", Query: "resilient"})
	require.NoError(t, err, "one dead strategy must not fail the search")
	require.Len(t, res.Items, 1)
	assert.Equal(t, b.ID, res.Items[0].Bookmark.ID)
	assert.Equal(t, search.MatchLexical, res.Items[0].MatchType)
}

func TestSearchVectorSurfacesConceptualMatch(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	near := seedReady(t, f.store, "user-1", "storage engines", func(b *domain.Bookmark) {
		b.Embedding = []float32{1, 0.1}
	})
	seedReady(t, f.store, "user-1", "cooking pasta", func(b *domain.Bookmark) {
		b.Embedding = []float32{0, 1}
	})

	// No literal overlap with either title.
	res, err := f.search.Search(ctx, &search.Request{OwnerID: "user-1", Query: "databases"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, near.ID, res.Items[0].Bookmark.ID)
	assert.Equal(t, search.MatchSemantic, res.Items[0].MatchType)
}

func TestSearchValidation(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	_, err := f.search.Search(ctx, &search.Request{OwnerID: "user-1", Limit: 1000})
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	_, err = f.search.Search(ctx, &search.Request{OwnerID: "user-1", Cursor: "!!bad!!"})
	require.Error(t, err)
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

// countsReader stubs the strategy reads and records the context state of
// the engagement lookup.
type countsReader struct {
	counts       map[string]int64
	lookupCtxErr error
}

func (r *countsReader) BookmarksByTags(context.Context, string, []string, store.Filters) ([]store.TagMatch, error) {
	return nil, nil
}

func (r *countsReader) BookmarksByDomain(context.Context, string, string, store.Filters) ([]*domain.Bookmark, error) {
	return nil, nil
}

func (r *countsReader) BookmarksByText(context.Context, string, string, store.Filters) ([]*domain.Bookmark, error) {
	return nil, nil
}

func (r *countsReader) BookmarksWithEmbedding(context.Context, string, store.Filters) ([]*domain.Bookmark, error) {
	return nil, nil
}

func (r *countsReader) RecentBookmarks(context.Context, string, store.Filters, string, int) ([]*domain.Bookmark, error) {
	return nil, nil
}

func (r *countsReader) EngagementCounts(ctx context.Context, _ string, _ []string) (map[string]int64, error) {
	r.lookupCtxErr = ctx.Err()
	return r.counts, nil
}

// missCache always misses and drops writes.
type missCache struct{}

func (missCache) Get(string, string, any) error { return cache.ErrMiss }
func (missCache) Set(string, string, any) error { return nil }
func (missCache) InvalidateOwner(string) error { return nil }

type stubStrategy struct {
	name       string
	delay      time.Duration
	candidates []search.Candidate
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Active(*search.Request) bool { return true }

func (s *stubStrategy) Run(ctx context.Context, _ *search.Request) ([]search.Candidate, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return s.candidates, nil
	}
}

func TestSearchBoostSurvivesDeadline(t *testing.T) {
	b := &domain.Bookmark{ID: "bmk-1", OwnerID: "user-1", Status: domain.StatusReady}
	reader := &countsReader{counts: map[string]int64{"bmk-1": 3}}

	strategies := []search.Strategy{
		&stubStrategy{name: "stalled", delay: time.Minute},
		&stubStrategy{name: "fast", candidates: []search.Candidate{
			{Bookmark: b, Strategy: search.MatchLexical, BaseScore: 40},
		}},
	}
	svc := NewSearchService(reader, missCache{}, strategies, 30*time.Millisecond, slog.New(slog.DiscardHandler))

	res, err := svc.Search(context.Background(), &search.Request{OwnerID: "user-1", Query: "x"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	// The stalled strategy burned the whole strategy deadline, but the
	// engagement lookup ran on a live context and the boost applied.
	assert.NoError(t, reader.lookupCtxErr)
	wantBoost := math.Log(4) * 10
	assert.InDelta(t, 40+wantBoost, res.Items[0].Score, 1e-9)
}

func TestRecordOpenInvalidatesCache(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	a := seedReady(t, f.store, "user-1", "first", nil)
	b := seedReady(t, f.store, "user-1", "second", nil)
	attachTags(t, f.store, a, "t")
	attachTags(t, f.store, b, "t")

	req := func() *search.Request { return &search.Request{OwnerID: "user-1", Tags: []string{"t"}} }
	first, err := f.search.Search(ctx, req())
	require.NoError(t, err)
	// Tie broken by id: b (newer) first.
	require.Len(t, first.Items, 2)
	assert.Equal(t, b.ID, first.Items[0].Bookmark.ID)

	for range 5 {
		require.NoError(t, f.marks.RecordOpen(ctx, "user-1", a.ID))
	}

	second, err := f.search.Search(ctx, req())
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, a.ID, second.Items[0].Bookmark.ID, "opens must re-rank after invalidation")
}
