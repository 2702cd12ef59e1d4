// Package store defines the persistence contract for bookmarks, tags, and
// the engagement log. The sqlite subpackage provides the implementation.
package store

import (
	"context"

	"github.com/marqed/marqed-server/internal/domain"
)

// Filters narrows the rows strategy reads consider. The zero value applies
// no narrowing beyond the always-on "status = ready" rule.
type Filters struct {
	Types   []domain.BookmarkType
	Special []domain.SpecialFilter
}

// TagMatch pairs a bookmark with the requested tag names it actually
// carries. Produced by BookmarksByTags for the tag strategy.
type TagMatch struct {
	Bookmark    *domain.Bookmark
	MatchedTags []string
}

// Reader is the read-only view the search strategies use. All methods
// return only bookmarks with status "ready"; pending and failed bookmarks
// are never eligible for results.
type Reader interface {
	// BookmarksByTags returns bookmarks carrying at least one of the given
	// tag names. Matching is exact and case-sensitive.
	BookmarksByTags(ctx context.Context, ownerID string, names []string, f Filters) ([]TagMatch, error)

	// BookmarksByDomain returns bookmarks whose URL contains the domain,
	// case-insensitively.
	BookmarksByDomain(ctx context.Context, ownerID, host string, f Filters) ([]*domain.Bookmark, error)

	// BookmarksByText returns bookmarks whose title or summary contains
	// the text, case-insensitively. No stemming; plain substring.
	BookmarksByText(ctx context.Context, ownerID, text string, f Filters) ([]*domain.Bookmark, error)

	// BookmarksWithEmbedding returns bookmarks that carry a summary
	// embedding, with the embedding loaded.
	BookmarksWithEmbedding(ctx context.Context, ownerID string, f Filters) ([]*domain.Bookmark, error)

	// RecentBookmarks returns the newest ready bookmarks, newest first.
	// A non-empty afterID seeks strictly past that id for pagination.
	RecentBookmarks(ctx context.Context, ownerID string, f Filters, afterID string, limit int) ([]*domain.Bookmark, error)

	// EngagementCounts returns the open-count per bookmark id for the
	// given ids. Ids with no events are absent from the map.
	EngagementCounts(ctx context.Context, ownerID string, bookmarkIDs []string) (map[string]int64, error)
}

// Writer is the mutation side used by the bookmark service. Every write
// here obligates the caller to invalidate the owner's cached searches.
type Writer interface {
	CreateBookmark(ctx context.Context, b *domain.Bookmark) error
	UpdateBookmark(ctx context.Context, b *domain.Bookmark) error
	DeleteBookmark(ctx context.Context, ownerID, bookmarkID string) error

	// SetBookmarkTags replaces the bookmark's tag set with the given tag ids.
	SetBookmarkTags(ctx context.Context, bookmarkID string, tagIDs []string) error

	// FindOrCreateTag returns the owner's tag with the given name,
	// creating it if absent. The bool reports whether it was created.
	FindOrCreateTag(ctx context.Context, ownerID, name string, origin domain.TagOrigin) (*domain.Tag, bool, error)

	// RecordEngagement appends one "opened" event.
	RecordEngagement(ctx context.Context, ev *domain.EngagementEvent) error
}

// Store is the full persistence contract.
type Store interface {
	Reader
	Writer

	GetBookmark(ctx context.Context, ownerID, bookmarkID string) (*domain.Bookmark, error)
	TagsForBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error)
	ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error)

	Close() error
}
