package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/errors"
	"github.com/marqed/marqed-server/internal/id"
	"github.com/marqed/marqed-server/internal/store"
)

// BookmarkService owns bookmark mutations and the cache invalidation
// contract: search caches for an owner are dropped after each committed
// mutation, so the next search reads fresh state.
type BookmarkService struct {
	store  store.Store
	cache  ResultCache
	logger *slog.Logger
}

// NewBookmarkService creates a bookmark service.
func NewBookmarkService(st store.Store, resultCache ResultCache, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{store: st, cache: resultCache, logger: logger}
}

// CreateBookmarkInput carries the caller-supplied fields for a new
// bookmark. Metadata fields are optional; the ingestion pipeline fills
// them in later and flips the status to ready.
type CreateBookmarkInput struct {
	URL     string
	Type    domain.BookmarkType
	Title   string
	Summary string
	Tags    []string
}

// Create saves a new bookmark for the owner and attaches its tags.
func (s *BookmarkService) Create(ctx context.Context, ownerID string, in CreateBookmarkInput) (*domain.Bookmark, error) {
	if in.URL == "" {
		return nil, errors.Validation("url is required")
	}
	if in.Type == "" {
		in.Type = domain.TypePage
	}

	now := time.Now()
	b := &domain.Bookmark{
		ID:        id.MustGenerate("bmk"),
		OwnerID:   ownerID,
		URL:       in.URL,
		Type:      in.Type,
		Title:     in.Title,
		Summary:   in.Summary,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBookmark(ctx, b); err != nil {
		return nil, err
	}
	if len(in.Tags) > 0 {
		if err := s.setTags(ctx, ownerID, b.ID, in.Tags, domain.OriginUser); err != nil {
			return nil, err
		}
	}

	s.invalidate(ownerID)
	s.logger.Info("bookmark created", "owner_id", ownerID, "bookmark_id", b.ID)
	return b, nil
}

// UpdateBookmarkInput carries a partial update. Nil fields are left
// unchanged; a non-nil Tags replaces the whole tag set.
type UpdateBookmarkInput struct {
	Title   *string
	Summary *string
	Starred *bool
	Read    *bool
	Status  *domain.BookmarkStatus
	Tags    []string
}

// Update applies a partial update to the owner's bookmark.
func (s *BookmarkService) Update(ctx context.Context, ownerID, bookmarkID string, in UpdateBookmarkInput) (*domain.Bookmark, error) {
	b, err := s.store.GetBookmark(ctx, ownerID, bookmarkID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Summary != nil {
		b.Summary = *in.Summary
	}
	if in.Starred != nil {
		b.Starred = *in.Starred
	}
	if in.Read != nil {
		b.Read = *in.Read
	}
	if in.Status != nil {
		b.Status = *in.Status
	}
	b.Touch()

	if err := s.store.UpdateBookmark(ctx, b); err != nil {
		return nil, err
	}
	if in.Tags != nil {
		if err := s.setTags(ctx, ownerID, b.ID, in.Tags, domain.OriginUser); err != nil {
			return nil, err
		}
	}

	s.invalidate(ownerID)
	return b, nil
}

// Delete removes the owner's bookmark.
func (s *BookmarkService) Delete(ctx context.Context, ownerID, bookmarkID string) error {
	if err := s.store.DeleteBookmark(ctx, ownerID, bookmarkID); err != nil {
		return err
	}
	s.invalidate(ownerID)
	s.logger.Info("bookmark deleted", "owner_id", ownerID, "bookmark_id", bookmarkID)
	return nil
}

// Get returns the owner's bookmark with its tags.
func (s *BookmarkService) Get(ctx context.Context, ownerID, bookmarkID string) (*domain.Bookmark, []*domain.Tag, error) {
	b, err := s.store.GetBookmark(ctx, ownerID, bookmarkID)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.store.TagsForBookmark(ctx, bookmarkID)
	if err != nil {
		return nil, nil, err
	}
	return b, tags, nil
}

// RecordOpen appends an engagement event for the bookmark. Engagement
// feeds ranking, so cached pages for the owner are dropped too.
func (s *BookmarkService) RecordOpen(ctx context.Context, ownerID, bookmarkID string) error {
	if _, err := s.store.GetBookmark(ctx, ownerID, bookmarkID); err != nil {
		return err
	}
	err := s.store.RecordEngagement(ctx, &domain.EngagementEvent{
		OwnerID:    ownerID,
		BookmarkID: bookmarkID,
		OpenedAt:   time.Now(),
	})
	if err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

// ListTags returns all of the owner's tags.
func (s *BookmarkService) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, ownerID)
}

// setTags resolves tag names to ids, creating missing tags, and replaces
// the bookmark's tag set.
func (s *BookmarkService) setTags(ctx context.Context, ownerID, bookmarkID string, names []string, origin domain.TagOrigin) error {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, _, err := s.store.FindOrCreateTag(ctx, ownerID, name, origin)
		if err != nil {
			return err
		}
		ids = append(ids, tag.ID)
	}
	return s.store.SetBookmarkTags(ctx, bookmarkID, ids)
}

// invalidate drops the owner's cached searches. Runs after the mutation
// commits so a racing search cannot refill the cache with stale rows.
// Invalidation failure is logged, not returned: the short TTL bounds
// staleness and the mutation itself already succeeded.
func (s *BookmarkService) invalidate(ownerID string) {
	if err := s.cache.InvalidateOwner(ownerID); err != nil {
		s.logger.Warn("cache invalidation failed", "owner_id", ownerID, "error", err)
	}
}
