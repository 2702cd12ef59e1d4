// Package domain contains the core data models for the marqed server.
package domain

import "time"

// BookmarkType classifies what kind of content a bookmark points at.
type BookmarkType string

// Bookmark types.
const (
	TypePage    BookmarkType = "page"
	TypeArticle BookmarkType = "article"
	TypeVideo   BookmarkType = "video"
	TypeYouTube BookmarkType = "youtube"
	TypeProduct BookmarkType = "product"
	TypeImage   BookmarkType = "image"
	TypePDF     BookmarkType = "pdf"
	TypeTweet   BookmarkType = "tweet"
	TypeNote    BookmarkType = "note"
)

// ParseBookmarkType parses a type string. Unknown values return ok=false;
// callers at the HTTP boundary drop them silently rather than erroring.
func ParseBookmarkType(s string) (BookmarkType, bool) {
	switch BookmarkType(s) {
	case TypePage, TypeArticle, TypeVideo, TypeYouTube, TypeProduct,
		TypeImage, TypePDF, TypeTweet, TypeNote:
		return BookmarkType(s), true
	}
	return "", false
}

// BookmarkStatus tracks where a bookmark is in the ingestion pipeline.
// Only ready bookmarks are eligible for search results.
type BookmarkStatus string

// Bookmark processing statuses.
const (
	StatusPending BookmarkStatus = "pending"
	StatusReady   BookmarkStatus = "ready"
	StatusFailed  BookmarkStatus = "failed"
)

// Bookmark represents a saved URL with the metadata the ingestion pipeline
// produced for it. The search engine treats bookmarks as read-only; the
// mutation service owns writes.
//
// IDs are time-prefixed (see internal/id) so they sort by creation order,
// which the paginator relies on for stable tie-breaks.
type Bookmark struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	URL          string         `json:"url"`
	Type         BookmarkType   `json:"type"`
	Title        string         `json:"title"`
	Summary      string         `json:"summary,omitempty"`
	Embedding    []float32      `json:"-"` // summary embedding, optional
	PreviewImage string         `json:"preview_image,omitempty"`
	OGImage      string         `json:"og_image,omitempty"`
	Favicon      string         `json:"favicon,omitempty"`
	Status       BookmarkStatus `json:"status"`
	Starred      bool           `json:"starred"`
	Read         bool           `json:"read"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsReady reports whether the bookmark is eligible for search results.
func (b *Bookmark) IsReady() bool {
	return b.Status == StatusReady
}

// HasEmbedding reports whether a summary embedding is stored.
func (b *Bookmark) HasEmbedding() bool {
	return len(b.Embedding) > 0
}

// Touch updates the UpdatedAt timestamp.
func (b *Bookmark) Touch() {
	b.UpdatedAt = time.Now()
}

// SpecialFilter is a status-flag filter on search requests.
type SpecialFilter string

// Special filters.
const (
	FilterRead    SpecialFilter = "READ"
	FilterUnread  SpecialFilter = "UNREAD"
	FilterStarred SpecialFilter = "STAR"
)

// ParseSpecialFilter parses a special filter token.
func ParseSpecialFilter(s string) (SpecialFilter, bool) {
	switch SpecialFilter(s) {
	case FilterRead, FilterUnread, FilterStarred:
		return SpecialFilter(s), true
	}
	return "", false
}
