package domain

import "time"

// TagOrigin records who attached a tag: the user directly, or the
// AI tagging step of the ingestion pipeline.
type TagOrigin string

// Tag origins.
const (
	OriginUser TagOrigin = "user"
	OriginAI   TagOrigin = "ai"
)

// Tag is a per-owner label. Names are unique per owner and matched
// case-sensitively by the tag strategy; "Go" and "go" are distinct tags.
type Tag struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Origin    TagOrigin `json:"origin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// BookmarkTag is the join row between bookmarks and tags.
type BookmarkTag struct {
	BookmarkID string    `json:"bookmark_id"`
	TagID      string    `json:"tag_id"`
	CreatedAt  time.Time `json:"created_at"`
}
