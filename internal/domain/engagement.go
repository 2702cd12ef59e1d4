package domain

import "time"

// EngagementEvent is one "bookmark opened" action. The log is append-only;
// the search engine only ever reads aggregate counts from it.
type EngagementEvent struct {
	OwnerID    string    `json:"owner_id"`
	BookmarkID string    `json:"bookmark_id"`
	OpenedAt   time.Time `json:"opened_at"`
}
