package sqlite

import (
	"context"
	"strings"

	"github.com/marqed/marqed-server/internal/domain"
)

// RecordEngagement appends one "opened" event to the engagement log.
func (s *Store) RecordEngagement(ctx context.Context, ev *domain.EngagementEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO engagement_events (owner_id, bookmark_id, opened_at)
		VALUES (?, ?, ?)`,
		ev.OwnerID, ev.BookmarkID, formatTime(ev.OpenedAt),
	)
	return err
}

// EngagementCounts returns the number of open events per bookmark id for
// the given ids. Ids with no events are absent from the map.
func (s *Store) EngagementCounts(ctx context.Context, ownerID string, bookmarkIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(bookmarkIDs))
	if len(bookmarkIDs) == 0 {
		return counts, nil
	}

	args := make([]any, 0, len(bookmarkIDs)+1)
	args = append(args, ownerID)
	for _, bid := range bookmarkIDs {
		args = append(args, bid)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT bookmark_id, COUNT(*)
		FROM engagement_events
		WHERE owner_id = ? AND bookmark_id IN (?`+strings.Repeat(", ?", len(bookmarkIDs)-1)+`)
		GROUP BY bookmark_id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bid string
		var n int64
		if err := rows.Scan(&bid, &n); err != nil {
			return nil, err
		}
		counts[bid] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
