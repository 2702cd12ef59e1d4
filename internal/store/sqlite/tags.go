package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/id"
	"github.com/marqed/marqed-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `t.id, t.owner_id, t.name, t.origin, t.created_at, t.updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Name,
		&t.Origin,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// FindOrCreateTag returns the owner's tag with the given name, creating it
// if absent. Name lookup is exact and case-sensitive. The bool reports
// whether a new tag was created.
func (s *Store) FindOrCreateTag(ctx context.Context, ownerID, name string, origin domain.TagOrigin) (*domain.Tag, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.owner_id = ? AND t.name = ?`,
		ownerID, name)

	t, err := scanTag(row)
	if err == nil {
		return t, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	now := time.Now()
	t = &domain.Tag{
		ID:        id.MustGenerate("tag"),
		OwnerID:   ownerID,
		Name:      name,
		Origin:    origin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tags (id, owner_id, name, origin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name, string(t.Origin),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		// Lost a race against a concurrent create; re-read the winner.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			row := s.db.QueryRowContext(ctx,
				`SELECT `+tagColumns+` FROM tags t WHERE t.owner_id = ? AND t.name = ?`,
				ownerID, name)
			t, err := scanTag(row)
			if err != nil {
				return nil, false, err
			}
			return t, false, nil
		}
		return nil, false, err
	}
	return t, true, nil
}

// ListTags returns all of the owner's tags ordered by name.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.owner_id = ? ORDER BY t.name ASC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// TagsForBookmark returns the tags attached to a bookmark, ordered by name.
func (s *Store) TagsForBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tagColumns+`
		FROM tags t
		JOIN bookmark_tags bt ON bt.tag_id = t.id
		WHERE bt.bookmark_id = ?
		ORDER BY t.name ASC`,
		bookmarkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// SetBookmarkTags replaces the bookmark's tag set with the given tag ids.
// The swap happens in one transaction so readers never see a half set.
func (s *Store) SetBookmarkTags(ctx context.Context, bookmarkID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookmark_tags WHERE bookmark_id = ?`, bookmarkID); err != nil {
		return err
	}

	now := formatTime(time.Now())
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			bookmarkID, tagID, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

var _ store.Store = (*Store)(nil)
