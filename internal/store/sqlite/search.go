package sqlite

import (
	"context"
	"strings"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/store"
)

// The strategy reads below all share the same shape: owner-scoped, ready
// bookmarks only, with the caller's type and special filters appended via
// filterClause. Substring matching uses instr over lowered columns so that
// % and _ in user input stay literal.

// BookmarksByTags returns ready bookmarks carrying at least one of the
// given tag names, each paired with the requested names it matched.
// Tag name matching is exact and case-sensitive.
func (s *Store) BookmarksByTags(ctx context.Context, ownerID string, names []string, f store.Filters) ([]store.TagMatch, error) {
	if len(names) == 0 {
		return nil, nil
	}

	clause, extra := filterClause(f)

	args := make([]any, 0, len(names)+1+len(extra))
	args = append(args, ownerID)
	for _, n := range names {
		args = append(args, n)
	}
	args = append(args, extra...)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookmarkColumns+`, t.name
		FROM bookmarks b
		JOIN bookmark_tags bt ON bt.bookmark_id = b.id
		JOIN tags t ON t.id = bt.tag_id
		WHERE b.owner_id = ? AND b.status = 'ready'
		  AND t.name IN (?`+strings.Repeat(", ?", len(names)-1)+`)`+clause+`
		ORDER BY b.id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// One row per (bookmark, matched tag); fold rows into per-bookmark
	// matches preserving first-seen order.
	var (
		out     []store.TagMatch
		byID    = make(map[string]int)
		tagName string
	)
	for rows.Next() {
		var (
			b         domain.Bookmark
			createdAt string
			updatedAt string
		)
		err := rows.Scan(
			&b.ID, &b.OwnerID, &b.URL, &b.Type, &b.Title, &b.Summary,
			&b.PreviewImage, &b.OGImage, &b.Favicon, &b.Status, &b.Starred,
			&b.Read, &createdAt, &updatedAt, &tagName,
		)
		if err != nil {
			return nil, err
		}
		if b.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}

		if i, ok := byID[b.ID]; ok {
			out[i].MatchedTags = append(out[i].MatchedTags, tagName)
			continue
		}
		bc := b
		byID[b.ID] = len(out)
		out = append(out, store.TagMatch{Bookmark: &bc, MatchedTags: []string{tagName}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BookmarksByDomain returns ready bookmarks whose URL contains the host
// fragment, case-insensitively.
func (s *Store) BookmarksByDomain(ctx context.Context, ownerID, host string, f store.Filters) ([]*domain.Bookmark, error) {
	clause, extra := filterClause(f)

	args := append([]any{ownerID, strings.ToLower(host)}, extra...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks b
		WHERE b.owner_id = ? AND b.status = 'ready'
		  AND instr(lower(b.url), ?) > 0`+clause+`
		ORDER BY b.id`,
		args...)
	if err != nil {
		return nil, err
	}
	return collectBookmarks(rows)
}

// BookmarksByText returns ready bookmarks whose title or summary contains
// the text, case-insensitively. Plain substring; no tokenizing.
func (s *Store) BookmarksByText(ctx context.Context, ownerID, text string, f store.Filters) ([]*domain.Bookmark, error) {
	clause, extra := filterClause(f)

	needle := strings.ToLower(text)
	args := append([]any{ownerID, needle, needle}, extra...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks b
		WHERE b.owner_id = ? AND b.status = 'ready'
		  AND (instr(lower(b.title), ?) > 0 OR instr(lower(b.summary), ?) > 0)`+clause+`
		ORDER BY b.id`,
		args...)
	if err != nil {
		return nil, err
	}
	return collectBookmarks(rows)
}

// BookmarksWithEmbedding returns ready bookmarks that carry a summary
// embedding, with the vector loaded. Similarity scoring happens in the
// caller; SQLite only stores the blobs.
func (s *Store) BookmarksWithEmbedding(ctx context.Context, ownerID string, f store.Filters) ([]*domain.Bookmark, error) {
	clause, extra := filterClause(f)

	args := append([]any{ownerID}, extra...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookmarkColumns+`, b.embedding
		FROM bookmarks b
		WHERE b.owner_id = ? AND b.status = 'ready'
		  AND b.embedding IS NOT NULL`+clause+`
		ORDER BY b.id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Bookmark
	for rows.Next() {
		var (
			b         domain.Bookmark
			createdAt string
			updatedAt string
			blob      []byte
		)
		err := rows.Scan(
			&b.ID, &b.OwnerID, &b.URL, &b.Type, &b.Title, &b.Summary,
			&b.PreviewImage, &b.OGImage, &b.Favicon, &b.Status, &b.Starred,
			&b.Read, &createdAt, &updatedAt, &blob,
		)
		if err != nil {
			return nil, err
		}
		if b.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		if b.Embedding, err = decodeEmbedding(blob); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentBookmarks returns the newest ready bookmarks, newest first. Ids
// are time-prefixed, so id order is creation order. A non-empty afterID
// seeks strictly past that id.
func (s *Store) RecentBookmarks(ctx context.Context, ownerID string, f store.Filters, afterID string, limit int) ([]*domain.Bookmark, error) {
	clause, extra := filterClause(f)

	seek := ""
	args := append([]any{ownerID}, extra...)
	if afterID != "" {
		seek = " AND b.id < ?"
		args = append(args, afterID)
	}
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks b
		WHERE b.owner_id = ? AND b.status = 'ready'`+clause+seek+`
		ORDER BY b.id DESC
		LIMIT ?`,
		args...)
	if err != nil {
		return nil, err
	}
	return collectBookmarks(rows)
}
