package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/store"
)

// bookmarkColumns is the ordered list of columns selected in bookmark
// queries. Must match the scan order in scanBookmark. The embedding blob
// is excluded; only BookmarksWithEmbedding pays to load it.
const bookmarkColumns = `b.id, b.owner_id, b.url, b.type, b.title, b.summary,
	b.preview_image, b.og_image, b.favicon, b.status, b.starred, b.is_read,
	b.created_at, b.updated_at`

// scanBookmark scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Bookmark. The embedding is left nil.
func scanBookmark(scanner interface{ Scan(dest ...any) error }) (*domain.Bookmark, error) {
	var b domain.Bookmark

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.OwnerID,
		&b.URL,
		&b.Type,
		&b.Title,
		&b.Summary,
		&b.PreviewImage,
		&b.OGImage,
		&b.Favicon,
		&b.Status,
		&b.Starred,
		&b.Read,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// collectBookmarks drains a result set of bookmarkColumns rows.
func collectBookmarks(rows *sql.Rows) ([]*domain.Bookmark, error) {
	defer rows.Close()

	var out []*domain.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBookmark inserts a new bookmark.
// Returns store.ErrAlreadyExists on duplicate id.
func (s *Store) CreateBookmark(ctx context.Context, b *domain.Bookmark) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (
			id, owner_id, url, type, title, summary, embedding,
			preview_image, og_image, favicon, status, starred, is_read,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.OwnerID,
		b.URL,
		string(b.Type),
		b.Title,
		b.Summary,
		encodeEmbedding(b.Embedding),
		b.PreviewImage,
		b.OGImage,
		b.Favicon,
		string(b.Status),
		b.Starred,
		b.Read,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateBookmark rewrites a bookmark row in place.
// Returns store.ErrBookmarkNotFound if the owner has no such bookmark.
func (s *Store) UpdateBookmark(ctx context.Context, b *domain.Bookmark) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookmarks SET
			url = ?, type = ?, title = ?, summary = ?, embedding = ?,
			preview_image = ?, og_image = ?, favicon = ?, status = ?,
			starred = ?, is_read = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		b.URL,
		string(b.Type),
		b.Title,
		b.Summary,
		encodeEmbedding(b.Embedding),
		b.PreviewImage,
		b.OGImage,
		b.Favicon,
		string(b.Status),
		b.Starred,
		b.Read,
		formatTime(b.UpdatedAt),
		b.ID,
		b.OwnerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrBookmarkNotFound
	}
	return nil
}

// DeleteBookmark removes a bookmark. Join rows cascade.
// Returns store.ErrBookmarkNotFound if the owner has no such bookmark.
func (s *Store) DeleteBookmark(ctx context.Context, ownerID, bookmarkID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = ? AND owner_id = ?`,
		bookmarkID, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrBookmarkNotFound
	}
	return nil
}

// GetBookmark retrieves a bookmark by id, scoped to its owner, with the
// embedding loaded.
// Returns store.ErrBookmarkNotFound if the owner has no such bookmark.
func (s *Store) GetBookmark(ctx context.Context, ownerID, bookmarkID string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+`, b.embedding
		 FROM bookmarks b WHERE b.id = ? AND b.owner_id = ?`,
		bookmarkID, ownerID)

	var (
		b         domain.Bookmark
		createdAt string
		updatedAt string
		blob      []byte
	)
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.URL, &b.Type, &b.Title, &b.Summary,
		&b.PreviewImage, &b.OGImage, &b.Favicon, &b.Status, &b.Starred,
		&b.Read, &createdAt, &updatedAt, &blob,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrBookmarkNotFound
	}
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
	return &b, nil
}
