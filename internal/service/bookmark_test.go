package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/store"
)

func TestBookmarkCreate(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	b, err := f.marks.Create(ctx, "user-1", CreateBookmarkInput{
		URL:   "https://example.com/a",
		Title: "A page",
		Tags:  []string{"go", "db"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, domain.TypePage, b.Type)

	_, tags, err := f.marks.Get(ctx, "user-1", b.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	_, err = f.marks.Create(ctx, "user-1", CreateBookmarkInput{})
	assert.Error(t, err, "url is required")
}

func TestBookmarkUpdatePartial(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	b, err := f.marks.Create(ctx, "user-1", CreateBookmarkInput{URL: "https://example.com/a", Title: "old"})
	require.NoError(t, err)

	starred := true
	got, err := f.marks.Update(ctx, "user-1", b.ID, UpdateBookmarkInput{Starred: &starred})
	require.NoError(t, err)
	assert.True(t, got.Starred)
	assert.Equal(t, "old", got.Title, "unset fields stay untouched")

	title := "new"
	got, err = f.marks.Update(ctx, "user-1", b.ID, UpdateBookmarkInput{
		Title: &title,
		Tags:  []string{"only"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.True(t, got.Starred)

	_, tags, err := f.marks.Get(ctx, "user-1", b.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "only", tags[0].Name)
}

func TestBookmarkDelete(t *testing.T) {
	f := setupSearch(t)
	ctx := context.Background()

	b, err := f.marks.Create(ctx, "user-1", CreateBookmarkInput{URL: "https://example.com/a"})
	require.NoError(t, err)

	require.NoError(t, f.marks.Delete(ctx, "user-1", b.ID))
	_, _, err = f.marks.Get(ctx, "user-1", b.ID)
	assert.ErrorIs(t, err, store.ErrBookmarkNotFound)

	err = f.marks.Delete(ctx, "user-1", b.ID)
	assert.ErrorIs(t, err, store.ErrBookmarkNotFound)
}

func TestRecordOpenUnknownBookmark(t *testing.T) {
	f := setupSearch(t)
	err := f.marks.RecordOpen(context.Background(), "user-1", "bmk-missing")
	assert.ErrorIs(t, err, store.ErrBookmarkNotFound)
}
