package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedItems(n int) []Item {
	// Descending scores with a few ties; ids descend within a tie, so
	// the slice is already in sort order.
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			Bookmark: bmk(fmt.Sprintf("bmk-%03d", n-i)),
			Score:    float64((n - i) / 2),
		}
	}
	return items
}

func TestPaginateFirstPage(t *testing.T) {
	items := rankedItems(7)

	res := Paginate(items, 3, nil)
	require.Len(t, res.Items, 3)
	assert.True(t, res.HasMore)
	require.NotEmpty(t, res.NextCursor)

	c, err := DecodeCursor(res.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, res.Items[2].Bookmark.ID, c.ID)
	assert.Equal(t, res.Items[2].Score, c.Score)
}

func TestPaginateLastPage(t *testing.T) {
	items := rankedItems(3)

	res := Paginate(items, 5, nil)
	assert.Len(t, res.Items, 3)
	assert.False(t, res.HasMore)
	assert.Empty(t, res.NextCursor)
}

func TestPaginateRoundTrip(t *testing.T) {
	items := rankedItems(10)

	first := Paginate(items, 4, nil)
	require.True(t, first.HasMore)
	cursor, err := DecodeCursor(first.NextCursor)
	require.NoError(t, err)

	second := Paginate(items, 4, cursor)
	require.NotEmpty(t, second.Items)

	seen := map[string]bool{}
	for _, it := range first.Items {
		seen[it.Bookmark.ID] = true
	}
	for _, it := range second.Items {
		assert.False(t, seen[it.Bookmark.ID], "item %s reappeared on page two", it.Bookmark.ID)
		assert.True(t, afterCursor(it, cursor))
	}
}

func TestPaginateCursorSurvivesInserts(t *testing.T) {
	items := rankedItems(8)

	first := Paginate(items, 3, nil)
	cursor, err := DecodeCursor(first.NextCursor)
	require.NoError(t, err)

	// A new high-scoring bookmark lands between page requests.
	grown := append([]Item{{Bookmark: bmk("bmk-999"), Score: 1000}}, items...)
	second := Paginate(grown, 3, cursor)

	seen := map[string]bool{}
	for _, it := range first.Items {
		seen[it.Bookmark.ID] = true
	}
	for _, it := range second.Items {
		assert.False(t, seen[it.Bookmark.ID])
		assert.NotEqual(t, "bmk-999", it.Bookmark.ID, "insert must not surface mid-pagination")
	}
}

func TestDecodeCursor(t *testing.T) {
	c, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, c)

	token := Cursor{Score: 42.5, ID: "bmk-7"}.Encode()
	c, err = DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, 42.5, c.Score)
	assert.Equal(t, "bmk-7", c.ID)

	_, err = DecodeCursor("not base64!!!")
	assert.Error(t, err)

	_, err = DecodeCursor("eyJmb28iOiJiYXIifQ") // valid json, no id
	assert.Error(t, err)
}
