package search

import "github.com/marqed/marqed-server/internal/domain"

// Result is one page of ranked bookmarks.
type Result struct {
	Items      []Item
	HasMore    bool
	NextCursor string
}

// Paginate slices the sorted merged items into a page. With a cursor,
// only items strictly after (Score, ID) in sort order are eligible, so a
// bookmark inserted between page requests can never push an already-seen
// item back into view.
func Paginate(items []Item, limit int, after *Cursor) Result {
	if after != nil {
		eligible := items[:0:0]
		for _, it := range items {
			if afterCursor(it, after) {
				eligible = append(eligible, it)
			}
		}
		items = eligible
	}

	res := Result{}
	if len(items) > limit {
		res.Items = items[:limit]
		res.HasMore = true
		last := res.Items[len(res.Items)-1]
		res.NextCursor = Cursor{Score: last.Score, ID: last.Bookmark.ID}.Encode()
	} else {
		res.Items = items
	}
	return res
}

// afterCursor reports whether the item sorts strictly after the cursor
// position, i.e. (score, id) < (cursor.score, cursor.id) in descending
// sort order.
func afterCursor(it Item, c *Cursor) bool {
	if it.Score != c.Score {
		return it.Score < c.Score
	}
	return it.Bookmark.ID < c.ID
}

// Bookmarks returns just the bookmarks of a page, in order.
func (r Result) Bookmarks() []*domain.Bookmark {
	out := make([]*domain.Bookmark, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Bookmark
	}
	return out
}
