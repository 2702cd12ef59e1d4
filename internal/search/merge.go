package search

import (
	"math"
	"slices"
	"sort"

	"github.com/marqed/marqed-server/internal/domain"
)

// Item is one ranked result row after merging.
type Item struct {
	Bookmark    *domain.Bookmark
	Score       float64
	MatchType   MatchType
	MatchedTags []string
}

// Merge folds the unioned candidate sets into one row per bookmark id.
// The highest base score wins the match-type label; matched tags are the
// union across strategies; the engagement boost is added once per
// bookmark. Recent rows never take the boost: a bare listing is ordered
// by recency alone, and a nonzero score would also break the keyset
// cursor, which seeks recents by id at score zero. Output is sorted by
// (score desc, id desc): the id tie-break keeps ordering deterministic
// since fixed base scores tie often.
func Merge(candidates []Candidate, openCounts map[string]int64) []Item {
	byID := make(map[string]int, len(candidates))
	var items []Item

	for _, c := range candidates {
		i, ok := byID[c.Bookmark.ID]
		if !ok {
			byID[c.Bookmark.ID] = len(items)
			items = append(items, Item{
				Bookmark:    c.Bookmark,
				Score:       c.BaseScore,
				MatchType:   c.Strategy,
				MatchedTags: slices.Clone(c.MatchedTags),
			})
			continue
		}

		if c.BaseScore > items[i].Score {
			items[i].Score = c.BaseScore
			items[i].MatchType = c.Strategy
		}
		for _, tag := range c.MatchedTags {
			if !slices.Contains(items[i].MatchedTags, tag) {
				items[i].MatchedTags = append(items[i].MatchedTags, tag)
			}
		}
	}

	for i := range items {
		if items[i].MatchType == MatchRecent {
			continue
		}
		if n := openCounts[items[i].Bookmark.ID]; n > 0 {
			items[i].Score += math.Log(float64(n)+1) * engagementWeight
		}
	}

	sort.Slice(items, func(a, b int) bool {
		if items[a].Score != items[b].Score {
			return items[a].Score > items[b].Score
		}
		return items[a].Bookmark.ID > items[b].Bookmark.ID
	})
	return items
}
