package search

import "github.com/marqed/marqed-server/internal/domain"

// MatchType labels which strategy a result item is attributed to. When a
// bookmark qualifies under several strategies, the highest base score
// wins the label.
type MatchType string

// Match types.
const (
	MatchTag      MatchType = "tag"
	MatchDomain   MatchType = "domain"
	MatchLexical  MatchType = "lexical"
	MatchSemantic MatchType = "semantic"
	MatchRecent   MatchType = "recent"
)

// Strategy weights. Tags represent explicit curation and rank highest;
// the semantic score scales within [0, vectorWeight) by closeness; the
// deterministic domain and lexical strategies use fixed scores below tag.
const (
	tagWeight    = 100.0
	vectorWeight = 80.0
	domainScore  = 60.0
	lexicalScore = 40.0

	engagementWeight = 10.0
)

// Candidate is one strategy's claim on a bookmark before merging.
type Candidate struct {
	Bookmark    *domain.Bookmark
	Strategy    MatchType
	BaseScore   float64
	MatchedTags []string
}
