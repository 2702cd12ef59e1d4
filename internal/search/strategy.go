package search

import (
	"context"
	"strings"

	"github.com/marqed/marqed-server/internal/store"
)

// Strategy is one independent retrieval method. Active reports whether
// the request triggers it; Run produces its candidate set. Strategies
// never see each other's output; the merger reconciles overlaps.
type Strategy interface {
	Name() string
	Active(r *Request) bool
	Run(ctx context.Context, r *Request) ([]Candidate, error)
}

// TagStrategy matches bookmarks by exact, case-sensitive tag name. Score
// is proportional to the fraction of requested tags the bookmark carries.
type TagStrategy struct {
	reader store.Reader
}

func NewTagStrategy(reader store.Reader) *TagStrategy {
	return &TagStrategy{reader: reader}
}

func (s *TagStrategy) Name() string { return string(MatchTag) }

func (s *TagStrategy) Active(r *Request) bool { return len(r.Tags) > 0 }

func (s *TagStrategy) Run(ctx context.Context, r *Request) ([]Candidate, error) {
	matches, err := s.reader.BookmarksByTags(ctx, r.OwnerID, r.Tags, r.Filters())
	if err != nil {
		return nil, err
	}

	requested := float64(len(r.Tags))
	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, Candidate{
			Bookmark:    m.Bookmark,
			Strategy:    MatchTag,
			BaseScore:   tagWeight * float64(len(m.MatchedTags)) / requested,
			MatchedTags: m.MatchedTags,
		})
	}
	return out, nil
}

// DomainStrategy matches bookmarks whose URL contains a hostname-like
// token from the query, case-insensitively. Lets "github.com" pull every
// bookmark from that site.
type DomainStrategy struct {
	reader store.Reader
}

func NewDomainStrategy(reader store.Reader) *DomainStrategy {
	return &DomainStrategy{reader: reader}
}

func (s *DomainStrategy) Name() string { return string(MatchDomain) }

func (s *DomainStrategy) Active(r *Request) bool { return hostToken(r.Query) != "" }

func (s *DomainStrategy) Run(ctx context.Context, r *Request) ([]Candidate, error) {
	host := hostToken(r.Query)
	if host == "" {
		return nil, nil
	}
	bookmarks, err := s.reader.BookmarksByDomain(ctx, r.OwnerID, host, r.Filters())
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, Candidate{Bookmark: b, Strategy: MatchDomain, BaseScore: domainScore})
	}
	return out, nil
}

// hostToken extracts the first hostname-like token from a query, lowered.
// A token qualifies when it has an interior dot between label characters,
// e.g. "github.com" or "blog.example.co.uk". URLs pasted whole qualify
// via their host part.
func hostToken(query string) string {
	for _, tok := range strings.Fields(query) {
		tok = strings.TrimPrefix(tok, "https://")
		tok = strings.TrimPrefix(tok, "http://")
		if i := strings.IndexAny(tok, "/?#"); i >= 0 {
			tok = tok[:i]
		}
		if isHostLike(tok) {
			return strings.ToLower(tok)
		}
	}
	return ""
}

func isHostLike(tok string) bool {
	dot := strings.IndexByte(tok, '.')
	if dot <= 0 || dot == len(tok)-1 {
		return false
	}
	for _, c := range tok {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '-':
		default:
			return false
		}
	}
	// Reject bare decimals like "3.14"; a host needs a letter somewhere.
	return strings.IndexFunc(tok, func(c rune) bool {
		return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	}) >= 0
}

// LexicalStrategy matches bookmarks whose title or summary contains the
// query as a case-insensitive substring. No stemming. The fallback that
// keeps keyword queries working without tags or embeddings.
type LexicalStrategy struct {
	reader store.Reader
}

func NewLexicalStrategy(reader store.Reader) *LexicalStrategy {
	return &LexicalStrategy{reader: reader}
}

func (s *LexicalStrategy) Name() string { return string(MatchLexical) }

func (s *LexicalStrategy) Active(r *Request) bool { return r.Query != "" }

func (s *LexicalStrategy) Run(ctx context.Context, r *Request) ([]Candidate, error) {
	bookmarks, err := s.reader.BookmarksByText(ctx, r.OwnerID, r.Query, r.Filters())
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, Candidate{Bookmark: b, Strategy: MatchLexical, BaseScore: lexicalScore})
	}
	return out, nil
}

// RecentsStrategy backs a bare listing request: the newest ready
// bookmarks, id order standing in for recency. Base score zero so the
// paginator's id tie-break produces newest-first.
type RecentsStrategy struct {
	reader store.Reader
}

func NewRecentsStrategy(reader store.Reader) *RecentsStrategy {
	return &RecentsStrategy{reader: reader}
}

func (s *RecentsStrategy) Name() string { return string(MatchRecent) }

// Active is the inverse of every other strategy: it runs only when
// nothing else would.
func (s *RecentsStrategy) Active(r *Request) bool {
	return r.Query == "" && len(r.Tags) == 0
}

func (s *RecentsStrategy) Run(ctx context.Context, r *Request) ([]Candidate, error) {
	// Seek past the cursor in the store and fetch one row beyond the
	// page so the paginator can set hasMore.
	afterID := ""
	if r.After != nil {
		afterID = r.After.ID
	}
	bookmarks, err := s.reader.RecentBookmarks(ctx, r.OwnerID, r.Filters(), afterID, r.Limit+1)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, Candidate{Bookmark: b, Strategy: MatchRecent})
	}
	return out, nil
}
