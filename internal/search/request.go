// Package search implements the bookmark search engine: four retrieval
// strategies, engagement boosting, merge/dedupe, and keyset pagination.
// The service layer composes these with the result cache.
package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/errors"
	"github.com/marqed/marqed-server/internal/store"
)

// Limit bounds for a single page.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 20
)

// DefaultMatchingDistance is the vector tolerance applied when the caller
// does not supply one. Cosine distance, so the valid range is (0, 2].
const DefaultMatchingDistance = 0.5

// Request is a normalized search request. Build one from boundary input,
// then call Normalize before use.
type Request struct {
	OwnerID          string
	Query            string
	Tags             []string
	Types            []domain.BookmarkType
	Special          []domain.SpecialFilter
	Limit            int
	Cursor           string
	MatchingDistance float64

	// After is the decoded Cursor, populated by the facade after
	// validation. Strategies and the paginator read it; the signature
	// uses the raw token.
	After *Cursor
}

// Normalize trims the query, deduplicates the filter lists, and fills
// defaults for limit and matching distance. Idempotent.
func (r *Request) Normalize() {
	r.Query = strings.TrimSpace(r.Query)

	r.Tags = dedupe(r.Tags)
	r.Types = dedupe(r.Types)
	r.Special = dedupe(r.Special)

	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.MatchingDistance == 0 {
		r.MatchingDistance = DefaultMatchingDistance
	}
}

// Validate rejects out-of-bounds parameters. Callers normalize first, so
// defaults are already in place.
func (r *Request) Validate() error {
	if r.OwnerID == "" {
		return errors.Validation("owner id is required")
	}
	if r.Limit < MinLimit || r.Limit > MaxLimit {
		return errors.Validationf("limit must be between %d and %d", MinLimit, MaxLimit)
	}
	if r.MatchingDistance <= 0 || r.MatchingDistance > 2 {
		return errors.Validation("matchingDistance must be in (0, 2]")
	}
	return nil
}

// Signature returns a stable cache key component for the request. Filter
// lists are sorted so that order of arrival does not split cache entries.
// The owner id stays out of the hash; cache keys carry it as a prefix for
// per-owner invalidation.
func (r *Request) Signature() string {
	tags := slices.Clone(r.Tags)
	slices.Sort(tags)
	types := slices.Clone(r.Types)
	slices.Sort(types)
	special := slices.Clone(r.Special)
	slices.Sort(special)

	var sb strings.Builder
	sb.WriteString("q=" + r.Query)
	sb.WriteString("|t=" + strings.Join(tags, ","))
	for _, t := range types {
		sb.WriteString("|y=" + string(t))
	}
	for _, sp := range special {
		sb.WriteString("|s=" + string(sp))
	}
	fmt.Fprintf(&sb, "|c=%s|d=%g|l=%d", r.Cursor, r.MatchingDistance, r.Limit)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Filters returns the store-level narrowing for this request.
func (r *Request) Filters() store.Filters {
	return store.Filters{Types: r.Types, Special: r.Special}
}

func dedupe[T comparable](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
