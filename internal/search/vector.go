package search

import (
	"context"
	"math"

	"github.com/marqed/marqed-server/internal/embedding"
	"github.com/marqed/marqed-server/internal/store"
)

// VectorStrategy surfaces conceptually related bookmarks by embedding the
// query and comparing it to stored summary embeddings by cosine distance.
// A bookmark qualifies only when the distance is within the request's
// matching distance; closer matches score higher.
type VectorStrategy struct {
	reader   store.Reader
	embedder embedding.Client
}

func NewVectorStrategy(reader store.Reader, embedder embedding.Client) *VectorStrategy {
	return &VectorStrategy{reader: reader, embedder: embedder}
}

func (s *VectorStrategy) Name() string { return string(MatchSemantic) }

func (s *VectorStrategy) Active(r *Request) bool { return r.Query != "" }

func (s *VectorStrategy) Run(ctx context.Context, r *Request) ([]Candidate, error) {
	queryVec, err := s.embedder.Embed(ctx, r.Query)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.reader.BookmarksWithEmbedding(ctx, r.OwnerID, r.Filters())
	if err != nil {
		return nil, err
	}

	tolerance := r.MatchingDistance
	var out []Candidate
	for _, b := range bookmarks {
		dist := cosineDistance(queryVec, b.Embedding)
		if dist > tolerance {
			continue
		}
		out = append(out, Candidate{
			Bookmark:  b,
			Strategy:  MatchSemantic,
			BaseScore: vectorWeight * (1 - dist/tolerance),
		})
	}
	return out, nil
}

// cosineDistance is 1 - cosine similarity, ranging 0 (identical) to 2
// (opposite). Mismatched or zero vectors count as maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 2
	}
	return 1 - dot/denom
}
