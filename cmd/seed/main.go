// Package main provides a tool to seed the database with sample bookmarks.
//
// It creates ready bookmarks with tags and open events for one owner, and
// prints an access token for exercising the API against the seeded data.
// When the embedding service is reachable, summaries are embedded so
// semantic search has something to work with.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/Marqed/data
//	go run ./cmd/seed --data-path ~/Marqed/data --owner usr_demo
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/marqed/marqed-server/internal/auth"
	"github.com/marqed/marqed-server/internal/domain"
	"github.com/marqed/marqed-server/internal/embedding"
	"github.com/marqed/marqed-server/internal/id"
	"github.com/marqed/marqed-server/internal/store"
	"github.com/marqed/marqed-server/internal/store/sqlite"
)

var (
	dataPath      = flag.String("data-path", "", "Base data directory (default: ~/Marqed/data)")
	ownerID       = flag.String("owner", "usr_demo", "Owner ID to seed bookmarks for")
	embedEndpoint = flag.String("embedding-endpoint", "http://localhost:11434", "Embedding service base URL")
	embedModel    = flag.String("embedding-model", "nomic-embed-text", "Embedding model name")
)

type sample struct {
	url     string
	typ     domain.BookmarkType
	title   string
	summary string
	tags    []string
	starred bool
	opens   int
}

var samples = []sample{
	{
		url:     "https://go.dev/blog/error-handling-and-go",
		typ:     domain.TypeArticle,
		title:   "Error handling and Go",
		summary: "How Go programs represent, wrap, and inspect errors using the errors package.",
		tags:    []string{"go", "errors"},
		opens:   5,
	},
	{
		url:     "https://go.dev/doc/effective_go",
		typ:     domain.TypeArticle,
		title:   "Effective Go",
		summary: "Tips for writing clear, idiomatic Go code: formatting, naming, control structures, concurrency.",
		tags:    []string{"go", "reference"},
		starred: true,
		opens:   12,
	},
	{
		url:     "https://sqlite.org/wal.html",
		typ:     domain.TypePage,
		title:   "Write-Ahead Logging",
		summary: "SQLite write-ahead log mode: concurrency benefits, checkpointing, and tradeoffs.",
		tags:    []string{"sqlite", "databases"},
		opens:   2,
	},
	{
		url:     "https://www.youtube.com/watch?v=f6kdp27TYZs",
		typ:     domain.TypeYouTube,
		title:   "Go Concurrency Patterns",
		summary: "Rob Pike's talk on goroutines, channels, and composing concurrent programs.",
		tags:    []string{"go", "concurrency", "talks"},
		opens:   8,
	},
	{
		url:     "https://dgraph.io/docs/badger/",
		typ:     domain.TypePage,
		title:   "BadgerDB documentation",
		summary: "Embeddable key-value store in pure Go with TTL support and fast prefix scans.",
		tags:    []string{"databases", "go"},
	},
	{
		url:     "https://arxiv.org/abs/2005.11401",
		typ:     domain.TypePDF,
		title:   "Retrieval-Augmented Generation",
		summary: "Combining dense retrieval over embeddings with sequence generation for knowledge tasks.",
		tags:    []string{"ml", "papers"},
		opens:   1,
	},
}

func main() {
	flag.Parse()

	base := *dataPath
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		base = filepath.Join(home, "Marqed", "data")
	}

	if err := os.MkdirAll(base, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(base, "marqed.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	st, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	embedder := embedding.NewOllamaClient(*embedEndpoint, *embedModel, 10*time.Second)
	embedderUp := embedder.IsHealthy(ctx)
	if !embedderUp {
		fmt.Println("Embedding service unreachable, seeding without embeddings")
	}

	for _, smp := range samples {
		if err := seedBookmark(ctx, st, embedder, embedderUp, smp); err != nil {
			log.Fatalf("Failed to seed %s: %v", smp.url, err)
		}
		// Ids order by millisecond; keep creation times distinct.
		time.Sleep(2 * time.Millisecond)
	}

	fmt.Printf("Seeded %d bookmarks for owner %s\n", len(samples), *ownerID)

	printToken(base)
}

func seedBookmark(ctx context.Context, st store.Store, embedder embedding.Client, embedderUp bool, smp sample) error {
	now := time.Now()
	b := &domain.Bookmark{
		ID:        id.MustGenerate("bmk"),
		OwnerID:   *ownerID,
		URL:       smp.url,
		Type:      smp.typ,
		Title:     smp.title,
		Summary:   smp.summary,
		Status:    domain.StatusReady,
		Starred:   smp.starred,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if embedderUp && smp.summary != "" {
		vec, err := embedder.Embed(ctx, smp.summary)
		if err != nil {
			fmt.Printf("Embed failed for %s: %v\n", smp.url, err)
		} else {
			b.Embedding = vec
		}
	}

	if err := st.CreateBookmark(ctx, b); err != nil {
		return err
	}

	tagIDs := make([]string, 0, len(smp.tags))
	for _, name := range smp.tags {
		tag, _, err := st.FindOrCreateTag(ctx, *ownerID, name, domain.OriginUser)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if len(tagIDs) > 0 {
		if err := st.SetBookmarkTags(ctx, b.ID, tagIDs); err != nil {
			return err
		}
	}

	for range smp.opens {
		if err := st.RecordEngagement(ctx, &domain.EngagementEvent{
			OwnerID:    *ownerID,
			BookmarkID: b.ID,
			OpenedAt:   time.Now(),
		}); err != nil {
			return err
		}
	}

	return nil
}

// printToken issues a long-lived access token for the seeded owner so the
// API can be exercised by hand.
func printToken(base string) {
	key, err := auth.LoadOrGenerateKey(base)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}

	tokens, err := auth.NewTokenService(key)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	token, err := tokens.IssueAccessToken(*ownerID, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("\nAccess token for %s (valid 24h):\n%s\n", *ownerID, token)
}
