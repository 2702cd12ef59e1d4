package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/marqed/marqed-server/internal/config"
	"github.com/marqed/marqed-server/internal/embedding"
	"github.com/marqed/marqed-server/internal/logger"
	"github.com/marqed/marqed-server/internal/search"
	"github.com/marqed/marqed-server/internal/service"
)

// ProvideEmbeddingClient provides the embedding service client.
func ProvideEmbeddingClient(i do.Injector) (embedding.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := embedding.NewOllamaClient(cfg.Embedding.Endpoint, cfg.Embedding.Model, cfg.Embedding.Timeout)

	// The embedder being unreachable is not fatal: vector search degrades
	// and the remaining strategies carry the query.
	if !client.IsHealthy(context.Background()) {
		log.Warn("Embedding service unreachable, semantic search degraded",
			"endpoint", cfg.Embedding.Endpoint,
		)
	}

	return client, nil
}

// Strategies is the ordered strategy set for the search service.
// Order fixes tie-breaking for candidates with equal scores.
type Strategies []search.Strategy

// ProvideStrategies provides the retrieval strategies in priority order.
func ProvideStrategies(i do.Injector) (Strategies, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	embedder := do.MustInvoke[embedding.Client](i)

	return Strategies{
		search.NewTagStrategy(storeHandle.Store),
		search.NewVectorStrategy(storeHandle.Store, embedder),
		search.NewDomainStrategy(storeHandle.Store),
		search.NewLexicalStrategy(storeHandle.Store),
		search.NewRecentsStrategy(storeHandle.Store),
	}, nil
}

// ProvideSearchService provides the search facade.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	strategies := do.MustInvoke[Strategies](i)

	return service.NewSearchService(
		storeHandle.Store,
		cacheHandle.ResultCache,
		strategies,
		cfg.Search.Timeout,
		log.Logger,
	), nil
}
