// Package di provides dependency injection configuration for the marqed server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/marqed/marqed-server/internal/auth"
	"github.com/marqed/marqed-server/internal/config"
	"github.com/marqed/marqed-server/internal/di/providers"
	"github.com/marqed/marqed-server/internal/embedding"
	"github.com/marqed/marqed-server/internal/logger"
	"github.com/marqed/marqed-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideResultCache)

	// Search layer
	do.Provide(injector, providers.ProvideEmbeddingClient)
	do.Provide(injector, providers.ProvideStrategies)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideBookmarkService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[embedding.Client](injector)
	_ = do.MustInvoke[providers.Strategies](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.BookmarkService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
