package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/marqed/marqed-server/internal/cache"
	"github.com/marqed/marqed-server/internal/config"
	"github.com/marqed/marqed-server/internal/logger"
	"github.com/marqed/marqed-server/internal/store/sqlite"
)

// StoreHandle wraps the sqlite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sqlite bookmark store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "marqed.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the badger result cache with shutdown capability.
type CacheHandle struct {
	*cache.ResultCache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideResultCache provides the search result cache.
func ProvideResultCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cachePath := filepath.Join(cfg.Data.BasePath, "cache")
	rc, err := cache.Open(cachePath, cfg.Cache.TTL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Result cache opened", "path", cachePath, "ttl", cfg.Cache.TTL)

	return &CacheHandle{ResultCache: rc}, nil
}
