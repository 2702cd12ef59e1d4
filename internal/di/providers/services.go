package providers

import (
	"github.com/samber/do/v2"

	"github.com/marqed/marqed-server/internal/logger"
	"github.com/marqed/marqed-server/internal/service"
)

// ProvideBookmarkService provides the bookmark mutation service.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	return service.NewBookmarkService(storeHandle.Store, cacheHandle.ResultCache, log.Logger), nil
}
