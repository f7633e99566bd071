package server

import (
	"context"

	"github.com/hyperjump/docsearch/internal/config"
	"github.com/hyperjump/docsearch/internal/models"
	"github.com/hyperjump/docsearch/internal/searchindex"
	"github.com/hyperjump/docsearch/internal/storage"
)

// CollectStatus describes the index and page cache. store may be nil.
func CollectStatus(ctx context.Context, cache *searchindex.Cache, store storage.Storage, cfg *config.Config, watching bool) *models.StatusResponse {
	status := &models.StatusResponse{
		Index:    models.IndexStatus{Source: cache.Source()},
		Stemmer:  cfg.Language.Stemmer,
		Builder:  cfg.Documentation.Builder,
		Watching: watching,
	}
	if idx, ok := cache.Index(); ok {
		stats := idx.Stats()
		status.Index.Loaded = true
		status.Index.LoadedAt = cache.LoadedAt()
		status.Index.Documents = stats.Documents
		status.Index.Terms = stats.Terms
		status.Index.TitleTerms = stats.TitleTerms
		status.Index.Objects = stats.Objects
		status.Index.ObjTypes = stats.ObjTypes
	}
	if store != nil {
		if n, err := store.CountPages(ctx); err == nil {
			status.CachedPages = n
		}
		if n, err := storage.DiskUsageBytes(storage.DatabaseFiles(cfg.Storage.DatabasePath)...); err == nil {
			status.CacheBytes = n
		}
	}
	return status
}
