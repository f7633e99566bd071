package watcher

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docsearch/internal/searchindex"
	"github.com/hyperjump/docsearch/internal/storage"
)

// Reloader keeps the index cache and the page cache in step with a
// documentation build directory.
type Reloader struct {
	cache   *searchindex.Cache
	store   storage.Storage
	urlRoot string
	logger  *zap.Logger
}

// NewReloader creates a Reloader. store may be nil when pages are not cached.
// urlRoot is the prefix cached page URLs carry.
func NewReloader(cache *searchindex.Cache, store storage.Storage, urlRoot string, logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{cache: cache, store: store, urlRoot: urlRoot, logger: logger}
}

// ReloadIndex reloads the index. On success, cached pages fetched before the
// new index are dropped since a rebuild rewrites them together. On failure
// the previous index stays in use.
func (r *Reloader) ReloadIndex(ctx context.Context) error {
	idx, err := r.cache.Reload(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("search index reloaded", zap.Int("documents", idx.DocCount()))
	if r.store == nil {
		return nil
	}
	n, err := r.store.PurgeBefore(ctx, r.cache.LoadedAt())
	if err != nil {
		r.logger.Warn("page cache purge failed", zap.Error(err))
		return nil
	}
	if n > 0 {
		r.logger.Debug("purged cached pages", zap.Int64("pages", n))
	}
	return nil
}

// InvalidatePage drops the cached copy of the file at p under docsDir.
func (r *Reloader) InvalidatePage(ctx context.Context, docsDir, p string) {
	if r.store == nil {
		return
	}
	for _, url := range PageURLs(r.urlRoot, docsDir, p) {
		if err := r.store.DeletePage(ctx, url); err != nil {
			r.logger.Warn("page cache delete failed", zap.String("url", url), zap.Error(err))
		}
	}
}

// PageURLs returns the URLs a file under docsDir is fetched by. An index.html
// is also reachable through its directory URL.
func PageURLs(urlRoot, docsDir, p string) []string {
	rel, err := filepath.Rel(docsDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)
	if urlRoot == "" {
		urlRoot = "/"
	}
	if !strings.HasSuffix(urlRoot, "/") {
		urlRoot += "/"
	}
	urls := []string{urlRoot + rel}
	if path.Base(rel) == "index.html" {
		dir := strings.TrimSuffix(rel, "index.html")
		urls = append(urls, urlRoot+dir)
	}
	return urls
}

// WatchOptions selects what Watch follows.
type WatchOptions struct {
	// IndexPath is the searchindex.js file; empty skips index reloads.
	IndexPath string
	// DocsDir is the built HTML directory; empty skips page invalidation.
	DocsDir  string
	Debounce time.Duration
}

// Watch starts watchers for the index file and the docs directory. Stop the
// returned watchers, or cancel ctx, to end watching.
func (r *Reloader) Watch(ctx context.Context, opts WatchOptions) ([]*Watcher, error) {
	var watchers []*Watcher
	stopAll := func() {
		for _, w := range watchers {
			w.Stop()
		}
	}

	if opts.IndexPath != "" {
		w := NewWatcher([]string{filepath.Dir(opts.IndexPath)}, MatchFiles(opts.IndexPath),
			func(string) {
				if err := r.ReloadIndex(ctx); err != nil {
					r.logger.Warn("search index reload failed", zap.Error(err))
				}
			}, nil,
			WithDebounce(opts.Debounce), WithLogger(r.logger))
		if err := w.Start(ctx); err != nil {
			return nil, err
		}
		watchers = append(watchers, w)
	}

	if opts.DocsDir != "" {
		invalidate := func(p string) { r.InvalidatePage(ctx, opts.DocsDir, p) }
		w := NewWatcher([]string{opts.DocsDir}, MatchExtensions(".html"), invalidate, invalidate,
			WithRecursive(), WithDebounce(opts.Debounce), WithLogger(r.logger))
		if err := w.Start(ctx); err != nil {
			stopAll()
			return nil, err
		}
		watchers = append(watchers, w)
	}
	return watchers, nil
}
