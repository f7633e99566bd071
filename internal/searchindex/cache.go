package searchindex

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache loads the index once and hands it to everyone waiting for it.
// Concurrent Load calls share one underlying load.
type Cache struct {
	loader   Loader
	logger   *zap.Logger
	observe  func(d time.Duration, err error)
	group    singleflight.Group
	mu       sync.RWMutex
	index    *Index
	loadedAt time.Time
	nextSub  int
	subs     map[int]func(*Index)
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *zap.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// WithLoadObserver registers a callback invoked after every load attempt.
func WithLoadObserver(fn func(d time.Duration, err error)) CacheOption {
	return func(c *Cache) { c.observe = fn }
}

// NewCache creates an empty cache backed by loader.
func NewCache(loader Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader: loader,
		logger: zap.NewNop(),
		subs:   make(map[int]func(*Index)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStaticCache returns a cache that already holds idx.
func NewStaticCache(idx *Index) *Cache {
	c := NewCache(nil)
	c.index = idx
	c.loadedAt = time.Now()
	return c
}

// Load returns the cached index, loading it first if needed.
func (c *Cache) Load(ctx context.Context) (*Index, error) {
	if idx, ok := c.Index(); ok {
		return idx, nil
	}
	return c.load(ctx)
}

// Reload loads the index again and replaces the cached one on success.
// The previous index stays in place when the load fails.
func (c *Cache) Reload(ctx context.Context) (*Index, error) {
	c.group.Forget("index")
	return c.load(ctx)
}

// LoadAsync starts a load in the background. Failures are logged as warnings;
// subscribers are only notified on success.
func (c *Cache) LoadAsync(ctx context.Context) {
	go func() {
		_, _ = c.Load(ctx)
	}()
}

func (c *Cache) load(ctx context.Context) (*Index, error) {
	if c.loader == nil {
		return nil, ErrNotLoaded
	}
	v, err, _ := c.group.Do("index", func() (interface{}, error) {
		start := time.Now()
		idx, err := c.loader.Load(ctx)
		if c.observe != nil {
			c.observe(time.Since(start), err)
		}
		if err != nil {
			c.logger.Warn("search index load failed", zap.String("source", c.loader.Source()), zap.Error(err))
			return nil, err
		}
		c.mu.Lock()
		c.index = idx
		c.loadedAt = time.Now()
		subs := make([]func(*Index), 0, len(c.subs))
		for _, fn := range c.subs {
			subs = append(subs, fn)
		}
		c.mu.Unlock()
		c.logger.Info("search index loaded",
			zap.String("source", c.loader.Source()),
			zap.Int("documents", idx.DocCount()),
			zap.Duration("elapsed", time.Since(start)))
		for _, fn := range subs {
			fn(idx)
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

// Index returns the cached index, if any.
func (c *Cache) Index() (*Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index, c.index != nil
}

// LoadedAt returns when the current index was loaded (zero when not loaded).
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Source describes the index origin.
func (c *Cache) Source() string {
	if c.loader == nil {
		return ""
	}
	return c.loader.Source()
}

// Subscribe registers fn to be called with every newly loaded index.
// The returned function removes the subscription.
func (c *Cache) Subscribe(fn func(*Index)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}
