// Package search runs queries against the loaded index and drives the
// incremental rendering of their results.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docsearch/internal/language"
	"github.com/hyperjump/docsearch/internal/metrics"
	"github.com/hyperjump/docsearch/internal/models"
	"github.com/hyperjump/docsearch/internal/query"
	"github.com/hyperjump/docsearch/internal/ranking"
	"github.com/hyperjump/docsearch/internal/render"
	"github.com/hyperjump/docsearch/internal/searchindex"
)

// Engine holds what every search session shares: the ranker, the renderer
// and the language settings.
type Engine struct {
	ranker        *ranking.Ranker
	renderer      *render.Renderer
	stemmer       language.Stemmer
	stopWords     language.StopWords
	pulseInterval time.Duration
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithStemmer sets the stemmer applied to query terms.
func WithStemmer(s language.Stemmer) Option {
	return func(e *Engine) { e.stemmer = s }
}

// WithStopWords sets the stop-word set.
func WithStopWords(sw language.StopWords) Option {
	return func(e *Engine) { e.stopWords = sw }
}

// WithPulseInterval sets the delay between pulse dot updates.
func WithPulseInterval(d time.Duration) Option {
	return func(e *Engine) { e.pulseInterval = d }
}

// NewEngine creates an engine. Without options it uses the Porter stemmer
// and the English stop words.
func NewEngine(ranker *ranking.Ranker, renderer *render.Renderer, opts ...Option) *Engine {
	e := &Engine{
		ranker:        ranker,
		renderer:      renderer,
		stemmer:       language.Porter{},
		stopWords:     language.EnglishStopWords(),
		pulseInterval: render.DefaultPulseInterval,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tokenize splits q into term lists with the engine's language settings.
func (e *Engine) Tokenize(q string) query.Terms {
	return query.Tokenize(q, e.stemmer, e.stopWords)
}

// NewSession creates a session without an index.
func (e *Engine) NewSession() *Session {
	return &Session{engine: e}
}

// Search runs one query against idx, renders the results into page and
// waits for rendering to finish or ctx to end.
func (e *Engine) Search(ctx context.Context, idx *searchindex.Index, req *models.SearchQuery, page render.Page) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s := e.NewSession()
	defer s.Close()
	s.SetIndex(idx)

	run, err := s.PerformSearch(req.Query, page, WithLimit(req.Limit))
	if err != nil {
		return nil, err
	}
	if err := s.Wait(ctx); err != nil {
		return run, err
	}
	return run, nil
}

// SearchCache runs req against the index held by cache. A query issued while
// the index is still loading is queued on the session and replayed when the
// load completes; ctx bounds both the load and the rendering. A failed load
// returns an error wrapping searchindex.ErrNotLoaded.
func (e *Engine) SearchCache(ctx context.Context, cache *searchindex.Cache, req *models.SearchQuery, page render.Page) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s := e.NewSession()
	defer s.Close()
	s.Attach(cache)

	if _, err := s.PerformSearch(req.Query, page, WithLimit(req.Limit)); err != nil {
		return nil, err
	}
	if !s.HasIndex() {
		idx, err := cache.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", searchindex.ErrNotLoaded, err)
		}
		// A load that finished between Subscribe and Index never notified us.
		if !s.HasIndex() {
			s.SetIndex(idx)
		}
	}
	if err := s.Wait(ctx); err != nil {
		return s.Current(), err
	}
	run := s.Current()
	if run == nil {
		return nil, searchindex.ErrNotLoaded
	}
	return run, nil
}

// NewResponse builds the API response for a finished run.
func NewResponse(run *Run, page *render.CollectPage) *models.SearchResponse {
	resp := &models.SearchResponse{
		Query:     run.Query,
		RunID:     run.ID,
		Title:     page.Title(),
		Status:    page.Status(),
		Total:     run.Total,
		QueryTime: run.Elapsed.Milliseconds(),
		Terms:     run.Terms.SearchTerms,
		Excluded:  run.Terms.Excluded,
	}
	items := page.Items()
	resp.Results = make([]*models.SearchResult, 0, len(items))
	for i, it := range items {
		resp.Results = append(resp.Results, &models.SearchResult{
			Rank:        i + 1,
			Docname:     it.Docname,
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Excerpt:     it.Excerpt,
			ExcerptHTML: it.ExcerptHTML,
			Score:       it.Score,
			Kind:        it.Kind,
		})
	}
	if resp.Terms == nil {
		resp.Terms = []string{}
	}
	return resp
}
