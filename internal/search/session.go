package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docsearch/internal/query"
	"github.com/hyperjump/docsearch/internal/ranking"
	"github.com/hyperjump/docsearch/internal/render"
	"github.com/hyperjump/docsearch/internal/searchindex"
)

// Run describes one query execution.
type Run struct {
	ID    string
	Query string
	Terms query.Terms
	// Total is the number of matches, rendered or not.
	Total   int
	Elapsed time.Duration
	// Deferred is set when the query waits for the index to load.
	Deferred bool
}

// QueryOption configures a single query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	limit int
}

// WithLimit renders at most n results; n <= 0 renders all.
func WithLimit(n int) QueryOption {
	return func(c *queryConfig) { c.limit = n }
}

type pendingQuery struct {
	id    string
	query string
	page  render.Page
	pulse *render.Pulse
	cfg   queryConfig
	// started is closed once a replay of the query has installed its task.
	started chan struct{}
}

type renderTask struct {
	run    *Run
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Session owns the index reference, the single queued-query slot and the
// current render task for one results page. Create it with Engine.NewSession,
// then give it an index with SetIndex or Attach. Queries issued before an
// index is available are queued; only the last one is kept.
type Session struct {
	engine *Engine

	mu          sync.Mutex
	index       *searchindex.Index
	pending     *pendingQuery
	current     *renderTask
	replaying   chan struct{}
	unsubscribe func()
}

// SetIndex makes idx the session's index and replays a queued query.
func (s *Session) SetIndex(idx *searchindex.Index) {
	s.mu.Lock()
	s.index = idx
	p := s.pending
	s.pending = nil
	if p != nil {
		s.replaying = p.started
	}
	s.mu.Unlock()

	if p == nil {
		return
	}
	if _, err := s.run(p); err != nil {
		s.engine.logger.Warn("queued query failed", zap.String("run_id", p.id), zap.Error(err))
	}
	s.mu.Lock()
	if s.replaying == p.started {
		s.replaying = nil
	}
	s.mu.Unlock()
	close(p.started)
}

// Attach follows cache: the current index, if loaded, is set right away and
// every later load replaces it.
func (s *Session) Attach(cache *searchindex.Cache) {
	unsubscribe := cache.Subscribe(s.SetIndex)
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	if idx, ok := cache.Index(); ok {
		s.SetIndex(idx)
	}
}

// HasIndex reports whether an index is set.
func (s *Session) HasIndex() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index != nil
}

// PerformSearch stops the render of an earlier query, resets page, starts
// the pulse and runs q, or queues it when no index is set yet.
func (s *Session) PerformSearch(q string, page render.Page, opts ...QueryOption) (*Run, error) {
	// The old task may be inside AppendItem; it has to end before the reset.
	s.stopCurrent()
	if err := page.Begin(); err != nil {
		return nil, err
	}
	pulse := render.NewPulse(s.engine.pulseInterval, func(n int) { _ = page.SetDots(n) })
	pulse.Start()

	p := &pendingQuery{id: uuid.NewString(), query: q, page: page, pulse: pulse, started: make(chan struct{})}
	for _, opt := range opts {
		opt(&p.cfg)
	}
	if s.deferQuery(p) {
		return &Run{ID: p.id, Query: q, Deferred: true}, nil
	}
	return s.run(p)
}

// deferQuery queues p when no index is set, replacing a queued query, and
// reports whether it did.
func (s *Session) deferQuery(p *pendingQuery) bool {
	s.mu.Lock()
	if s.index != nil {
		s.mu.Unlock()
		return false
	}
	replaced := s.pending
	s.pending = p
	s.mu.Unlock()

	if replaced != nil && replaced.pulse != nil {
		replaced.pulse.Stop()
	}
	s.engine.metrics.QueryDeferred()
	s.engine.logger.Debug("query deferred until the index loads", zap.String("run_id", p.id), zap.String("query", p.query))
	return true
}

// stopCurrent cancels the current render task and waits for it to end.
func (s *Session) stopCurrent() {
	s.mu.Lock()
	task := s.current
	s.mu.Unlock()
	if task != nil {
		task.cancel()
		<-task.done
	}
}

// Query runs q now against the session's index and starts rendering into
// page. A render still running for an earlier query is cancelled.
func (s *Session) Query(q string, page render.Page, opts ...QueryOption) (*Run, error) {
	p := &pendingQuery{id: uuid.NewString(), query: q, page: page}
	for _, opt := range opts {
		opt(&p.cfg)
	}
	return s.run(p)
}

func (s *Session) run(p *pendingQuery) (*Run, error) {
	e := s.engine

	s.mu.Lock()
	idx := s.index
	if idx == nil {
		s.mu.Unlock()
		return nil, searchindex.ErrNotLoaded
	}
	s.pending = nil
	prev := s.current
	ctx, cancel := context.WithCancel(context.Background())
	task := &renderTask{cancel: cancel, done: make(chan struct{})}
	s.current = task
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	start := time.Now()
	terms := e.Tokenize(p.query)
	if err := p.page.ClearProgress(); err != nil {
		e.logger.Debug("clearing progress failed", zap.String("run_id", p.id), zap.Error(err))
	}
	results := e.ranker.Rank(idx, terms)
	run := &Run{
		ID:      p.id,
		Query:   p.query,
		Terms:   terms,
		Total:   len(results),
		Elapsed: time.Since(start),
	}
	s.mu.Lock()
	task.run = run
	s.mu.Unlock()
	e.metrics.ObserveQuery(run.Elapsed, run.Total)
	e.logger.Debug("query ranked",
		zap.String("run_id", run.ID),
		zap.String("query", run.Query),
		zap.Int("results", run.Total),
		zap.Duration("elapsed", run.Elapsed))

	stack := ranking.NewStack(results).Limit(p.cfg.limit)
	go func() {
		defer close(task.done)
		defer cancel()
		err := e.renderer.Run(ctx, p.page, stack, terms, p.pulse)
		if err != nil {
			if p.pulse != nil {
				p.pulse.Stop()
			}
			if !errors.Is(err, context.Canceled) {
				e.logger.Warn("rendering failed", zap.String("run_id", run.ID), zap.Error(err))
			}
		}
		task.err = err
	}()
	return run, nil
}

// Wait blocks until the current render task ends and returns its error,
// which is context.Canceled when a newer query superseded it. A queued query
// that is being replayed is waited for first.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	replaying := s.replaying
	s.mu.Unlock()
	if replaying != nil {
		select {
		case <-replaying:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	task := s.current
	s.mu.Unlock()
	if task == nil {
		return nil
	}
	select {
	case <-task.done:
		return task.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns the run of the current render task, or nil before the
// first query ran. After a queued query is replayed it describes the replay.
func (s *Session) Current() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.run
}

// Close cancels rendering, drops a queued query and detaches from the cache.
func (s *Session) Close() {
	s.mu.Lock()
	task := s.current
	pending := s.pending
	s.pending = nil
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if pending != nil && pending.pulse != nil {
		pending.pulse.Stop()
	}
	if task != nil {
		task.cancel()
		<-task.done
	}
}
