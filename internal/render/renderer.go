package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/docsearch/internal/metrics"
	"github.com/hyperjump/docsearch/internal/query"
	"github.com/hyperjump/docsearch/internal/ranking"
)

// DefaultItemInterval is the pause between two rendered items.
const DefaultItemInterval = 5 * time.Millisecond

// Renderer appends ranked results to a page one at a time.
type Renderer struct {
	opts     Options
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithFetcher sets the fetcher used for excerpts.
func WithFetcher(f Fetcher) RendererOption {
	return func(r *Renderer) { r.fetcher = f }
}

// WithItemInterval sets the pause between items. Zero or less disables pacing.
func WithItemInterval(d time.Duration) RendererOption {
	return func(r *Renderer) { r.interval = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) RendererOption {
	return func(r *Renderer) { r.metrics = m }
}

// NewRenderer creates a Renderer for the given site layout.
func NewRenderer(opts Options, options ...RendererOption) *Renderer {
	r := &Renderer{
		opts:     opts,
		interval: DefaultItemInterval,
		logger:   zap.NewNop(),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Options returns the site layout.
func (r *Renderer) Options() Options {
	return r.opts
}

// Run pops every result off stack and appends it to page, pausing between
// items. When the stack is empty it stops pulse (which may be nil) and
// finishes the page with the result count. A cancelled ctx stops the run
// without finishing the page.
func (r *Renderer) Run(ctx context.Context, page Page, stack *ranking.Stack, terms query.Terms, pulse *Pulse) error {
	total := stack.Total()
	limit := rate.Inf
	if r.interval > 0 {
		limit = rate.Every(r.interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	highlightString := terms.HighlightString()

	for {
		res, ok := stack.Pop()
		if !ok {
			break
		}
		item := r.BuildItem(ctx, res, highlightString, terms)
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := page.AppendItem(item); err != nil {
			return fmt.Errorf("failed to append item: %w", err)
		}
		r.metrics.ItemRendered(item.Kind)
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if pulse != nil {
		pulse.Stop()
	}
	return page.Finish(HeadingResults, StatusMessage(total))
}

// BuildItem resolves the result's link and attaches its description, or an
// excerpt of the fetched document when the site has sources. Fetch failures
// leave a title-only item.
func (r *Renderer) BuildItem(ctx context.Context, res ranking.Result, highlightString string, terms query.Terms) Item {
	requestURL, linkURL := r.opts.URLs(res.Docname)
	item := Item{
		Docname: res.Docname,
		Title:   res.Title,
		Link:    linkURL + highlightString + res.Anchor,
		Score:   res.Score,
		Kind:    KindTitle,
	}

	switch {
	case res.HasDescription():
		item.Description = res.Description
		item.Kind = KindDescription
	case r.opts.HasSource && r.fetcher != nil:
		body, err := r.fetcher.Fetch(ctx, requestURL)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				r.metrics.FetchError()
				r.logger.Warn("excerpt fetch failed", zap.String("url", requestURL), zap.Error(err))
			}
			return item
		}
		if body == "" {
			return item
		}
		summary := MakeSummary(body, terms.SearchTerms, terms.HlTerms, r.logger)
		item.Excerpt = summary.Text
		item.ExcerptHTML = summary.HTML()
		item.summary = summary.Node
		item.Kind = KindExcerpt
	}
	return item
}

// StatusMessage returns the final status line for n results.
func StatusMessage(n int) string {
	if n == 0 {
		return NoResultsMessage
	}
	return fmt.Sprintf("Search finished, found %d page(s) matching the search query.", n)
}
