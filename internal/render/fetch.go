package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/docsearch/internal/metrics"
	"github.com/hyperjump/docsearch/internal/storage"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Fetcher retrieves the rendered body of a document URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches documents over HTTP. Relative URLs are resolved
// against BaseURL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher with the given request timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch GETs the document.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := f.resolve(rawURL)
	if err != nil {
		return "", err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("fetch %s returned %d", target, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}

func (f *HTTPFetcher) resolve(rawURL string) (string, error) {
	if f.BaseURL == "" {
		return rawURL, nil
	}
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid document url: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// FileFetcher reads documents from a built documentation directory. URLs
// ending in "/" map to their index.html.
type FileFetcher struct {
	Root string
	// StripPrefix is removed from URL paths first, usually the site's URL root.
	StripPrefix string
}

// Fetch reads the file the URL path points to.
func (f *FileFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := f.Path(rawURL)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

// Path maps a document URL to a file under Root. The URL cannot escape Root.
func (f *FileFetcher) Path(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid document url: %w", err)
	}
	p := strings.TrimPrefix(u.Path, f.StripPrefix)
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return filepath.Join(f.Root, filepath.FromSlash(path.Clean("/"+p))), nil
}

// DefaultSharedFetchTimeout bounds a fetch shared by concurrent callers.
const DefaultSharedFetchTimeout = 30 * time.Second

// CachingFetcher keeps fetched bodies in a Storage and collapses concurrent
// fetches of the same URL into one. The shared fetch outlives the caller that
// started it and is bounded by Timeout instead.
type CachingFetcher struct {
	// Timeout limits the shared fetch; zero means DefaultSharedFetchTimeout.
	Timeout time.Duration

	next    Fetcher
	store   storage.Storage
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCachingFetcher wraps next with store.
func NewCachingFetcher(next Fetcher, store storage.Storage, logger *zap.Logger, m *metrics.Metrics) *CachingFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingFetcher{next: next, store: store, logger: logger, metrics: m}
}

// Fetch returns the cached body or fetches and stores it. Storage errors are
// logged and otherwise ignored.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.store.GetPage(ctx, url)
	if err == nil {
		f.metrics.CacheLookup(true)
		return page.Body, nil
	}
	if !errors.Is(err, storage.ErrPageNotFound) {
		f.logger.Warn("page cache read failed", zap.String("url", url), zap.Error(err))
	}
	f.metrics.CacheLookup(false)

	ch := f.group.DoChan(url, func() (interface{}, error) {
		timeout := f.Timeout
		if timeout <= 0 {
			timeout = DefaultSharedFetchTimeout
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		body, err := f.next.Fetch(fctx, url)
		if err != nil {
			return "", err
		}
		if body != "" {
			if err := f.store.PutPage(fctx, &storage.Page{URL: url, Body: body}); err != nil {
				f.logger.Warn("page cache write failed", zap.String("url", url), zap.Error(err))
			}
		}
		return body, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
