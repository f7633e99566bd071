package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperjump/docsearch/internal/storage"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/docs/intro.html":
			_, _ = w.Write([]byte("<p>intro</p>"))
		case "/docs/broken.html":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/docs/", time.Second)
	body, err := f.Fetch(context.Background(), "intro.html")
	if err != nil {
		t.Fatal(err)
	}
	if body != "<p>intro</p>" {
		t.Errorf("body = %q", body)
	}
	if _, err := f.Fetch(context.Background(), "missing.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
	if _, err := f.Fetch(context.Background(), "broken.html"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("broken: got %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "guide"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"index.html":       "root",
		"guide/index.html": "guide",
		"guide/intro.html": "intro",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	f := &FileFetcher{Root: root}
	tests := []struct {
		url  string
		want string
	}{
		{"", "root"},
		{"/", "root"},
		{"guide/", "guide"},
		{"/guide/intro.html?highlight=x", "intro"},
		{"../../guide/intro.html", "intro"},
	}
	for _, tt := range tests {
		got, err := f.Fetch(context.Background(), tt.url)
		if err != nil {
			t.Errorf("Fetch(%q): %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Fetch(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
	if _, err := f.Fetch(context.Background(), "nope.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}

	prefixed := &FileFetcher{Root: root, StripPrefix: "/docs/"}
	if got, err := prefixed.Fetch(context.Background(), "/docs/guide/intro.html"); err != nil || got != "intro" {
		t.Errorf("prefixed fetch = %q, %v", got, err)
	}
}

type countingFetcher struct {
	calls atomic.Int32
	delay time.Duration
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	return "<p>" + url + "</p>", nil
}

func TestCachingFetcher(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "pages.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	next := &countingFetcher{delay: 20 * time.Millisecond}
	f := NewCachingFetcher(next, store, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Fetch(context.Background(), "intro.html"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	body, err := f.Fetch(context.Background(), "intro.html")
	if err != nil {
		t.Fatal(err)
	}
	if body != "<p>intro.html</p>" {
		t.Errorf("body = %q", body)
	}
	if got := next.calls.Load(); got != 1 {
		t.Errorf("underlying fetches = %d, want 1", got)
	}
	n, _ := store.CountPages(context.Background())
	if n != 1 {
		t.Errorf("cached pages = %d", n)
	}
}

// gateFetcher blocks every fetch until open is closed or its ctx ends.
type gateFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	open    chan struct{}
}

func (f *gateFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.calls.Add(1) == 1 {
		close(f.started)
	}
	select {
	case <-f.open:
		return "<p>" + url + "</p>", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestCachingFetcher_CancelledLeader(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "pages.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	next := &gateFetcher{started: make(chan struct{}), open: make(chan struct{})}
	f := NewCachingFetcher(next, store, nil, nil)
	f.Timeout = 5 * time.Second

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leader := make(chan error, 1)
	go func() {
		_, err := f.Fetch(leaderCtx, "intro.html")
		leader <- err
	}()
	<-next.started

	type result struct {
		body string
		err  error
	}
	follower := make(chan result, 1)
	go func() {
		body, err := f.Fetch(context.Background(), "intro.html")
		follower <- result{body, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	if err := <-leader; !errors.Is(err, context.Canceled) {
		t.Errorf("leader error = %v, want context.Canceled", err)
	}
	close(next.open)

	res := <-follower
	if res.err != nil || res.body != "<p>intro.html</p>" {
		t.Fatalf("follower = %q, %v", res.body, res.err)
	}
	if got := next.calls.Load(); got != 1 {
		t.Errorf("underlying fetches = %d, want 1", got)
	}
	if n, _ := store.CountPages(context.Background()); n != 1 {
		t.Errorf("cached pages = %d", n)
	}
}
