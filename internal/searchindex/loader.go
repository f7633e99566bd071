package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var setIndexCall = []byte("Search.setIndex(")

// Loader fetches and parses the index asset.
type Loader interface {
	Load(ctx context.Context) (*Index, error)
	// Source describes where the index comes from, for logs and status output.
	Source() string
}

// Parse decodes an index asset, either bare JSON or the searchindex.js form
// `Search.setIndex({...})`, and validates it.
func Parse(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(unwrap(data), &idx); err != nil {
		return nil, fmt.Errorf("failed to decode search index: %w", err)
	}
	if idx.Terms == nil {
		idx.Terms = make(map[string]Postings)
	}
	if idx.TitleTerms == nil {
		idx.TitleTerms = make(map[string]Postings)
	}
	if idx.ObjNames == nil {
		idx.ObjNames = make(map[int]ObjName)
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return &idx, nil
}

func unwrap(data []byte) []byte {
	data = bytes.TrimSpace(data)
	data = bytes.TrimSuffix(data, []byte(";"))
	if bytes.HasPrefix(data, setIndexCall) && bytes.HasSuffix(data, []byte(")")) {
		data = data[len(setIndexCall) : len(data)-1]
	}
	return data
}

// FileLoader reads the index from a local file (usually _build/html/searchindex.js).
type FileLoader struct {
	Path string
}

// Load reads and parses the file.
func (l *FileLoader) Load(ctx context.Context) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search index: %w", err)
	}
	return Parse(data)
}

// Source returns the file path.
func (l *FileLoader) Source() string { return l.Path }

// HTTPLoader downloads the index from a deployed documentation site.
type HTTPLoader struct {
	URL    string
	Client *http.Client
}

// Load downloads and parses the index.
func (l *HTTPLoader) Load(ctx context.Context) (*Index, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build index request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read index body: %w", err)
	}
	return Parse(data)
}

// Source returns the URL.
func (l *HTTPLoader) Source() string { return l.URL }

// NewLoader returns an HTTPLoader when url is set, otherwise a FileLoader for path.
func NewLoader(path, url string, client *http.Client) (Loader, error) {
	switch {
	case url != "":
		return &HTTPLoader{URL: url, Client: client}, nil
	case path != "":
		return &FileLoader{Path: path}, nil
	default:
		return nil, fmt.Errorf("no search index path or url configured")
	}
}
