// Package models defines the request and response shapes of the search API.
package models

import "time"

// SearchResult is one rendered search hit.
type SearchResult struct {
	Rank        int    `json:"rank"`
	Docname     string `json:"docname"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	ExcerptHTML string `json:"excerpt_html,omitempty"`
	Score       int    `json:"score"`
	Kind        string `json:"kind"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query   string          `json:"query"`
	RunID   string          `json:"run_id"`
	Title   string          `json:"title"`
	Status  string          `json:"status"`
	Results []*SearchResult `json:"results"`
	// Total counts every match, including those beyond the limit.
	Total     int   `json:"total"`
	QueryTime int64 `json:"query_time_ms"`
	// Terms are the stemmed required terms the query was reduced to.
	Terms    []string `json:"terms"`
	Excluded []string `json:"excluded,omitempty"`
}

// IndexStatus describes the loaded search index.
type IndexStatus struct {
	Source     string    `json:"source"`
	Loaded     bool      `json:"loaded"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
	Documents  int       `json:"documents"`
	Terms      int       `json:"terms"`
	TitleTerms int       `json:"title_terms"`
	Objects    int       `json:"objects"`
	ObjTypes   int       `json:"object_types"`
}

// StatusResponse is the response of the status endpoint and command.
type StatusResponse struct {
	Index       IndexStatus `json:"index"`
	Stemmer     string      `json:"stemmer"`
	Builder     string      `json:"builder"`
	CachedPages int64       `json:"cached_pages"`
	CacheBytes  int64       `json:"cache_bytes"`
	Watching    bool        `json:"watching"`
}
