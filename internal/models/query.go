package models

import (
	"fmt"
	"strings"
)

// MaxLimit caps the number of rendered results per request.
const MaxLimit = 1000

// SearchQuery represents a search request.
type SearchQuery struct {
	Query string `json:"query"`
	// Limit bounds how many results are rendered; 0 renders all of them.
	Limit int `json:"limit,omitempty"`
}

// Validate ensures the search query has valid fields and normalizes the limit.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return nil
}
