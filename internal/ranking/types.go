// Package ranking implements object-name search, full-text term search and
// result ordering over a loaded search index.
package ranking

// Result is one search hit, produced by either search stage.
type Result struct {
	Docname string `json:"docname"`
	Title   string `json:"title"`
	// Anchor is "" for term hits and "#<anchor>" for object hits.
	Anchor string `json:"anchor"`
	// Description is set for object hits only; empty means none.
	Description string `json:"description,omitempty"`
	Score       int    `json:"score"`
	Filename    string `json:"filename"`
}

// HasDescription reports whether the result carries a description.
func (r Result) HasDescription() bool {
	return r.Description != ""
}

// ScoreFunc rewrites the score of a result before sorting.
type ScoreFunc func(r Result) int
