package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/docsearch/internal/query"
	"github.com/hyperjump/docsearch/internal/searchindex"
)

// Ranker runs both search stages and orders the merged results.
type Ranker struct {
	config    *ScorerConfig
	scoreFunc ScoreFunc
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *ScorerConfig) *Ranker {
	if config == nil {
		config = DefaultScorerConfig()
	}
	config.ApplyDefaults()
	return &Ranker{config: config}
}

// WithScoreFunc sets a hook that may rewrite every score before sorting.
func (r *Ranker) WithScoreFunc(fn ScoreFunc) *Ranker {
	r.scoreFunc = fn
	return r
}

// Config returns the score table in use.
func (r *Ranker) Config() *ScorerConfig {
	return r.config
}

// Rank runs one object search per object term, then the term search, and
// returns all results sorted for consumption with a Stack.
func (r *Ranker) Rank(idx *searchindex.Index, terms query.Terms) []Result {
	var results []Result
	for i, term := range terms.ObjectTerms {
		others := make([]string, 0, len(terms.ObjectTerms)-1)
		others = append(others, terms.ObjectTerms[:i]...)
		others = append(others, terms.ObjectTerms[i+1:]...)
		results = append(results, ObjectSearch(idx, term, others, r.config)...)
	}
	results = append(results, TermSearch(idx, terms, r.config)...)

	if r.scoreFunc != nil {
		for i := range results {
			results[i].Score = r.scoreFunc(results[i])
		}
	}
	Sort(results)
	return results
}

// Sort orders results so that popping from the end yields the highest score
// first and, among equal scores, the alphabetically first title. The sort is stable.
func Sort(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		return strings.ToLower(a.Title) > strings.ToLower(b.Title)
	})
}

// Stack hands out sorted results from the tail.
type Stack struct {
	items []Result
	total int
}

// NewStack wraps results already ordered by Sort.
func NewStack(results []Result) *Stack {
	return &Stack{items: results, total: len(results)}
}

// Limit keeps only the next n results to display. n <= 0 keeps everything.
func (s *Stack) Limit(n int) *Stack {
	if n > 0 && n < len(s.items) {
		s.items = s.items[len(s.items)-n:]
	}
	return s
}

// Total returns the number of results the stack was created with.
func (s *Stack) Total() int {
	return s.total
}

// Pop removes and returns the next result to display.
func (s *Stack) Pop() (Result, bool) {
	if len(s.items) == 0 {
		return Result{}, false
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last, true
}

// Len returns the number of results left.
func (s *Stack) Len() int {
	return len(s.items)
}

// Drain pops every remaining result, in display order.
func (s *Stack) Drain() []Result {
	out := make([]Result, 0, len(s.items))
	for {
		r, ok := s.Pop()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}
