// Package query turns raw search input into the term lists the ranking stages consume.
package query

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/docsearch/internal/language"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	digitsOnly = regexp.MustCompile(`^\d+$`)
)

// Terms holds the lists derived from one query string.
type Terms struct {
	// SearchTerms are the stemmed required terms.
	SearchTerms []string
	// Excluded are the stemmed terms prefixed with '-' in the query.
	Excluded []string
	// HlTerms are the lowercased, unstemmed required terms used for highlighting.
	HlTerms []string
	// ObjectTerms are every non-empty lowercased token, unstemmed and with any '-' kept.
	ObjectTerms []string
}

// Tokenize splits q on whitespace and classifies every token. A nil stemmer
// leaves words unchanged; a nil stop-word set skips nothing.
func Tokenize(q string, stemmer language.Stemmer, stopWords language.StopWords) Terms {
	if stemmer == nil {
		stemmer = language.Identity
	}
	var t Terms
	for _, tok := range whitespace.Split(q, -1) {
		lower := strings.ToLower(tok)
		if tok != "" {
			t.ObjectTerms = append(t.ObjectTerms, lower)
		}
		if tok == "" || stopWords.Contains(lower) || digitsOnly.MatchString(tok) {
			continue
		}

		word := stemmer.Stem(lower)
		// keep the raw token when stemming cuts it below three characters
		if utf8.RuneCountInString(word) < 3 && utf8.RuneCountInString(tok) >= 3 {
			word = tok
		}

		if strings.HasPrefix(word, "-") {
			if word = word[1:]; word != "" {
				t.Excluded = appendUnique(t.Excluded, word)
			}
			continue
		}
		t.SearchTerms = appendUnique(t.SearchTerms, word)
		t.HlTerms = appendUnique(t.HlTerms, lower)
	}
	return t
}

// HighlightString returns the query suffix that result links carry so the
// target page can highlight the matches: "?highlight=" plus the encoded terms.
func (t Terms) HighlightString() string {
	return "?highlight=" + EncodeURIComponent(strings.Join(t.HlTerms, " "))
}

// LongTermCount returns the number of search terms longer than two characters.
func (t Terms) LongTermCount() int {
	n := 0
	for _, w := range t.SearchTerms {
		if utf8.RuneCountInString(w) > 2 {
			n++
		}
	}
	return n
}

// Empty reports whether the query produced no terms at all.
func (t Terms) Empty() bool {
	return len(t.SearchTerms) == 0 && len(t.Excluded) == 0 && len(t.ObjectTerms) == 0
}

var uriComponentUnreserved = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s the way browsers do for a single URI component.
func EncodeURIComponent(s string) string {
	return uriComponentUnreserved.Replace(url.QueryEscape(s))
}

func appendUnique(list []string, word string) []string {
	for _, w := range list {
		if w == word {
			return list
		}
	}
	return append(list, word)
}
