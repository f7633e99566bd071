package language

import "strings"

// englishStopWords is the stop-word list the Sphinx English search language ships with.
var englishStopWords = []string{
	"a", "and", "are", "as", "at",
	"be", "but", "by",
	"for",
	"if", "in", "into", "is", "it",
	"near", "no", "not",
	"of", "on", "or",
	"such",
	"that", "the", "their", "then", "there", "these", "they", "this", "to",
	"was", "will", "with",
}

// StopWords is a set of words ignored for required and excluded terms.
type StopWords map[string]struct{}

// EnglishStopWords returns a fresh copy of the English stop-word set with extra words added.
func EnglishStopWords(extra ...string) StopWords {
	s := make(StopWords, len(englishStopWords)+len(extra))
	for _, w := range englishStopWords {
		s[w] = struct{}{}
	}
	s.Add(extra...)
	return s
}

// Add inserts words, lowercased and trimmed. Empty words are ignored.
func (s StopWords) Add(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
}

// Contains reports whether word is a stop word. A nil set contains nothing.
func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of stop words.
func (s StopWords) Len() int { return len(s) }
