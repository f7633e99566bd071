// Package language provides the stemmers and stop-word sets used by query tokenization.
package language

import (
	"fmt"
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"github.com/kljensen/snowball/english"
)

// Stemmer reduces a lowercase word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// StemmerFunc adapts a plain function to Stemmer.
type StemmerFunc func(word string) string

// Stem calls f(word).
func (f StemmerFunc) Stem(word string) string { return f(word) }

// Porter is the classic Porter stemmer, the one the Sphinx indexer uses for English.
type Porter struct{}

// Stem returns the Porter stem of word.
func (Porter) Stem(word string) string {
	if word == "" {
		return ""
	}
	return porterstemmer.StemString(word)
}

// Snowball is the English Snowball (Porter2) stemmer.
type Snowball struct{}

// Stem returns the Snowball stem of word. Stop words are stemmed too; filtering
// happens in the tokenizer.
func (Snowball) Stem(word string) string {
	if word == "" {
		return ""
	}
	return english.Stem(word, false)
}

// Identity leaves words unchanged.
var Identity = StemmerFunc(func(word string) string { return word })

// NewStemmer returns the stemmer registered under name: "porter" (default), "snowball" or "none".
func NewStemmer(name string) (Stemmer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "porter":
		return Porter{}, nil
	case "snowball", "porter2":
		return Snowball{}, nil
	case "none", "identity":
		return Identity, nil
	default:
		return nil, fmt.Errorf("unknown stemmer %q", name)
	}
}
