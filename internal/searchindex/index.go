// Package searchindex provides the typed Sphinx search index, its loaders and a load-once cache.
package searchindex

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex is returned when the index asset does not have the expected shape.
	ErrInvalidIndex = errors.New("invalid search index")
	// ErrNotLoaded is returned when the index is requested before a load succeeded.
	ErrNotLoaded = errors.New("search index not loaded")
)

// Index is the pre-built search index. It is never mutated after Parse returns.
// Document ids are positions in Docnames, Filenames and Titles.
type Index struct {
	Docnames   []string            `json:"docnames"`
	Filenames  []string            `json:"filenames"`
	Titles     []string            `json:"titles"`
	Terms      map[string]Postings `json:"terms"`
	TitleTerms map[string]Postings `json:"titleterms"`
	Objects    Objects             `json:"objects"`
	ObjNames   map[int]ObjName     `json:"objnames"`
}

// Stats summarizes an index for status output.
type Stats struct {
	Documents  int `json:"documents"`
	Terms      int `json:"terms"`
	TitleTerms int `json:"title_terms"`
	Objects    int `json:"objects"`
	ObjTypes   int `json:"object_types"`
}

// Stats returns entry counts for the index.
func (idx *Index) Stats() Stats {
	return Stats{
		Documents:  len(idx.Docnames),
		Terms:      len(idx.Terms),
		TitleTerms: len(idx.TitleTerms),
		Objects:    idx.Objects.Len(),
		ObjTypes:   len(idx.ObjNames),
	}
}

// DocCount returns the number of documents.
func (idx *Index) DocCount() int {
	return len(idx.Docnames)
}

// Validate checks the invariants the search relies on: parallel document arrays
// and in-range document and object type references.
func (idx *Index) Validate() error {
	n := len(idx.Docnames)
	if len(idx.Filenames) != n || len(idx.Titles) != n {
		return fmt.Errorf("%w: docnames/filenames/titles lengths differ (%d/%d/%d)",
			ErrInvalidIndex, n, len(idx.Filenames), len(idx.Titles))
	}
	if err := validatePostings("terms", idx.Terms, n); err != nil {
		return err
	}
	if err := validatePostings("titleterms", idx.TitleTerms, n); err != nil {
		return err
	}
	for _, group := range idx.Objects {
		for _, entry := range group.Entries {
			m := entry.Match
			if m.DocID < 0 || m.DocID >= n {
				return fmt.Errorf("%w: object %q references document %d of %d",
					ErrInvalidIndex, joinName(group.Prefix, entry.Name), m.DocID, n)
			}
			if _, ok := idx.ObjNames[m.TypeID]; !ok {
				return fmt.Errorf("%w: object %q references unknown type %d",
					ErrInvalidIndex, joinName(group.Prefix, entry.Name), m.TypeID)
			}
		}
	}
	return nil
}

func validatePostings(field string, postings map[string]Postings, n int) error {
	for term, ids := range postings {
		for _, id := range ids {
			if id < 0 || id >= n {
				return fmt.Errorf("%w: %s[%q] references document %d of %d", ErrInvalidIndex, field, term, id, n)
			}
		}
	}
	return nil
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
