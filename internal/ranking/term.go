package ranking

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/docsearch/internal/query"
	"github.com/hyperjump/docsearch/internal/searchindex"
)

type postingSource struct {
	docs  searchindex.Postings
	score int
}

// TermSearch finds the documents that contain the required terms and none of
// the excluded ones. Results come out in ascending document id order.
func TermSearch(idx *searchindex.Index, terms query.Terms, cfg *ScorerConfig) []Result {
	fileWords := make(map[int]map[string]struct{})
	scores := make(map[int]map[string]int)

	for _, word := range terms.SearchTerms {
		sources := termSources(idx, word, cfg)
		if len(sources) == 0 {
			// a required word matched nothing; later words are not looked at
			break
		}
		for _, src := range sources {
			for _, doc := range src.docs {
				if scores[doc] == nil {
					scores[doc] = make(map[string]int)
					fileWords[doc] = make(map[string]struct{})
				}
				if prev, ok := scores[doc][word]; !ok || src.score > prev {
					scores[doc][word] = src.score
				}
				fileWords[doc][word] = struct{}{}
			}
		}
	}

	docs := make([]int, 0, len(fileWords))
	for doc := range fileWords {
		docs = append(docs, doc)
	}
	sort.Ints(docs)

	required := len(terms.SearchTerms)
	longTerms := terms.LongTermCount()

	var results []Result
	for _, doc := range docs {
		matched := len(fileWords[doc])
		if matched != required && matched != longTerms {
			continue
		}
		if excludedIn(idx, terms.Excluded, doc) {
			continue
		}
		best := 0
		first := true
		for word := range fileWords[doc] {
			if s := scores[doc][word]; first || s > best {
				best, first = s, false
			}
		}
		results = append(results, Result{
			Docname:  idx.Docnames[doc],
			Title:    idx.Titles[doc],
			Score:    best,
			Filename: idx.Filenames[doc],
		})
	}
	return results
}

// termSources collects the posting lists that contribute to word: exact hits in
// terms and titleterms and, for words longer than two characters, every key
// containing the word when the exact key is absent.
func termSources(idx *searchindex.Index, word string, cfg *ScorerConfig) []postingSource {
	var sources []postingSource
	exactTerm, hasTerm := idx.Terms[word]
	if hasTerm {
		sources = append(sources, postingSource{exactTerm, cfg.Term})
	}
	exactTitle, hasTitle := idx.TitleTerms[word]
	if hasTitle {
		sources = append(sources, postingSource{exactTitle, cfg.Title})
	}
	if utf8.RuneCountInString(word) <= 2 {
		return sources
	}
	if !hasTerm {
		for key, docs := range idx.Terms {
			if strings.Contains(key, word) {
				sources = append(sources, postingSource{docs, cfg.PartialTerm})
			}
		}
	}
	if !hasTitle {
		for key, docs := range idx.TitleTerms {
			if strings.Contains(key, word) {
				sources = append(sources, postingSource{docs, cfg.PartialTitle})
			}
		}
	}
	return sources
}

func excludedIn(idx *searchindex.Index, excluded []string, doc int) bool {
	for _, word := range excluded {
		if idx.Terms[word].Contains(doc) || idx.TitleTerms[word].Contains(doc) {
			return true
		}
	}
	return false
}
