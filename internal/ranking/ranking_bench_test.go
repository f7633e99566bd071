package ranking

import (
	"fmt"
	"testing"

	"github.com/hyperjump/docsearch/internal/searchindex"
)

// benchIndex builds an index with n documents, each posting to a handful of
// shared terms and one object.
func benchIndex(n int) *searchindex.Index {
	idx := &searchindex.Index{
		Terms:      make(map[string]searchindex.Postings),
		TitleTerms: make(map[string]searchindex.Postings),
		ObjNames:   map[int]searchindex.ObjName{0: {Domain: "py", Label: "function", Display: "Python function"}},
	}
	group := searchindex.ObjectGroup{Prefix: "pkg"}
	for i := 0; i < n; i++ {
		idx.Docnames = append(idx.Docnames, fmt.Sprintf("doc%d", i))
		idx.Filenames = append(idx.Filenames, fmt.Sprintf("doc%d.rst", i))
		idx.Titles = append(idx.Titles, fmt.Sprintf("Document %d", i))
		term := fmt.Sprintf("term%d", i%50)
		idx.Terms[term] = append(idx.Terms[term], i)
		idx.Terms["common"] = append(idx.Terms["common"], i)
		if i%10 == 0 {
			idx.TitleTerms["common"] = append(idx.TitleTerms["common"], i)
		}
		group.Entries = append(group.Entries, searchindex.ObjectEntry{
			Name:  fmt.Sprintf("func%d", i),
			Match: searchindex.Match{DocID: i, Priority: 1},
		})
	}
	idx.Objects = searchindex.Objects{group}
	return idx
}

func BenchmarkRanker_Rank(b *testing.B) {
	idx := benchIndex(5000)
	r := NewRanker(DefaultScorerConfig())
	t := terms("common term7")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Rank(idx, t)
	}
}

func BenchmarkObjectSearch(b *testing.B) {
	idx := benchIndex(5000)
	cfg := DefaultScorerConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ObjectSearch(idx, "func42", nil, cfg)
	}
}

func BenchmarkSort(b *testing.B) {
	results := NewRanker(DefaultScorerConfig()).Rank(benchIndex(5000), terms("common"))
	buf := make([]Result, len(results))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(buf, results)
		Sort(buf)
	}
}
