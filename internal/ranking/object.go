package ranking

import (
	"strings"

	"github.com/hyperjump/docsearch/internal/searchindex"
)

// ObjectSearch scans every (prefix, name) object for term, a lowercase object
// term. When others is non-empty each of them must also occur in the object's
// prefix, name, type display name or document title.
func ObjectSearch(idx *searchindex.Index, term string, others []string, cfg *ScorerConfig) []Result {
	var results []Result
	for _, group := range idx.Objects {
		for _, entry := range group.Entries {
			fullname := entry.Name
			if group.Prefix != "" {
				fullname = group.Prefix + "." + entry.Name
			}
			lower := strings.ToLower(fullname)
			if !strings.Contains(lower, term) {
				continue
			}

			score := 0
			last := lower[strings.LastIndex(lower, ".")+1:]
			switch {
			case lower == term || last == term:
				score += cfg.ObjNameMatch
			case strings.Contains(last, term):
				score += cfg.ObjPartialMatch
			}

			m := entry.Match
			objType := idx.ObjNames[m.TypeID]
			title := idx.Titles[m.DocID]
			if len(others) > 0 && !containsAll(
				strings.ToLower(group.Prefix+" "+entry.Name+" "+objType.Display+" "+title), others) {
				continue
			}

			anchor := m.Anchor
			switch anchor {
			case "":
				anchor = fullname
			case "-":
				anchor = objType.Label + "-" + fullname
			}
			score += cfg.priority(m.Priority)

			results = append(results, Result{
				Docname:     idx.Docnames[m.DocID],
				Title:       fullname,
				Anchor:      "#" + anchor,
				Description: objType.Display + ", in " + title,
				Score:       score,
				Filename:    idx.Filenames[m.DocID],
			})
		}
	}
	return results
}

func containsAll(haystack string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(haystack, n) {
			return false
		}
	}
	return true
}
