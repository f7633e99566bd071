package ranking

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/docsearch/internal/language"
	"github.com/hyperjump/docsearch/internal/query"
	"github.com/hyperjump/docsearch/internal/searchindex"
)

func mustParse(t *testing.T, data string) *searchindex.Index {
	t.Helper()
	idx, err := searchindex.Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

const objectIndex = `{
"docnames":["api","guide"],
"filenames":["api.rst","guide.rst"],
"titles":["API Reference","User Guide"],
"terms":{},
"objects":{
  "foo":{"bar":[0,0,0,""],"Barista":[0,1,1,"-"],"qux":[1,1,7,"custom"]}
},
"objnames":{"0":["py","class","Python class"],"1":["py","function","Python function"]}
}`

func TestObjectSearch(t *testing.T) {
	idx := mustParse(t, objectIndex)
	cfg := DefaultScorerConfig()

	tests := []struct {
		name       string
		term       string
		others     []string
		wantTitles []string
		wantScores []int
	}{
		{"exact last part plus prio 0", "bar", nil, []string{"foo.bar", "foo.Barista"}, []int{11 + 15, 6 + 5}},
		{"exact full name", "foo.bar", nil, []string{"foo.bar", "foo.Barista"}, []int{11 + 15, 5}},
		{"prefix only match scores priority", "foo", nil, []string{"foo.bar", "foo.Barista", "foo.qux"}, []int{15, 5, 0}},
		{"others must be in haystack", "bar", []string{"function"}, []string{"foo.Barista"}, []int{11}},
		{"others missing drops everything", "bar", []string{"nowhere"}, nil, nil},
		{"no match", "zzz", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ObjectSearch(idx, tt.term, tt.others, cfg)
			if len(got) != len(tt.wantTitles) {
				t.Fatalf("got %d results (%+v), want %d", len(got), got, len(tt.wantTitles))
			}
			for i, r := range got {
				if r.Title != tt.wantTitles[i] || r.Score != tt.wantScores[i] {
					t.Errorf("result %d: got %s/%d, want %s/%d", i, r.Title, r.Score, tt.wantTitles[i], tt.wantScores[i])
				}
			}
		})
	}
}

func TestObjectSearch_anchorsAndDescription(t *testing.T) {
	idx := mustParse(t, objectIndex)
	got := ObjectSearch(idx, "foo", nil, DefaultScorerConfig())
	want := []struct{ anchor, descr, doc string }{
		{"#foo.bar", "Python class, in API Reference", "api"},
		{"#function-foo.Barista", "Python function, in API Reference", "api"},
		{"#custom", "Python function, in User Guide", "guide"},
	}
	for i, w := range want {
		if got[i].Anchor != w.anchor || got[i].Description != w.descr || got[i].Docname != w.doc {
			t.Errorf("result %d: got %+v", i, got[i])
		}
		if !got[i].HasDescription() {
			t.Errorf("result %d should carry a description", i)
		}
	}
}

const termIndex = `{
"docnames":["index","intro","widgets","gadgets"],
"filenames":["index.rst","intro.rst","widgets.rst","gadgets.rst"],
"titles":["Welcome","Intro","Widgets","Gadgets"],
"terms":{"widget":[1,2],"widgetri":3,"gadget":[2,3],"go":[0,2],"secret":2},
"titleterms":{"intro":1,"widget":2}
}`

func terms(q string) query.Terms {
	return query.Tokenize(q, language.Identity, language.EnglishStopWords())
}

func titlesOf(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestTermSearch(t *testing.T) {
	idx := mustParse(t, termIndex)
	cfg := DefaultScorerConfig()

	tests := []struct {
		name       string
		query      string
		wantTitles []string
		wantScores []int
	}{
		{"exact term and title", "widget", []string{"Intro", "Widgets"}, []int{5, 15}},
		{"partial only when exact key missing", "widg", []string{"Intro", "Widgets", "Gadgets"}, []int{2, 7, 2}},
		{"all required terms", "widget gadget", []string{"Widgets"}, []int{15}},
		{"excluded term", "widget -secret", []string{"Intro"}, []int{5}},
		{"excluded via title term", "widget -intro", []string{"Widgets"}, []int{15}},
		{"short term counts either way", "widget go", []string{"Welcome", "Intro", "Widgets"}, []int{5, 5, 15}},
		{"abort keeps earlier matches", "gadget zz", []string{"Widgets", "Gadgets"}, []int{5, 5}},
		{"abort with two long terms", "gadget nothing", nil, nil},
		{"first term missing matches nothing", "nothing gadget", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TermSearch(idx, terms(tt.query), cfg)
			if len(got) != len(tt.wantTitles) {
				t.Fatalf("got %v, want %v", titlesOf(got), tt.wantTitles)
			}
			for i, r := range got {
				if r.Title != tt.wantTitles[i] || r.Score != tt.wantScores[i] {
					t.Errorf("result %d: got %s/%d, want %s/%d", i, r.Title, r.Score, tt.wantTitles[i], tt.wantScores[i])
				}
				if r.Anchor != "" || r.HasDescription() {
					t.Errorf("term hits carry no anchor or description: %+v", r)
				}
			}
		})
	}
}

func TestTermSearch_abortWithCountFilter(t *testing.T) {
	idx := mustParse(t, termIndex)
	// "zz" has no postings: the loop stops there, so "gadget" is never
	// recorded and "widget" hits match 1 of 3 terms (2 long terms).
	got := TermSearch(idx, terms("widget zz gadget"), DefaultScorerConfig())
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", titlesOf(got))
	}
}

func TestSortAndStack(t *testing.T) {
	results := []Result{
		{Title: "low", Score: 10},
		{Title: "Zeta", Score: 20},
		{Title: "alpha", Score: 20},
		{Title: "high", Score: 30},
	}
	Sort(results)
	got := titlesOf(NewStack(results).Drain())
	want := []string{"high", "alpha", "Zeta", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pop order = %v, want %v", got, want)
		}
	}
}

func TestSort_stable(t *testing.T) {
	results := []Result{
		{Title: "Same", Score: 5, Docname: "first"},
		{Title: "same", Score: 5, Docname: "second"},
	}
	Sort(results)
	if results[0].Docname != "first" {
		t.Errorf("equal keys must keep their order: %+v", results)
	}
}

func TestStack_Limit(t *testing.T) {
	results := []Result{{Title: "c", Score: 1}, {Title: "b", Score: 2}, {Title: "a", Score: 3}}
	s := NewStack(results).Limit(2)
	got := titlesOf(s.Drain())
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("limited pop order = %v", got)
	}
	if s.Total() != 3 {
		t.Errorf("Total = %d, want 3", s.Total())
	}
	if NewStack(results).Limit(0).Len() != 3 {
		t.Error("Limit(0) should keep everything")
	}
}

func TestStack_empty(t *testing.T) {
	s := NewStack(nil)
	if _, ok := s.Pop(); ok {
		t.Error("Pop on empty stack should fail")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestRanker_Rank(t *testing.T) {
	idx := mustParse(t, `{
"docnames":["api","intro"],
"filenames":["api.rst","intro.rst"],
"titles":["API","Intro"],
"terms":{"widget":[0,1]},
"objects":{"pkg":{"Widget":[0,0,1,""]}},
"objnames":{"0":["py","class","Python class"]}
}`)
	r := NewRanker(nil)
	got := NewStack(r.Rank(idx, terms("widget"))).Drain()
	want := []string{"pkg.Widget", "API", "Intro"}
	if len(got) != len(want) {
		t.Fatalf("got %v", titlesOf(got))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i].Title, want[i])
		}
	}
	if got[0].Score != 16 {
		t.Errorf("object score = %d, want 16", got[0].Score)
	}

	flipped := NewRanker(nil).WithScoreFunc(func(res Result) int {
		if res.Title == "Intro" {
			return 100
		}
		return res.Score
	})
	if first, _ := NewStack(flipped.Rank(idx, terms("widget"))).Pop(); first.Title != "Intro" {
		t.Errorf("score hook ignored: first = %s", first.Title)
	}
}

func TestScorerConfig_ApplyDefaults(t *testing.T) {
	cfg := &ScorerConfig{Term: 9}
	cfg.ApplyDefaults()
	if cfg.Term != 9 {
		t.Errorf("Term overwritten: %d", cfg.Term)
	}
	if cfg.Title != 15 || cfg.ObjNameMatch != 11 || cfg.ObjPrio[2] != -5 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.priority(42) != 0 {
		t.Errorf("unknown priority bonus = %d", cfg.priority(42))
	}
}

func TestScorerConfig_UnmarshalYAML(t *testing.T) {
	var cfg ScorerConfig
	doc := "partial_term: 0\ntitle: 20\nobj_prio:\n  2: 0\n"
	if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatal(err)
	}
	cfg.ApplyDefaults()
	if cfg.PartialTerm != 0 {
		t.Errorf("explicit zero replaced: PartialTerm = %d", cfg.PartialTerm)
	}
	if cfg.Title != 20 || cfg.Term != 5 || cfg.ObjNameMatch != 11 {
		t.Errorf("unexpected table: %+v", cfg)
	}
	if cfg.ObjPrio[0] != 15 || cfg.ObjPrio[1] != 5 || cfg.ObjPrio[2] != 0 {
		t.Errorf("obj_prio = %v, want map[0:15 1:5 2:0]", cfg.ObjPrio)
	}
}
