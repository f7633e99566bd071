package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/docsearch/internal/language"
	"github.com/hyperjump/docsearch/internal/query"
	"github.com/hyperjump/docsearch/internal/ranking"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, url string) (string, error) {
	body, ok := m[url]
	if !ok {
		return "", ErrNotFound
	}
	return body, nil
}

func sortedStack(results ...ranking.Result) *ranking.Stack {
	ranking.Sort(results)
	return ranking.NewStack(results)
}

func TestRenderer_Run(t *testing.T) {
	opts := Options{Builder: "html", URLRoot: "/", FileSuffix: ".html", LinkSuffix: ".html", HasSource: true}
	fetcher := mapFetcher{
		"/intro.html": `<div role="main">Widgets make everything better.</div>`,
		"/empty.html": "",
	}
	r := NewRenderer(opts, WithFetcher(fetcher), WithItemInterval(time.Millisecond))
	terms := query.Tokenize("widgets", language.Porter{}, language.EnglishStopWords())

	stack := sortedStack(
		ranking.Result{Docname: "api", Title: "pkg.Widget", Anchor: "#pkg.Widget", Description: "Python class, in API", Score: 26},
		ranking.Result{Docname: "intro", Title: "Intro", Score: 15},
		ranking.Result{Docname: "empty", Title: "Empty", Score: 5},
		ranking.Result{Docname: "gone", Title: "Gone", Score: 2},
	)
	page := NewCollectPage()
	_ = page.Begin()
	pulse := NewPulse(time.Millisecond, func(n int) { _ = page.SetDots(n) })
	pulse.Start()

	if err := r.Run(context.Background(), page, stack, terms, pulse); err != nil {
		t.Fatal(err)
	}
	if pulse.Running() {
		t.Error("pulse should be stopped when rendering finishes")
	}
	if page.Title() != HeadingResults || page.Status() != StatusMessage(4) {
		t.Errorf("finish: %q / %q", page.Title(), page.Status())
	}

	items := page.Items()
	if len(items) != 4 {
		t.Fatalf("items = %d", len(items))
	}
	want := []struct{ title, link, kind string }{
		{"pkg.Widget", "api.html?highlight=widgets#pkg.Widget", KindDescription},
		{"Intro", "intro.html?highlight=widgets", KindExcerpt},
		{"Empty", "empty.html?highlight=widgets", KindTitle},
		{"Gone", "gone.html?highlight=widgets", KindTitle},
	}
	for i, w := range want {
		if items[i].Title != w.title || items[i].Link != w.link || items[i].Kind != w.kind {
			t.Errorf("item %d = %+v, want %+v", i, items[i], w)
		}
	}
	if !strings.Contains(items[1].ExcerptHTML, `<span class="highlighted">Widgets</span>`) {
		t.Errorf("excerpt not highlighted: %s", items[1].ExcerptHTML)
	}
}

func TestRenderer_NoSource(t *testing.T) {
	r := NewRenderer(Options{Builder: "dirhtml", URLRoot: "/"}, WithFetcher(mapFetcher{}), WithItemInterval(0))
	page := NewCollectPage()
	stack := sortedStack(ranking.Result{Docname: "guide/index", Title: "Guide", Score: 5})
	if err := r.Run(context.Background(), page, stack, query.Terms{HlTerms: []string{"a", "b"}}, nil); err != nil {
		t.Fatal(err)
	}
	items := page.Items()
	if len(items) != 1 || items[0].Link != "/guide/?highlight=a%20b" || items[0].Kind != KindTitle {
		t.Errorf("items = %+v", items)
	}
}

func TestRenderer_NoResults(t *testing.T) {
	r := NewRenderer(Options{})
	page := NewCollectPage()
	if err := r.Run(context.Background(), page, ranking.NewStack(nil), query.Terms{}, nil); err != nil {
		t.Fatal(err)
	}
	if page.Status() != NoResultsMessage || page.Title() != HeadingResults {
		t.Errorf("status = %q", page.Status())
	}
}

func TestRenderer_Cancel(t *testing.T) {
	r := NewRenderer(Options{}, WithItemInterval(50*time.Millisecond))
	var results []ranking.Result
	for i := 0; i < 20; i++ {
		results = append(results, ranking.Result{Docname: "d", Title: "T", Score: i})
	}
	page := NewCollectPage()
	_ = page.Begin()
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(60*time.Millisecond, cancel)

	err := r.Run(ctx, page, sortedStack(results...), query.Terms{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v", err)
	}
	if page.Finished() {
		t.Error("a cancelled run must not finish the page")
	}
	if n := len(page.Items()); n == 0 || n >= 20 {
		t.Errorf("rendered %d items before cancel", n)
	}
}
