package render

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestHTMLPage(t *testing.T) {
	p := NewHTMLPage()
	if err := p.Begin(); err != nil {
		t.Fatal(err)
	}
	_ = p.SetDots(2)
	got := p.String()
	for _, want := range []string{
		`<p id="search-progress">Preparing search...</p>`,
		`<h2>Searching<span>..</span></h2>`,
		`<p class="search-summary"></p>`,
		`<ul class="search"></ul>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("after Begin missing %s in\n%s", want, got)
		}
	}

	_ = p.ClearProgress()
	_ = p.AppendItem(Item{Title: "pkg.Widget", Link: "api.html?highlight=widget#pkg.Widget", Description: "Python class, in API"})
	summary := MakeSummary(`<div role="main">a widget here</div>`, []string{"widget"}, []string{"widget"}, zap.NewNop())
	_ = p.AppendItem(Item{Title: "Intro", Link: "intro.html?highlight=widget", summary: summary.Node})
	_ = p.Finish(HeadingResults, StatusMessage(2))

	got = p.String()
	for _, want := range []string{
		`<p id="search-progress"></p>`,
		`<h2>Search Results</h2>`,
		`<p class="search-summary">Search finished, found 2 page(s) matching the search query.</p>`,
		`<li><a href="api.html?highlight=widget#pkg.Widget">pkg.Widget</a><span> (Python class, in API)</span></li>`,
		`<li><a href="intro.html?highlight=widget">Intro</a><div class="context">a <span class="highlighted">widget</span> here</div></li>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("after Finish missing %s in\n%s", want, got)
		}
	}
	if !p.Finished() {
		t.Error("Finished should be true")
	}

	_ = p.Begin()
	if strings.Count(p.String(), "<ul") != 1 {
		t.Errorf("Begin should replace the previous results:\n%s", p.String())
	}
}

func TestCollectPage(t *testing.T) {
	p := NewCollectPage()
	_ = p.Begin()
	if p.Title() != HeadingSearching || p.Progress() != ProgressMessage {
		t.Errorf("after Begin: %q %q", p.Title(), p.Progress())
	}
	_ = p.SetDots(3)
	_ = p.ClearProgress()
	_ = p.AppendItem(Item{Title: "A"})
	_ = p.Finish(HeadingResults, StatusMessage(0))
	if p.Dots() != 3 || p.Progress() != "" || len(p.Items()) != 1 {
		t.Errorf("state: dots=%d progress=%q items=%d", p.Dots(), p.Progress(), len(p.Items()))
	}
	if p.Status() != NoResultsMessage || !p.Finished() {
		t.Errorf("status = %q", p.Status())
	}
}

func TestTextPage(t *testing.T) {
	var buf bytes.Buffer
	p := NewTextPage(&buf, PlainTextStyles())
	_ = p.Begin()
	_ = p.AppendItem(Item{Title: "pkg.Widget", Link: "api.html#pkg.Widget", Description: "Python class, in API"})
	summary := MakeSummary("<div role=\"main\">a\nwidget here</div>", []string{"widget"}, []string{"widget"}, zap.NewNop())
	_ = p.AppendItem(Item{Title: "Intro", Link: "intro.html", summary: summary.Node})
	if err := p.Finish(HeadingResults, StatusMessage(2)); err != nil {
		t.Fatal(err)
	}
	want := "Searching...\n" +
		"  1. pkg.Widget\n     api.html#pkg.Widget\n     (Python class, in API)\n" +
		"  2. Intro\n     intro.html\n     a widget here\n" +
		"\nSearch Results\nSearch finished, found 2 page(s) matching the search query.\n"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestStatusMessage(t *testing.T) {
	if StatusMessage(0) != NoResultsMessage {
		t.Error("zero results should use the no-results message")
	}
	if got := StatusMessage(1); got != "Search finished, found 1 page(s) matching the search query." {
		t.Errorf("StatusMessage(1) = %q", got)
	}
}
