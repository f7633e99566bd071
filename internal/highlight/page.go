package highlight

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Param is the query parameter result links use to carry highlight terms.
const Param = "highlight"

var whitespace = regexp.MustCompile(`\s+`)

// ParamTerms splits a highlight parameter value into lowercase terms.
func ParamTerms(value string) []string {
	var terms []string
	for _, t := range whitespace.Split(strings.TrimSpace(value), -1) {
		if t != "" {
			terms = append(terms, strings.ToLower(t))
		}
	}
	return terms
}

// HideURL returns u without the highlight parameter.
func HideURL(u *url.URL) string {
	clean := *u
	q := clean.Query()
	q.Del(Param)
	clean.RawQuery = q.Encode()
	return clean.RequestURI()
}

// PageResult reports what Page changed.
type PageResult struct {
	Terms      []string
	Highlights int
	// HideLink is false when the document has no #searchbox element.
	HideLink bool
}

// Page reads an HTML document from r, highlights every term of the highlight
// parameter value inside <body>, appends a "Hide Search Matches" link pointing
// at hideURL to the #searchbox element and writes the document to w.
func Page(w io.Writer, r io.Reader, param, hideURL string) (PageResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return PageResult{}, fmt.Errorf("failed to parse page: %w", err)
	}
	res := PageResult{Terms: ParamTerms(param)}
	if len(res.Terms) > 0 {
		body := Find(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
		for _, term := range res.Terms {
			res.Highlights += Text(term, DefaultClass, body)
		}
		if box := Find(doc, func(n *html.Node) bool { return Attr(n, "id") == "searchbox" }); box != nil {
			box.AppendChild(hideLink(hideURL))
			res.HideLink = true
		}
	}
	if err := html.Render(w, doc); err != nil {
		return res, fmt.Errorf("failed to render page: %w", err)
	}
	return res, nil
}

func hideLink(href string) *html.Node {
	a := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr: []html.Attribute{
			{Key: "href", Val: href},
			{Key: "style", Val: "font-style: italic"},
		},
	}
	a.AppendChild(&html.Node{Type: html.TextNode, Data: "Hide Search Matches"})
	p := &html.Node{
		Type:     html.ElementNode,
		Data:     "p",
		DataAtom: atom.P,
		Attr:     []html.Attribute{{Key: "class", Val: "highlight-link"}},
	}
	p.AppendChild(a)
	return p
}

// Find returns the first element under n, n included, matching match.
func Find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of the attribute key on n, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
