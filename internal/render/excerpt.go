package render

import (
	"bytes"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hyperjump/docsearch/internal/highlight"
)

const (
	excerptLead   = 120
	excerptLength = 240
	ellipsis      = "..."
)

// HTMLToText returns the text content of the first [role="main"] element of
// a rendered page, with header permalinks removed. It returns false when the
// page has no such element.
func HTMLToText(page string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false
	}
	removeHeaderLinks(doc)
	main := highlight.Find(doc, func(n *html.Node) bool {
		return highlight.Attr(n, "role") == "main"
	})
	if main == nil {
		return "", false
	}
	return textContent(main), true
}

func removeHeaderLinks(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if highlight.HasClass(c, "headerlink") {
			n.RemoveChild(c)
		} else {
			removeHeaderLinks(c)
		}
		c = next
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Excerpt returns the text window around the first occurrence of the last
// keyword found in text: it starts 120 characters before the match and
// spans 240 characters, with "..." marking either cut end.
func Excerpt(text string, keywords []string) string {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	start := 0
	for _, kw := range keywords {
		if i := runeIndex(lower, []rune(strings.ToLower(kw))); i > -1 {
			start = i
		}
	}
	start = max(start-excerptLead, 0)
	end := min(start+excerptLength, len(runes))

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(strings.TrimSpace(string(runes[start:end])))
	if start+excerptLength < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// Summary is a highlighted excerpt.
type Summary struct {
	// Text is the excerpt without markup.
	Text string
	// Node is a <div class="context"> holding the excerpt with highlight spans.
	Node *html.Node
}

// HTML renders the summary node.
func (s *Summary) HTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, s.Node); err != nil {
		return html.EscapeString(s.Text)
	}
	return buf.String()
}

// MakeSummary builds the excerpt of a fetched page. keywords are the stemmed
// search terms used to place the window; hlWords are highlighted in it.
func MakeSummary(page string, keywords, hlWords []string, logger *zap.Logger) *Summary {
	text, ok := HTMLToText(page)
	if !ok {
		logger.Warn("content block not found; search excerpts look for the [role=main] element, check the theme or template")
	}
	excerpt := Excerpt(text, keywords)

	div := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: "context"}},
	}
	div.AppendChild(&html.Node{Type: html.TextNode, Data: excerpt})
	for _, w := range hlWords {
		highlight.Text(w, highlight.DefaultClass, div)
	}
	return &Summary{Text: excerpt, Node: div}
}

func runeIndex(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
