package render

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLPage keeps the search results as an HTML tree: a #search-results
// container holding the heading, the status paragraph and the result list.
type HTMLPage struct {
	mu       sync.Mutex
	root     *html.Node
	progress *html.Node
	title    *html.Node
	dots     *html.Node
	status   *html.Node
	list     *html.Node
	finished bool
}

// NewHTMLPage returns an empty page.
func NewHTMLPage() *HTMLPage {
	p := &HTMLPage{
		root:     element(atom.Div, "id", "search-results"),
		progress: element(atom.P, "id", "search-progress"),
	}
	p.root.AppendChild(p.progress)
	return p
}

func (p *HTMLPage) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range []*html.Node{p.title, p.status, p.list} {
		if n != nil && n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	p.title = element(atom.H2)
	setText(p.title, HeadingSearching)
	p.dots = element(atom.Span)
	p.title.AppendChild(p.dots)
	p.status = element(atom.P, "class", "search-summary")
	p.list = element(atom.Ul, "class", "search")
	p.root.AppendChild(p.title)
	p.root.AppendChild(p.status)
	p.root.AppendChild(p.list)
	setText(p.progress, ProgressMessage)
	p.finished = false
	return nil
}

func (p *HTMLPage) ClearProgress() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	removeChildren(p.progress)
	return nil
}

func (p *HTMLPage) SetDots(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dots != nil {
		setText(p.dots, strings.Repeat(".", n))
	}
	return nil
}

func (p *HTMLPage) AppendItem(item Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.list == nil {
		return nil
	}

	li := element(atom.Li)
	a := element(atom.A, "href", item.Link)
	setText(a, item.Title)
	li.AppendChild(a)
	switch {
	case item.Description != "":
		span := element(atom.Span)
		setText(span, " ("+item.Description+")")
		li.AppendChild(span)
	case item.summary != nil:
		li.AppendChild(cloneTree(item.summary))
	}
	p.list.AppendChild(li)
	return nil
}

func (p *HTMLPage) Finish(title, status string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.title != nil {
		setText(p.title, title)
		p.dots = nil
	}
	if p.status != nil {
		setText(p.status, status)
	}
	p.finished = true
	return nil
}

// Finished reports whether Finish ran since the last Begin.
func (p *HTMLPage) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

// Render writes the #search-results container.
func (p *HTMLPage) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return html.Render(w, p.root)
}

// String returns the rendered container.
func (p *HTMLPage) String() string {
	var buf bytes.Buffer
	_ = p.Render(&buf)
	return buf.String()
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func removeChildren(n *html.Node) {
	for n.LastChild != nil {
		n.RemoveChild(n.LastChild)
	}
}

func setText(n *html.Node, text string) {
	removeChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func cloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneTree(child))
	}
	return c
}
