package highlight

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultClass is the class added to highlighted matches.
const DefaultClass = "highlighted"

const noHighlightClass = "nohighlight"

type highlighter struct {
	term      string
	className string
	count     int
}

// Text wraps every case-insensitive occurrence of term in the text under root
// in a <span class=className>, or a <tspan> inside SVG. Text whose parent
// already has className or "nohighlight" is left alone. It returns the
// number of occurrences marked.
func Text(term, className string, root *html.Node) int {
	term = strings.ToLower(term)
	if term == "" || root == nil {
		return 0
	}
	h := &highlighter{term: term, className: className}
	Walk(root, h)
	return h.count
}

func (h *highlighter) VisitText(n *html.Node) {
	parent := n.Parent
	if parent == nil || HasClass(parent, h.className) || HasClass(parent, noHighlightClass) {
		return
	}
	svg := inSVG(parent)
	for n != nil {
		start, end := indexFold(n.Data, h.term)
		if start < 0 {
			return
		}
		mark := h.mark(svg)
		mark.AppendChild(&html.Node{Type: html.TextNode, Data: n.Data[start:end]})
		parent.InsertBefore(mark, n.NextSibling)

		var rest *html.Node
		if end < len(n.Data) {
			rest = &html.Node{Type: html.TextNode, Data: n.Data[end:]}
			parent.InsertBefore(rest, mark.NextSibling)
		}
		n.Data = n.Data[:start]
		h.count++
		n = rest
	}
}

func (h *highlighter) VisitContainer(*html.Node) bool   { return true }
func (h *highlighter) VisitFormControl(*html.Node) bool { return true }
func (h *highlighter) VisitOther(*html.Node)            {}

func (h *highlighter) mark(svg bool) *html.Node {
	if svg {
		return &html.Node{
			Type:      html.ElementNode,
			Data:      "tspan",
			Namespace: "svg",
			Attr:      []html.Attribute{{Key: "class", Val: h.className}},
		}
	}
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: h.className}},
	}
}

// inSVG reports whether the closest body, svg or foreignObject ancestor of n
// (n included) is an svg element.
func inSVG(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		switch {
		case n.DataAtom == atom.Body, n.Data == "foreignObject":
			return false
		case n.Data == "svg":
			return true
		}
	}
	return false
}
