// Package highlight marks search terms inside HTML trees.
//
// Nodes are classified into a closed set of kinds and walked with a Visitor,
// so every kind is handled explicitly.
package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind is the closed set of node kinds the highlighter distinguishes.
type Kind int

const (
	// KindText is a text node.
	KindText Kind = iota
	// KindContainer is a document or element node whose children are walked.
	KindContainer
	// KindFormControl is a button, select or textarea element.
	KindFormControl
	// KindOther covers comments, doctypes, script and style elements and anything else.
	KindOther
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindContainer:
		return "container"
	case KindFormControl:
		return "form_control"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Classify returns the kind of n.
func Classify(n *html.Node) Kind {
	switch n.Type {
	case html.TextNode:
		return KindText
	case html.DocumentNode:
		return KindContainer
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Button, atom.Select, atom.Textarea:
			return KindFormControl
		case atom.Script, atom.Style:
			return KindOther
		}
		return KindContainer
	default:
		return KindOther
	}
}

// Visitor receives one call per node, chosen by the node's Kind.
type Visitor interface {
	VisitText(n *html.Node)
	// VisitContainer and VisitFormControl return whether Walk should descend.
	VisitContainer(n *html.Node) bool
	VisitFormControl(n *html.Node) bool
	VisitOther(n *html.Node)
}

// Walk visits n and its descendants depth-first. A visitor may insert siblings
// after the node it is visiting; those are not visited.
func Walk(n *html.Node, v Visitor) {
	switch Classify(n) {
	case KindText:
		v.VisitText(n)
	case KindContainer:
		if v.VisitContainer(n) {
			walkChildren(n, v)
		}
	case KindFormControl:
		if v.VisitFormControl(n) {
			walkChildren(n, v)
		}
	case KindOther:
		v.VisitOther(n)
	}
}

func walkChildren(n *html.Node, v Visitor) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, v)
		c = next
	}
}

// HasClass reports whether n carries class name in its class attribute.
func HasClass(n *html.Node, name string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == name {
					return true
				}
			}
		}
	}
	return false
}

// indexFold finds the first case-insensitive occurrence of the lowercase
// needle in s and returns its byte range in s, or -1, -1.
func indexFold(s, needle string) (int, int) {
	if needle == "" {
		return -1, -1
	}
	for i := range s {
		j, k := i, 0
		for k < len(needle) && j < len(s) {
			sr, sw := utf8.DecodeRuneInString(s[j:])
			nr, nw := utf8.DecodeRuneInString(needle[k:])
			if unicode.ToLower(sr) != nr {
				break
			}
			j += sw
			k += nw
		}
		if k == len(needle) {
			return i, j
		}
	}
	return -1, -1
}
