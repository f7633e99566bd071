package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/hyperjump/docsearch/internal/highlight"
)

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ")

// TextStyles are the terminal styles used by TextPage.
type TextStyles struct {
	Heading   lipgloss.Style
	Title     lipgloss.Style
	Link      lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultTextStyles returns the default terminal styles.
func DefaultTextStyles() TextStyles {
	return TextStyles{
		Heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Title:     lipgloss.NewStyle().Bold(true),
		Link:      lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
	}
}

// PlainTextStyles returns styles that render text unchanged.
func PlainTextStyles() TextStyles {
	s := lipgloss.NewStyle()
	return TextStyles{Heading: s, Title: s, Link: s, Muted: s, Highlight: s}
}

// TextPage streams results to a terminal as they are appended.
type TextPage struct {
	mu     sync.Mutex
	w      io.Writer
	styles TextStyles
	count  int
	err    error
}

// NewTextPage returns a TextPage writing to w.
func NewTextPage(w io.Writer, styles TextStyles) *TextPage {
	return &TextPage{w: w, styles: styles}
}

func (p *TextPage) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = 0
	p.err = nil
	p.printf("%s\n", p.styles.Heading.Render(HeadingSearching+"..."))
	return p.err
}

func (p *TextPage) ClearProgress() error { return nil }

// SetDots is ignored; the terminal output is append-only.
func (p *TextPage) SetDots(int) error { return nil }

func (p *TextPage) AppendItem(item Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	p.printf("%3d. %s\n", p.count, p.styles.Title.Render(item.Title))
	p.printf("     %s\n", p.styles.Link.Render(item.Link))
	switch {
	case item.Description != "":
		p.printf("     %s\n", p.styles.Muted.Render("("+item.Description+")"))
	case item.summary != nil:
		p.printf("     %s\n", p.styledSummary(item.summary))
	}
	return p.err
}

func (p *TextPage) Finish(title, status string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("\n%s\n%s\n", p.styles.Heading.Render(title), status)
	return p.err
}

func (p *TextPage) styledSummary(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := newlines.Replace(n.Data)
			if highlight.HasClass(n.Parent, highlight.DefaultClass) {
				text = p.styles.Highlight.Render(text)
			}
			b.WriteString(text)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// printf keeps the first write error.
func (p *TextPage) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
