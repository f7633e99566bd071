// Package render turns ranked results into result items, one at a time,
// resolving document URLs and building highlighted excerpts.
package render

import "strings"

// BuilderDirHTML is the builder whose pages live at "<docname>/".
const BuilderDirHTML = "dirhtml"

// Options describes how the documentation site is laid out.
type Options struct {
	// Builder is "dirhtml" or any normal html builder name.
	Builder string
	// URLRoot prefixes every fetched URL.
	URLRoot string
	// FileSuffix is appended to docnames for fetches with normal builders (".html").
	FileSuffix string
	// LinkSuffix is appended to docnames for result links with normal builders.
	LinkSuffix string
	// HasSource enables fetching documents to build excerpts.
	HasSource bool
}

// URLs returns the URL to fetch docname from and the URL result links point to.
func (o Options) URLs(docname string) (requestURL, linkURL string) {
	if o.Builder == BuilderDirHTML {
		dirname := docname + "/"
		switch {
		case strings.HasSuffix(dirname, "/index/"):
			dirname = dirname[:len(dirname)-len("index/")]
		case dirname == "index/":
			dirname = ""
		}
		url := o.URLRoot + dirname
		return url, url
	}
	return o.URLRoot + docname + o.FileSuffix, docname + o.LinkSuffix
}
