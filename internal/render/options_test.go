package render

import "testing"

func TestOptions_URLs(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		docname     string
		wantRequest string
		wantLink    string
	}{
		{"dirhtml page", Options{Builder: "dirhtml", URLRoot: "/"}, "guide/intro", "/guide/intro/", "/guide/intro/"},
		{"dirhtml nested index", Options{Builder: "dirhtml", URLRoot: "/"}, "guide/index", "/guide/", "/guide/"},
		{"dirhtml root index", Options{Builder: "dirhtml", URLRoot: "/docs/"}, "index", "/docs/", "/docs/"},
		{"html", Options{Builder: "html", URLRoot: "/", FileSuffix: ".html", LinkSuffix: ".html"}, "guide/intro", "/guide/intro.html", "guide/intro.html"},
		{"html no link suffix", Options{URLRoot: "../", FileSuffix: ".html"}, "api", "../api.html", "api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, link := tt.opts.URLs(tt.docname)
			if req != tt.wantRequest || link != tt.wantLink {
				t.Errorf("URLs(%q) = %q, %q; want %q, %q", tt.docname, req, link, tt.wantRequest, tt.wantLink)
			}
		})
	}
}
