package config

import (
	"strings"
	"time"

	"github.com/hyperjump/docsearch/internal/render"
)

// DefaultIndexPath is where sphinx-build writes the index for the html builder.
const DefaultIndexPath = "./_build/html/searchindex.js"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Index.Path == "" && cfg.Index.URL == "" {
		cfg.Index.Path = DefaultIndexPath
	}
	if cfg.Documentation.Builder == "" {
		cfg.Documentation.Builder = "html"
	}
	// A remote site resolves document URLs against fetch.base_url, so they stay relative.
	if cfg.Documentation.URLRoot == "" && cfg.Index.URL == "" {
		cfg.Documentation.URLRoot = "/"
	}
	if cfg.Documentation.FileSuffix == "" {
		cfg.Documentation.FileSuffix = ".html"
	}
	if cfg.Documentation.LinkSuffix == "" {
		cfg.Documentation.LinkSuffix = cfg.Documentation.FileSuffix
	}
	if cfg.Language.Stemmer == "" {
		cfg.Language.Stemmer = "porter"
	}
	if cfg.Fetch.BaseURL == "" && cfg.Fetch.DocsDir == "" {
		switch {
		case cfg.Index.URL != "":
			cfg.Fetch.BaseURL = cfg.Index.URL[:strings.LastIndex(cfg.Index.URL, "/")+1]
		case cfg.Index.Path != "":
			cfg.Fetch.DocsDir = parentDir(cfg.Index.Path)
		}
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 10 * time.Second
	}
	if cfg.Render.ItemInterval == 0 && !cfg.Render.decoded {
		cfg.Render.ItemInterval = render.DefaultItemInterval
	}
	if cfg.Render.PulseInterval == 0 {
		cfg.Render.PulseInterval = render.DefaultPulseInterval
	}
	cfg.Scorer.ApplyDefaults()
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/docsearch/data/db/pages.db"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 400 * time.Millisecond
	}
}

// parentDir keeps the "./" prefix so the result is expanded like the index path.
func parentDir(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "."
	}
	return p[:i]
}
