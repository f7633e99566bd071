package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
index:
  path: "./_build/html/searchindex.js"
documentation:
  builder: dirhtml
  has_source: false
render:
  item_interval: 10ms
scorer:
  title: 20
  obj_prio:
    0: 30
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if want := filepath.Join(dir, "_build", "html", "searchindex.js"); cfg.Index.Path != want {
		t.Errorf("index path = %s, want %s", cfg.Index.Path, want)
	}
	if want := filepath.Join(dir, "_build", "html"); cfg.Fetch.DocsDir != want {
		t.Errorf("docs dir = %s, want %s", cfg.Fetch.DocsDir, want)
	}
	if cfg.Render.ItemInterval != 10*time.Millisecond {
		t.Errorf("item interval: %v", cfg.Render.ItemInterval)
	}
	if cfg.Scorer.Title != 20 || cfg.Scorer.Term != 5 || cfg.Scorer.ObjPrio[0] != 30 {
		t.Errorf("scorer: %+v", cfg.Scorer)
	}
	opts := cfg.Documentation.RenderOptions()
	if opts.Builder != "dirhtml" || opts.HasSource || opts.LinkSuffix != ".html" {
		t.Errorf("render options: %+v", opts)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_explicitZeros(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
render:
  item_interval: 0
scorer:
  partial_term: 0
  partial_title: 0
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.ItemInterval != 0 {
		t.Errorf("item interval = %v, want 0", cfg.Render.ItemInterval)
	}
	if cfg.Render.PulseInterval != 500*time.Millisecond {
		t.Errorf("pulse interval = %v", cfg.Render.PulseInterval)
	}
	if cfg.Scorer.PartialTerm != 0 || cfg.Scorer.PartialTitle != 0 {
		t.Errorf("scorer zeros replaced: %+v", cfg.Scorer)
	}
	if cfg.Scorer.Term != 5 || cfg.Scorer.Title != 15 {
		t.Errorf("scorer defaults missing: %+v", cfg.Scorer)
	}
}

func TestLoad_indexURL(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
index:
  url: "https://docs.example.org/en/latest/searchindex.js"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Index.Path != "" {
		t.Errorf("index path should stay empty, got %s", cfg.Index.Path)
	}
	if cfg.Fetch.BaseURL != "https://docs.example.org/en/latest/" || cfg.Fetch.DocsDir != "" {
		t.Errorf("fetch: %+v", cfg.Fetch)
	}
	if cfg.Documentation.URLRoot != "" {
		t.Errorf("url root should stay relative, got %q", cfg.Documentation.URLRoot)
	}
}

func TestLoad_errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: ["},
		{"bad stemmer", "language:\n  stemmer: klingon\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"negative interval", "render:\n  pulse_interval: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Index.Path != DefaultIndexPath {
		t.Errorf("index path: %s", cfg.Index.Path)
	}
	if cfg.Fetch.DocsDir != "./_build/html" {
		t.Errorf("docs dir: %s", cfg.Fetch.DocsDir)
	}
	if cfg.Documentation.Builder != "html" || cfg.Documentation.URLRoot != "/" || cfg.Documentation.LinkSuffix != ".html" {
		t.Errorf("documentation defaults: %+v", cfg.Documentation)
	}
	if cfg.Language.Stemmer != "porter" {
		t.Errorf("stemmer: %s", cfg.Language.Stemmer)
	}
	if cfg.Render.ItemInterval != 5*time.Millisecond || cfg.Render.PulseInterval != 500*time.Millisecond {
		t.Errorf("render defaults: %+v", cfg.Render)
	}
	if cfg.Scorer.ObjNameMatch != 11 || cfg.Scorer.PartialTerm != 2 {
		t.Errorf("scorer defaults: %+v", cfg.Scorer)
	}
	if cfg.Watch.Debounce != 400*time.Millisecond {
		t.Errorf("watch debounce: %v", cfg.Watch.Debounce)
	}
	if !cfg.Storage.CachePagesOrDefault() || !cfg.Documentation.HasSourceOrDefault() {
		t.Error("cache_pages and has_source should default to true")
	}
}

func TestApplyDefaults_linkSuffixFollowsFileSuffix(t *testing.T) {
	cfg := &Config{Documentation: DocumentationConfig{FileSuffix: ".htm"}}
	ApplyDefaults(cfg)
	if cfg.Documentation.LinkSuffix != ".htm" {
		t.Errorf("link suffix: %s", cfg.Documentation.LinkSuffix)
	}
}

func TestStorageConfig_CachePagesOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		s := &StorageConfig{}
		if !s.CachePagesOrDefault() {
			t.Error("want true")
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		s := &StorageConfig{CachePages: &f}
		if s.CachePagesOrDefault() {
			t.Error("want false")
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	cfg := &Config{
		Server: ServerConfig{Host: "localhost", Port: 9090},
		Index:  IndexConfig{Path: "/srv/docs/searchindex.js"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Index.Path != "/srv/docs/searchindex.js" {
		t.Errorf("loaded: %+v", loaded)
	}
}

func TestDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Default(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "_build", "html", "searchindex.js"); cfg.Index.Path != want {
		t.Errorf("index path = %s, want %s", cfg.Index.Path, want)
	}
	if !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Errorf("database path should be absolute: %s", cfg.Storage.DatabasePath)
	}
}
