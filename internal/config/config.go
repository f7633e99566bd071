// Package config provides configuration loading and structs for the docsearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/docsearch/internal/language"
	"github.com/hyperjump/docsearch/internal/ranking"
	"github.com/hyperjump/docsearch/internal/render"
)

// Config holds all configuration for the application.
type Config struct {
	Debug         bool                 `yaml:"debug"`
	Server        ServerConfig         `yaml:"server"`
	Index         IndexConfig          `yaml:"index"`
	Documentation DocumentationConfig  `yaml:"documentation"`
	Language      LanguageConfig       `yaml:"language"`
	Fetch         FetchConfig          `yaml:"fetch"`
	Render        RenderConfig         `yaml:"render"`
	Scorer        ranking.ScorerConfig `yaml:"scorer"`
	Storage       StorageConfig        `yaml:"storage"`
	Watch         WatchConfig          `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// IndexConfig locates the searchindex.js asset. URL wins over Path.
type IndexConfig struct {
	Path string `yaml:"path"`
	URL  string `yaml:"url"`
}

// DocumentationConfig describes the built site, mirroring Sphinx's
// DOCUMENTATION_OPTIONS.
type DocumentationConfig struct {
	Builder    string `yaml:"builder"`
	URLRoot    string `yaml:"url_root"`
	FileSuffix string `yaml:"file_suffix"`
	LinkSuffix string `yaml:"link_suffix"`
	HasSource  *bool  `yaml:"has_source"`
}

// HasSourceOrDefault returns whether excerpts are fetched; defaults to true when unset.
func (d *DocumentationConfig) HasSourceOrDefault() bool {
	if d.HasSource != nil {
		return *d.HasSource
	}
	return true
}

// RenderOptions converts the section to render options.
func (d *DocumentationConfig) RenderOptions() render.Options {
	return render.Options{
		Builder:    d.Builder,
		URLRoot:    d.URLRoot,
		FileSuffix: d.FileSuffix,
		LinkSuffix: d.LinkSuffix,
		HasSource:  d.HasSourceOrDefault(),
	}
}

// LanguageConfig selects the stemmer and stop words.
type LanguageConfig struct {
	Stemmer        string   `yaml:"stemmer"`
	ExtraStopWords []string `yaml:"extra_stopwords"`
}

// FetchConfig says where document bodies for excerpts come from. DocsDir is
// used when BaseURL is empty.
type FetchConfig struct {
	BaseURL string        `yaml:"base_url"`
	DocsDir string        `yaml:"docs_dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// RenderConfig holds pacing settings for incremental rendering.
type RenderConfig struct {
	ItemInterval  time.Duration `yaml:"item_interval"`
	PulseInterval time.Duration `yaml:"pulse_interval"`
	DefaultLimit  int           `yaml:"default_limit"`

	// decoded is set when the section came from YAML; item_interval: 0 then
	// turns pacing off instead of selecting the default.
	decoded bool
}

// UnmarshalYAML fills the intervals with their defaults before decoding.
func (r *RenderConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain RenderConfig
	p := plain{ItemInterval: render.DefaultItemInterval, PulseInterval: render.DefaultPulseInterval}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*r = RenderConfig(p)
	r.decoded = true
	return nil
}

// StorageConfig holds the page cache database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	CachePages   *bool  `yaml:"cache_pages"`
}

// CachePagesOrDefault returns whether fetched pages are cached; defaults to true when unset.
func (s *StorageConfig) CachePagesOrDefault() bool {
	if s.CachePages != nil {
		return *s.CachePages
	}
	return true
}

// WatchConfig controls reloading when the documentation is rebuilt.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(&cfg, filepath.Dir(path))
}

// Default returns the default configuration with "./" paths resolved against dir.
func Default(dir string) (*Config, error) {
	return finish(&Config{}, dir)
}

func finish(cfg *Config, configDir string) (*Config, error) {
	ApplyDefaults(cfg)

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Index.Path != "" {
		cfg.Index.Path = expandPath(cfg.Index.Path, configDir)
	}
	if cfg.Fetch.DocsDir != "" {
		cfg.Fetch.DocsDir = expandPath(cfg.Fetch.DocsDir, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports settings the services cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Index.Path == "" && c.Index.URL == "" {
		return fmt.Errorf("index.path or index.url is required")
	}
	if _, err := language.NewStemmer(c.Language.Stemmer); err != nil {
		return err
	}
	if c.Render.ItemInterval < 0 || c.Render.PulseInterval < 0 {
		return fmt.Errorf("render intervals must not be negative")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
