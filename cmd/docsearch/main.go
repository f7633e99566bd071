// Package main is the docsearch CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docsearch/internal/cli"
	"github.com/hyperjump/docsearch/internal/config"
	"github.com/hyperjump/docsearch/internal/highlight"
	"github.com/hyperjump/docsearch/internal/language"
	"github.com/hyperjump/docsearch/internal/metrics"
	"github.com/hyperjump/docsearch/internal/models"
	"github.com/hyperjump/docsearch/internal/ranking"
	"github.com/hyperjump/docsearch/internal/render"
	"github.com/hyperjump/docsearch/internal/search"
	"github.com/hyperjump/docsearch/internal/searchindex"
	"github.com/hyperjump/docsearch/internal/server"
	"github.com/hyperjump/docsearch/internal/storage"
	"github.com/hyperjump/docsearch/internal/watcher"
	"github.com/hyperjump/docsearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docsearch/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if it exists, and a missing default file falls
// back to the built-in defaults relative to the current directory, so that
// "docsearch search" works from a Sphinx project. Returns the config and the
// path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if storage.Exists(fallback) {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
			if !storage.Exists(path) {
				cfg, err := config.Default(cwd)
				if err != nil {
					return nil, "", err
				}
				return cfg, "", nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "highlight":
		runHighlight()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("docsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (queries, index reloads, requests)")
	watch := fs.Bool("watch", false, "reload the index when the documentation is rebuilt")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", utils.OrDefault(resolvedConfigPath, "(defaults)")),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	components.Cache.LoadAsync(ctx)

	watching := cfg.Watch.Enabled || *watch
	if watching {
		reloader := watcher.NewReloader(components.Cache, components.Storage, cfg.Documentation.URLRoot, logger)
		watchers, err := reloader.Watch(ctx, watcher.WatchOptions{
			IndexPath: cfg.Index.Path,
			DocsDir:   cfg.Fetch.DocsDir,
			Debounce:  cfg.Watch.Debounce,
		})
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		for _, w := range watchers {
			logger.Info("watching", zap.Strings("directories", w.Directories()))
		}
	}

	opts := []server.Option{
		server.WithMetrics(components.Metrics),
		server.WithWatching(watching),
		server.WithDocs(components.Docs),
	}
	if components.Storage != nil {
		opts = append(opts, server.WithStorage(components.Storage))
	}
	srv := server.NewServer(components.Engine, components.Cache, cfg, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage and query syntax hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: docsearch search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Every word must match a page (after stemming); stop words and numbers are ignored.
  • Prefix a word with - to drop pages containing it: widget -deprecated
  • Dotted names search the object inventory: foo.Bar, Bar, foo.
  • Result links carry ?highlight= so "docsearch server" can mark the matches.

Examples:
  docsearch search configuration
  docsearch search "install plugin" -limit 5
  docsearch search --output json widget -deprecated
  docsearch search --server http://localhost:8080 foo.Bar
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves flags (and their values) that appear after the query
// to the front so that flag.Parse sees them. A query word starting with "-"
// is an exclusion, not a flag, unless it names a known flag.
func searchArgsReorder(args []string, known map[string]bool) []string {
	if len(args) == 0 {
		return args
	}
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		name := strings.TrimLeft(a, "-")
		if eq := strings.Index(name, "="); eq >= 0 {
			name = name[:eq]
		}
		if len(a) < 2 || a[0] != '-' || !known[name] {
			rest = append(rest, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && !boolFlags[name] && i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, rest...)
}

var boolFlags = map[string]bool{"plain": true}

func flagNames(fs *flag.FlagSet) map[string]bool {
	names := make(map[string]bool)
	fs.VisitAll(func(f *flag.Flag) { names[f.Name] = true })
	return names
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = search the index directly)")
	limit := fs.Int("limit", 0, "number of results to show (0 = all)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	plain := fs.Bool("plain", false, "disable terminal colors")
	fs.Usage = func() { printSearchUsage(fs) }
	// Everything after "--" is query text.
	args, tail := splitDashDash(os.Args[2:])
	_ = fs.Parse(searchArgsReorder(args, flagNames(fs)))

	queryStr := buildSearchQuery(append(fs.Args(), tail...))
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	query := &models.SearchQuery{Query: queryStr, Limit: *limit}

	if *serverURL != "" {
		response, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// The terminal has no use for pacing.
	cfg.Render.ItemInterval = 0
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The index loads while the page already shows the search as pending.
	if format == cli.OutputText {
		styles := render.DefaultTextStyles()
		if *plain {
			styles = render.PlainTextStyles()
		}
		if _, err := components.Engine.SearchCache(ctx, components.Cache, query, render.NewTextPage(os.Stdout, styles)); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	page := render.NewCollectPage()
	run, err := components.Engine.SearchCache(ctx, components.Cache, query, page)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, search.NewResponse(run, page), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func splitDashDash(args []string) (before, after []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	params := url.Values{"q": {query.Query}}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	var response models.SearchResponse
	if err := getJSON(strings.TrimSuffix(serverURL, "/")+"/api/v1/search?"+params.Encode(), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func getJSON(target string, out any) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = inspect the index directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status *models.StatusResponse
	if *serverURL != "" {
		status = &models.StatusResponse{}
		if err := getJSON(strings.TrimSuffix(*serverURL, "/")+"/api/v1/status", status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		ctx := context.Background()
		if _, err := components.Cache.Load(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		status = server.CollectStatus(ctx, components.Cache, components.Storage, cfg, cfg.Watch.Enabled)
	}

	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runHighlight() {
	fs := flag.NewFlagSet("highlight", flag.ExitOnError)
	terms := fs.String("terms", "", "space-separated words to highlight")
	hideURL := fs.String("hide-url", "", "link target of the \"Hide Search Matches\" link (default: the file name)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 || strings.TrimSpace(*terms) == "" {
		fmt.Println("Usage: docsearch highlight --terms \"word ...\" <page.html>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	n, err := highlightFile(os.Stdout, path, *terms, utils.OrDefault(*hideURL, filepath.Base(path)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Highlight failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d match(es) highlighted\n", n)
}

// highlightFile writes the page at path to w with terms highlighted.
func highlightFile(w io.Writer, path, terms, hideURL string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	res, err := highlight.Page(w, f, terms, hideURL)
	if err != nil {
		return 0, err
	}
	return res.Highlights, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	out := fs.String("output", "config.yaml", "where to write the config file")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(os.Args[2:])

	if err := writeDefaultConfig(*out, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}

// writeDefaultConfig saves the built-in defaults with paths relative to the
// config file.
func writeDefaultConfig(path string, force bool) error {
	if storage.Exists(path) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = "./.docsearch/pages.db"
	return config.Save(path, cfg)
}

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Cache   *searchindex.Cache
	Engine  *search.Engine
	// Docs serves documentation pages; it bypasses the page cache.
	Docs    render.Fetcher
	Metrics *metrics.Metrics
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	stemmer, err := language.NewStemmer(cfg.Language.Stemmer)
	if err != nil {
		return nil, err
	}
	m := metrics.New(nil)

	var docs render.Fetcher
	if cfg.Fetch.BaseURL != "" {
		docs = render.NewHTTPFetcher(cfg.Fetch.BaseURL, cfg.Fetch.Timeout)
	} else {
		docs = &render.FileFetcher{Root: cfg.Fetch.DocsDir, StripPrefix: cfg.Documentation.URLRoot}
	}

	components := &Components{Docs: docs, Metrics: m}
	fetcher := docs
	if cfg.Storage.CachePagesOrDefault() {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Warn("page cache disabled", zap.String("database_path", cfg.Storage.DatabasePath), zap.Error(err))
		} else {
			components.Storage = store
			cached := render.NewCachingFetcher(docs, store, logger, m)
			cached.Timeout = cfg.Fetch.Timeout
			fetcher = cached
		}
	}

	renderer := render.NewRenderer(cfg.Documentation.RenderOptions(),
		render.WithFetcher(fetcher),
		render.WithItemInterval(cfg.Render.ItemInterval),
		render.WithLogger(logger),
		render.WithMetrics(m),
	)
	components.Engine = search.NewEngine(ranking.NewRanker(&cfg.Scorer), renderer,
		search.WithStemmer(stemmer),
		search.WithStopWords(language.EnglishStopWords(cfg.Language.ExtraStopWords...)),
		search.WithPulseInterval(cfg.Render.PulseInterval),
		search.WithLogger(logger),
		search.WithMetrics(m),
	)

	loader, err := searchindex.NewLoader(cfg.Index.Path, cfg.Index.URL, &http.Client{Timeout: cfg.Fetch.Timeout})
	if err != nil {
		components.Close()
		return nil, err
	}
	components.Cache = searchindex.NewCache(loader,
		searchindex.WithLogger(logger),
		searchindex.WithLoadObserver(m.IndexLoad),
	)
	components.Cache.Subscribe(func(idx *searchindex.Index) {
		m.SetIndexDocuments(idx.DocCount())
	})
	return components, nil
}

func printUsage() {
	fmt.Println(`docsearch - Search Sphinx documentation from the terminal or over HTTP

Usage:
  docsearch server [flags]                      Start the HTTP server
  docsearch search [flags] <query>              Search the documentation
  docsearch status [flags]                      Show index and page cache status
  docsearch highlight --terms <words> <file>    Highlight words in a built page
  docsearch init [flags]                        Write a default config.yaml
  docsearch version                             Show version
  docsearch help                                Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/docsearch/config.yaml, then ./config.yaml)
  --debug            Enable debug logging
  --watch            Reload the index when the documentation is rebuilt

Search Flags:
  --config string    Config file path
  --server string    Server URL; empty searches the index directly (default)
  --limit int        Number of results to show (default: all)
  --output string    Output format: text, compact, or json (default: text)
  --plain            Disable terminal colors

Status Flags:
  --config string    Config file path
  --server string    Server URL; empty inspects the index directly (default)
  --output string    Output format: text or json (default: text)

Examples:
  docsearch init
  docsearch server --watch
  docsearch search "install plugin"
  docsearch search --output json widget -deprecated
  docsearch highlight --terms "widget" _build/html/intro.html > intro.html
  docsearch status --output json`)
}
