// Package cli formats search and status responses for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/docsearch/internal/models"
	"github.com/hyperjump/docsearch/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

const excerptWidth = 160

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		return writeSearchResultsCompact(w, response)
	default:
		return writeSearchResultsText(w, response)
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) error {
	ew := &errWriter{w: w}
	ew.printf("%s\n", utils.OrDefault(response.Title, "Search Results"))
	for _, r := range response.Results {
		ew.printf("%3d. %s  [%d]\n", r.Rank, r.Title, r.Score)
		ew.printf("     %s\n", r.Link)
		switch {
		case r.Description != "":
			ew.printf("     (%s)\n", r.Description)
		case r.Excerpt != "":
			ew.printf("     %s\n", utils.Truncate(oneLine(r.Excerpt), excerptWidth))
		}
	}
	if len(response.Results) < response.Total {
		ew.printf("     ... %d more\n", response.Total-len(response.Results))
	}
	ew.printf("\n%s (%dms)\n", response.Status, response.QueryTime)
	return ew.err
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) error {
	ew := &errWriter{w: w}
	for _, r := range response.Results {
		ew.printf("%d\t%d\t%s\t%s\n", r.Rank, r.Score, r.Title, r.Link)
	}
	return ew.err
}

// WriteStatus writes a status response to w. Compact is treated as text.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	ew := &errWriter{w: w}
	idx := status.Index
	ew.printf("index_source:       %s\n", idx.Source)
	ew.printf("index_loaded:       %t\n", idx.Loaded)
	if idx.Loaded {
		ew.printf("loaded_at:          %s\n", idx.LoadedAt.Format("2006-01-02 15:04:05"))
		ew.printf("documents:          %d\n", idx.Documents)
		ew.printf("terms:              %d   # plus %d title terms\n", idx.Terms, idx.TitleTerms)
		ew.printf("objects:            %d   # of %d types\n", idx.Objects, idx.ObjTypes)
	}
	ew.printf("\n# configuration\n")
	ew.printf("stemmer:            %s\n", status.Stemmer)
	ew.printf("builder:            %s\n", status.Builder)
	ew.printf("cached_pages:       %d\n", status.CachedPages)
	ew.printf("cache_bytes:        %d\n", status.CacheBytes)
	ew.printf("watching:           %t\n", status.Watching)
	return ew.err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
