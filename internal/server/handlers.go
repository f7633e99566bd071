package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/docsearch/internal/highlight"
	"github.com/hyperjump/docsearch/internal/models"
	"github.com/hyperjump/docsearch/internal/render"
	"github.com/hyperjump/docsearch/internal/search"
	"github.com/hyperjump/docsearch/internal/searchindex"
)

var searchPageTemplate = template.Must(template.New("search").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Search</title>
</head>
<body>
<div role="main">
<h1 id="search-documentation">Search</h1>
<form action="search.html" method="get">
<input type="text" name="q" value="{{.Query}}">
<input type="submit" value="search">
</form>
{{.Results}}
</div>
</body>
</html>
`))

type searchPageData struct {
	Query   string
	Results template.HTML
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, DocsPrefix+"search.html", http.StatusFound)
}

func (s *Server) handleSearchRedirect(w http.ResponseWriter, r *http.Request) {
	target := DocsPrefix + "search.html"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleSearchPage renders the search page, with results when q is set.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	data := searchPageData{Query: q}

	if strings.TrimSpace(q) != "" {
		page := render.NewHTMLPage()
		if _, ok := s.runSearch(w, r, &models.SearchQuery{Query: q, Limit: s.limitParam(r)}, page); !ok {
			return
		}
		data.Results = template.HTML(page.String())
	}

	var buf bytes.Buffer
	if err := searchPageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("search page render failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleSearch answers GET ?q=&limit= and POST with a JSON SearchQuery.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := models.SearchQuery{Query: r.URL.Query().Get("q"), Limit: s.limitParam(r)}
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if query.Limit == 0 {
			query.Limit = s.config.Render.DefaultLimit
		}
	}
	s.logger.Debug("search request",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("query", query.Query),
		zap.Int("limit", query.Limit))

	page := render.NewCollectPage()
	run, ok := s.runSearch(w, r, &query, page)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, search.NewResponse(run, page))
}

// runSearch runs the query into page, queuing it while the index loads. It
// writes an error response and returns false on failure.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, query *models.SearchQuery, page render.Page) (*search.Run, bool) {
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	run, err := s.engine.SearchCache(r.Context(), s.cache, query, page)
	if errors.Is(err, searchindex.ErrNotLoaded) {
		s.logger.Warn("search index unavailable", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "search index not available")
		return nil, false
	}
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return run, true
}

func (s *Server) limitParam(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return s.config.Render.DefaultLimit
}

// handleDocument serves a documentation page, highlighting the terms of the
// highlight parameter.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	body, err := s.docs.Fetch(r.Context(), s.config.Documentation.URLRoot+rest)
	if errors.Is(err, render.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		s.logger.Warn("document fetch failed", zap.String("path", rest), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "document fetch failed")
		return
	}

	param := r.URL.Query().Get(highlight.Param)
	if param == "" || !looksLikeHTML(rest) {
		w.Header().Set("Content-Type", contentType(rest, body))
		_, _ = w.Write([]byte(body))
		return
	}

	var buf bytes.Buffer
	res, err := highlight.Page(&buf, strings.NewReader(body), param, highlight.HideURL(r.URL))
	if err != nil {
		s.logger.Warn("highlighting failed", zap.String("path", rest), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to highlight page")
		return
	}
	s.logger.Debug("document highlighted",
		zap.String("path", rest),
		zap.Strings("terms", res.Terms),
		zap.Int("highlights", res.Highlights))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func looksLikeHTML(p string) bool {
	return p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".html") || strings.HasSuffix(p, ".htm")
}

func contentType(p, body string) string {
	if looksLikeHTML(p) {
		return "text/html; charset=utf-8"
	}
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return http.DetectContentType([]byte(body))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := CollectStatus(r.Context(), s.cache, s.storage, s.config, s.watching)
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	idx, err := s.cache.Reload(r.Context())
	if errors.Is(err, searchindex.ErrNotLoaded) {
		s.respondError(w, http.StatusNotImplemented, "index has no reloadable source")
		return
	}
	if err != nil {
		s.logger.Error("index reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "reloaded", "documents": idx.DocCount()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if _, ok := s.cache.Index(); !ok {
		status = "loading"
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
