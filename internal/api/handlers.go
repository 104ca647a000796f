// File path: internal/api/handlers.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/wolfthemes/supportkb/internal/common"
	"github.com/wolfthemes/supportkb/internal/kb"
	"github.com/wolfthemes/supportkb/internal/resolver"
)

type resolveRequest struct {
	Query string `json:"query"`
}

// handleResolve runs the full retrieval path and always answers 200 with an
// Answer-shaped body; failures surface as the degenerate "error" source so
// the reply generator downstream never sees a crash.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("query required"))
		return
	}
	matches, err := s.searcher.Search(r.Context(), query, 0)
	if err != nil {
		logger.Warn("api: search failed", "query", query, "error", err)
	}
	answer := resolver.Resolve(matches, err)
	logger.Info("api: resolve served", "query", query, "source", answer.Source, "strict", answer.IsStrict)
	writeJSON(w, http.StatusOK, answer)
}

type searchResult struct {
	Title   string  `json:"title"`
	Source  string  `json:"source"`
	URL     string  `json:"url,omitempty"`
	Score   float32 `json:"score"`
	Snippet string  `json:"snippet"`
}

const searchSnippetLimit = 300

// handleSearch exposes the raw ranked candidate set for inspection, before
// any priority re-sort.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing q parameter"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	matches, err := s.searcher.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	results := make([]searchResult, 0, len(matches))
	for _, match := range matches {
		snippet := match.Record.Text
		if runes := []rune(snippet); len(runes) > searchSnippetLimit {
			snippet = string(runes[:searchSnippetLimit])
		}
		results = append(results, searchResult{
			Title:   match.Record.Title,
			Source:  string(match.Record.Source),
			URL:     match.Record.URL,
			Score:   match.Score,
			Snippet: snippet,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// handleReindex reloads the corpus and forces a rebuild. Queries running
// concurrently keep serving the previous snapshot until the swap completes.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	records, report := kb.LoadCorpus(s.dataDir)
	for _, warning := range report.Warnings() {
		logger.Warn("api: corpus load warning", "detail", warning)
	}
	snapshot, err := s.manager.Rebuild(r.Context(), records)
	if err != nil {
		logger.Error("api: reindex failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"indexed":  snapshot.Len(),
		"warnings": report.Warnings(),
	})
}

func (s *Server) handleThemeBuilder(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	answer, err := kb.LookupThemeBuilder(s.dataDir, slug)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"slug": slug, "builder": answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "index": "unavailable"}
	if s.manager.Current() != nil {
		status["index"] = "ready"
	}
	writeJSON(w, http.StatusOK, status)
}
