// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/wolfthemes/supportkb/internal/common"
	"github.com/wolfthemes/supportkb/internal/index"
	"github.com/wolfthemes/supportkb/internal/kb"
	"github.com/wolfthemes/supportkb/internal/retriever"
)

// Searcher is the query engine surface the handlers consume.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]retriever.Match, error)
}

// Rebuilder is the slice of the index manager the handlers need.
type Rebuilder interface {
	Rebuild(ctx context.Context, records []kb.Record) (*index.Snapshot, error)
	Current() *index.Snapshot
}

type Server struct {
	router   chi.Router
	searcher Searcher
	manager  Rebuilder
	dataDir  string
}

func NewServer(searcher Searcher, manager Rebuilder, dataDir string) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher required")
	}
	if manager == nil {
		return nil, fmt.Errorf("index manager required")
	}
	s := &Server{
		router:   chi.NewRouter(),
		searcher: searcher,
		manager:  manager,
		dataDir:  dataDir,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Get("/search", s.handleSearch)
		r.Post("/reindex", s.handleReindex)
		r.Get("/themes/{slug}/builder", s.handleThemeBuilder)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		common.Logger().Error("api: response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
