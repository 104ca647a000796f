// File path: internal/retriever/retriever.go
package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfthemes/supportkb/internal/common"
	"github.com/wolfthemes/supportkb/internal/index"
	"github.com/wolfthemes/supportkb/internal/kb"
)

// DefaultTopK bounds how many candidates a query returns when the caller
// does not ask for a specific count.
const DefaultTopK = 6

// Match is a retrieved record with its similarity score, most similar first
// in any slice the retriever returns.
type Match struct {
	Record kb.Record `json:"record"`
	Score  float32   `json:"score"`
}

// Retriever is the query engine: it embeds free-text queries and runs
// nearest-neighbor retrieval against the manager's current snapshot. It is
// read-only and safe for concurrent callers; the manager swaps snapshots
// atomically underneath it.
type Retriever struct {
	manager  *index.Manager
	embedder index.Embedder
	topK     int
}

type Option func(*Retriever)

// WithTopK overrides the default candidate count.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

func New(manager *index.Manager, embedder index.Embedder, opts ...Option) *Retriever {
	r := &Retriever{manager: manager, embedder: embedder, topK: DefaultTopK}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Search returns up to k records ranked by similarity to the query. A
// missing index surfaces as index.ErrUnavailable so callers can tell "no
// index" apart from "index present but nothing matched" (empty slice, nil
// error).
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = r.topK
	}
	snapshot := r.manager.Current()
	if snapshot == nil {
		return nil, index.ErrUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty vector returned")
	}
	hits := snapshot.Search(vectors[0], k)
	common.Logger().Debug("retriever: query served", "query", query, "hits", len(hits))
	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		matches = append(matches, Match{Record: snapshot.Record(hit.Index), Score: hit.Score})
	}
	return matches, nil
}
