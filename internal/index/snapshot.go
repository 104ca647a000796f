// File path: internal/index/snapshot.go
package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/wolfthemes/supportkb/internal/kb"
)

// Hit is one nearest-neighbor result from a snapshot search.
type Hit struct {
	Index int
	Score float32
}

// Snapshot is an immutable searchable view over an ordered record sequence
// and its embedding vectors. Searches never mutate it, so one snapshot can
// serve any number of concurrent readers.
type Snapshot struct {
	records []kb.Record
	vectors [][]float32
	norms   []float32
}

// NewSnapshot pairs records with their vectors. Every record must have a
// vector.
func NewSnapshot(records []kb.Record, vectors [][]float32) (*Snapshot, error) {
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("record/vector count mismatch: %d vs %d", len(records), len(vectors))
	}
	norms := make([]float32, len(vectors))
	for i, vec := range vectors {
		norms[i] = vectorNorm(vec)
	}
	return &Snapshot{records: records, vectors: vectors, norms: norms}, nil
}

// Len returns the number of indexed records.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Record returns the indexed record at position i.
func (s *Snapshot) Record(i int) kb.Record {
	return s.records[i]
}

// Search returns the k records nearest to the query vector by cosine
// similarity, most similar first. Ordering is deterministic: ties keep
// insertion order.
func (s *Snapshot) Search(query []float32, k int) []Hit {
	qnorm := vectorNorm(query)
	if qnorm == 0 {
		return nil
	}
	hits := make([]Hit, 0, len(s.vectors))
	for i, vec := range s.vectors {
		if s.norms[i] == 0 {
			continue
		}
		var dot float32
		for j := 0; j < len(vec) && j < len(query); j++ {
			dot += vec[j] * query[j]
		}
		score := dot / (qnorm * s.norms[i])
		hits = append(hits, Hit{Index: i, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

type snapshotFile struct {
	Records []kb.Record `json:"records"`
	Vectors [][]float32 `json:"vectors"`
}

func (s *Snapshot) save(path string) error {
	data, err := json.Marshal(snapshotFile{Records: s.records, Vectors: s.vectors})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return NewSnapshot(file.Records, file.Vectors)
}

func vectorNorm(vec []float32) float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sum))
}
