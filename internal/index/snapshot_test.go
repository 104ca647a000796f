// File path: internal/index/snapshot_test.go
package index

import (
	"testing"

	"github.com/wolfthemes/supportkb/internal/kb"
)

func snapshotFixture(t *testing.T, vectors [][]float32) *Snapshot {
	t.Helper()
	records := make([]kb.Record, len(vectors))
	for i := range records {
		records[i] = kb.Record{Text: "doc", Title: "doc", Source: kb.SourceKBArticle}
	}
	snapshot, err := NewSnapshot(records, vectors)
	if err != nil {
		t.Fatalf("new snapshot: %v", err)
	}
	return snapshot
}

func TestNewSnapshotRejectsCountMismatch(t *testing.T) {
	_, err := NewSnapshot([]kb.Record{{Text: "a"}}, nil)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	snapshot := snapshotFixture(t, [][]float32{
		{0, 1, 0},      // orthogonal
		{1, 0, 0},      // exact direction
		{1, 1, 0},      // partial
		{-1, 0, 0},     // opposite
		{0.5, 0.1, 0},  // close
	})
	hits := snapshot.Search([]float32{1, 0, 0}, 0)
	if len(hits) != 5 {
		t.Fatalf("expected 5 hits, got %d", len(hits))
	}
	wantOrder := []int{1, 4, 2, 0, 3}
	for i, want := range wantOrder {
		if hits[i].Index != want {
			t.Fatalf("position %d: got index %d, want %d (hits %+v)", i, hits[i].Index, want, hits)
		}
	}
	if hits[0].Score <= hits[1].Score {
		t.Fatalf("scores not descending: %+v", hits)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	snapshot := snapshotFixture(t, [][]float32{
		{1, 0}, {0.9, 0.1}, {0.8, 0.2}, {0, 1},
	})
	hits := snapshot.Search([]float32{1, 0}, 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Index != 0 {
		t.Fatalf("best hit should be index 0, got %d", hits[0].Index)
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	snapshot := snapshotFixture(t, [][]float32{
		{2, 0}, {1, 0}, {3, 0},
	})
	hits := snapshot.Search([]float32{1, 0}, 0)
	// All three score 1.0; stable sort keeps the original sequence.
	for i, hit := range hits {
		if hit.Index != i {
			t.Fatalf("tie order broken: %+v", hits)
		}
	}
}

func TestSearchSkipsZeroVectors(t *testing.T) {
	snapshot := snapshotFixture(t, [][]float32{
		{0, 0}, {1, 0},
	})
	hits := snapshot.Search([]float32{1, 0}, 0)
	if len(hits) != 1 || hits[0].Index != 1 {
		t.Fatalf("zero-norm document should be skipped: %+v", hits)
	}
	if got := snapshot.Search([]float32{0, 0}, 0); got != nil {
		t.Fatalf("zero query should return nil, got %+v", got)
	}
}
