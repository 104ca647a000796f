// File path: internal/llm/providers/local_test.go
package providers

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbedderDeterministic(t *testing.T) {
	embedder := NewLocalEmbedder()
	first, err := embedder.Embed(context.Background(), []string{"clear the cache"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := embedder.Embed(context.Background(), []string{"clear the cache"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("embedding not deterministic at dim %d", i)
		}
	}
}

func TestLocalEmbedderNormalizesAndIgnoresCaseAndPunctuation(t *testing.T) {
	embedder := NewLocalEmbedder()
	vectors, err := embedder.Embed(context.Background(), []string{
		"Clear the cache!",
		"clear the cache",
		"something else entirely",
	})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	var norm float64
	for _, v := range vectors[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("vector not unit length: %v", norm)
	}
	for i := range vectors[0] {
		if vectors[0][i] != vectors[1][i] {
			t.Fatalf("case and punctuation should not change the embedding")
		}
	}
	same := true
	for i := range vectors[0] {
		if vectors[0][i] != vectors[2][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("unrelated texts should embed differently")
	}
}

func TestLocalEmbedderEmptyInput(t *testing.T) {
	embedder := NewLocalEmbedder()
	vectors, err := embedder.Embed(context.Background(), []string{""})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for _, v := range vectors[0] {
		if v != 0 {
			t.Fatalf("empty text should embed to the zero vector")
		}
	}
}
