// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const localDimensions = 128

// LocalEmbedder is the offline fallback: a deterministic hashed
// bag-of-words embedding. It has nowhere near the recall of a real model
// but keeps development and tests running with no backend configured.
type LocalEmbedder struct{}

func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{}
}

func (l *LocalEmbedder) Embed(ctx context.Context, input []string) ([][]float32, error) {
	vectors := make([][]float32, len(input))
	for i, text := range input {
		vectors[i] = hashEmbed(text)
	}
	return vectors, nil
}

func (l *LocalEmbedder) Name() string {
	return "local"
}

func hashEmbed(text string) []float32 {
	vec := make([]float32, localDimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(strings.Trim(token, ".,!?:;\"'()")))
		vec[hasher.Sum32()%localDimensions]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
