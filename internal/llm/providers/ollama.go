// File path: internal/llm/providers/ollama.go
package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/wolfthemes/supportkb/internal/common"
)

// OllamaEmbedder generates embeddings against a local Ollama instance,
// configured through the standard OLLAMA_HOST environment variable.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

func NewOllamaEmbedder() (*OllamaEmbedder, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}
	model := strings.TrimSpace(os.Getenv("OLLAMA_EMBED_MODEL"))
	if model == "" {
		model = "nomic-embed-text"
	}
	common.Logger().Info("llm: ollama embedder configured", "model", model)
	return &OllamaEmbedder{client: client, model: model}, nil
}

// Embed issues one embedding request per input; the Ollama embeddings
// endpoint takes a single prompt at a time.
func (e *OllamaEmbedder) Embed(ctx context.Context, input []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(input))
	for _, text := range input {
		resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{Model: e.model, Prompt: text})
		if err != nil {
			return nil, fmt.Errorf("ollama embeddings: %w", err)
		}
		vec := make([]float32, len(resp.Embedding))
		for i, v := range resp.Embedding {
			vec[i] = float32(v)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (e *OllamaEmbedder) Name() string {
	return "ollama"
}
