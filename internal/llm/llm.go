// File path: internal/llm/llm.go
package llm

import (
	"context"
	"os"
	"strings"

	"github.com/wolfthemes/supportkb/internal/common"
	"github.com/wolfthemes/supportkb/internal/llm/providers"
)

// Embedder turns text into vectors for indexing and querying.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
	Name() string
}

// NewEmbedder selects the embedding backend from the environment: OpenAI
// when OPENAI_API_KEY is set, Ollama when OLLAMA_HOST is set, otherwise the
// local deterministic fallback.
func NewEmbedder() Embedder {
	logger := common.Logger()
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		logger.Info("llm: OpenAI embedding backend selected")
		return providers.NewOpenAIEmbedder(apiKey)
	}
	if host := strings.TrimSpace(os.Getenv("OLLAMA_HOST")); host != "" {
		embedder, err := providers.NewOllamaEmbedder()
		if err != nil {
			logger.Warn("llm: ollama setup failed, falling back to local embedder", "error", err)
		} else {
			logger.Info("llm: ollama embedding backend selected")
			return embedder
		}
	}
	logger.Warn("llm: no embedding backend configured; using local fallback")
	return providers.NewLocalEmbedder()
}
