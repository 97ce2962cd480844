package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmbeddingsDisabled is returned for the "none" provider.
var ErrEmbeddingsDisabled = errors.New("embeddings disabled by configuration")

type EmbedderOptions struct {
	Provider  string
	APIKey    string
	Model     string
	Dimension int
	BaseURL   string
}

// Default embedding models per provider.
var defaultModels = map[string]string{
	"gemini": "text-embedding-004",
	"openai": "text-embedding-3-small",
	"ollama": "nomic-embed-text",
}

func NewEmbedder(ctx context.Context, opts EmbedderOptions) (Embedder, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModels[provider]
	}

	switch provider {
	case "gemini":
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("gemini api key is required")
		}
		return NewGeminiEmbedder(ctx, opts.APIKey, model, opts.Dimension)
	case "openai":
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("openai api key is required")
		}
		return NewOpenAIEmbedder(opts.APIKey, model, opts.Dimension, opts.BaseURL), nil
	case "ollama":
		return NewOllamaEmbedder(model, opts.Dimension, opts.BaseURL), nil
	case "none":
		return nil, ErrEmbeddingsDisabled
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", opts.Provider)
	}
}
