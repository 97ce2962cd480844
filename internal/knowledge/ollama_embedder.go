package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	ollamaEmbedBatchSize = 64
	ollamaEmbedDelay     = 200 * time.Millisecond
	ollamaTimeout        = 90 * time.Second
)

// OllamaEmbedder uses a local Ollama server's /api/embed endpoint.
type OllamaEmbedder struct {
	endpoint  jsonEndpoint
	model     string
	dimension dimension
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func NewOllamaEmbedder(model string, dim int, baseURL string) *OllamaEmbedder {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = "http://127.0.0.1:11434"
	}
	url = strings.TrimRight(url, "/")
	if !strings.HasSuffix(url, "/api/embed") {
		url += "/api/embed"
	}
	return &OllamaEmbedder{
		endpoint:  newJSONEndpoint(url, ollamaTimeout, nil),
		model:     model,
		dimension: dimension{configured: dim},
	}
}

func (o *OllamaEmbedder) Dimension() int {
	return o.dimension.get()
}

func (o *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(o.model) == "" {
		return nil, fmt.Errorf("ollama embedding model is required")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for i, batch := range batches(texts, ollamaEmbedBatchSize) {
		if i > 0 && !waitOrCancel(ctx, ollamaEmbedDelay) {
			return nil, ctx.Err()
		}
		status, raw, err := o.endpoint.post(ctx, ollamaEmbedRequest{Model: o.model, Input: batch})
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, statusError("ollama", status, raw)
		}
		var parsed ollamaEmbedResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, err
		}
		if len(parsed.Embeddings) != len(batch) {
			return nil, fmt.Errorf("ollama embedding count mismatch: got %d, expected %d", len(parsed.Embeddings), len(batch))
		}
		out = append(out, parsed.Embeddings...)
	}

	o.dimension.observe(out)
	return out, nil
}
