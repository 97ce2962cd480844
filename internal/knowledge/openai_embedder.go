package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	openAIEmbedBatchSize = 64
	openAIEmbedDelay     = 400 * time.Millisecond
	openAIEmbedRetries   = 5
	openAIRetryDelay     = 3 * time.Second
	openAITimeout        = 60 * time.Second
)

// OpenAIEmbedder talks to any OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	endpoint   jsonEndpoint
	model      string
	dimension  dimension
	retryDelay time.Duration
}

type openAIEmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions *int     `json:"dimensions,omitempty"`
}

type openAIEmbeddingItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type openAIEmbeddingResponse struct {
	Data []openAIEmbeddingItem `json:"data"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenAIEmbedder(apiKey, model string, dim int, baseURL string) *OpenAIEmbedder {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = "https://api.openai.com/v1/embeddings"
	}
	return &OpenAIEmbedder{
		endpoint:   newJSONEndpoint(url, openAITimeout, map[string]string{"Authorization": "Bearer " + apiKey}),
		model:      model,
		dimension:  dimension{configured: dim},
		retryDelay: openAIRetryDelay,
	}
}

func (o *OpenAIEmbedder) Dimension() int {
	return o.dimension.get()
}

func (o *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(o.model) == "" {
		return nil, fmt.Errorf("openai embedding model is required")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for i, batch := range batches(texts, openAIEmbedBatchSize) {
		if i > 0 && !waitOrCancel(ctx, openAIEmbedDelay) {
			return nil, ctx.Err()
		}
		vecs, err := o.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		results = append(results, vecs...)
	}
	o.dimension.observe(results)
	return results, nil
}

func (o *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	payload := openAIEmbeddingRequest{Model: o.model, Input: batch}
	if o.dimension.configured > 0 {
		dim := o.dimension.configured
		payload.Dimensions = &dim
	}

	var lastErr error
	for attempt := 0; attempt <= openAIEmbedRetries; attempt++ {
		if attempt > 0 && !waitOrCancel(ctx, o.retryDelay) {
			return nil, ctx.Err()
		}
		status, raw, err := o.endpoint.post(ctx, payload)
		if err != nil {
			lastErr = err
			continue
		}
		if retryable(status) {
			lastErr = statusError("openai", status, raw)
			continue
		}
		if status < 200 || status >= 300 {
			var errBody openAIErrorBody
			if json.Unmarshal(raw, &errBody) == nil && strings.TrimSpace(errBody.Error.Message) != "" {
				raw = []byte(errBody.Error.Message)
			}
			return nil, statusError("openai", status, raw)
		}
		return decodeOpenAI(raw, len(batch))
	}
	return nil, lastErr
}

func decodeOpenAI(raw []byte, n int) ([][]float32, error) {
	var parsed openAIEmbeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) != n {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(parsed.Data), n)
	}
	out := make([][]float32, n)
	for _, item := range parsed.Data {
		if item.Index >= 0 && item.Index < n {
			out[item.Index] = item.Embedding
		}
	}
	for i := range out {
		if len(out[i]) == 0 {
			return nil, fmt.Errorf("embedding missing at index %d", i)
		}
	}
	return out, nil
}
