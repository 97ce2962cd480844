package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	geminiEmbedBatchSize  = 50
	geminiEmbedBatchDelay = 700 * time.Millisecond
	geminiRetryDelay      = 6 * time.Second
	geminiMaxRetries      = 5
)

// GeminiEmbedder embeds chunks with the Gemini embedding models.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension dimension
}

func NewGeminiEmbedder(ctx context.Context, apiKey string, modelName string, dim int) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiEmbedder{
		client:    client,
		model:     modelName,
		dimension: dimension{configured: dim},
	}, nil
}

func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	config := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if g.dimension.configured > 0 {
		dim := int32(g.dimension.configured)
		config.OutputDimensionality = &dim
	}

	results := make([][]float32, 0, len(texts))
	for i, batch := range batches(texts, geminiEmbedBatchSize) {
		if i > 0 && !waitOrCancel(ctx, geminiEmbedBatchDelay) {
			return nil, ctx.Err()
		}
		contents := make([]*genai.Content, 0, len(batch))
		for _, text := range batch {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		res, err := g.embedWithRetry(ctx, contents, config)
		if err != nil {
			return nil, err
		}
		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(res.Embeddings), len(batch))
		}
		for _, emb := range res.Embeddings {
			results = append(results, emb.Values)
		}
	}
	g.dimension.observe(results)
	return results, nil
}

func (g *GeminiEmbedder) embedWithRetry(ctx context.Context, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	for attempt := 0; ; attempt++ {
		res, err := g.client.Models.EmbedContent(ctx, g.model, contents, config)
		if err == nil {
			if res == nil {
				return nil, fmt.Errorf("gemini returned no embeddings")
			}
			return res, nil
		}
		if !isRateLimitError(err) || attempt == geminiMaxRetries {
			return nil, fmt.Errorf("failed to embed text: %w", err)
		}
		if !waitOrCancel(ctx, geminiRetryDelay) {
			return nil, ctx.Err()
		}
	}
}

func (g *GeminiEmbedder) Dimension() int {
	return g.dimension.get()
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "RESOURCE_EXHAUSTED") || strings.Contains(s, "quota")
}
