package knowledge

import (
	"context"

	"prism/internal/extractor"
)

// Embedder defines the interface for converting text to vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Chunk types.
const (
	ChunkFunction = "function"
	ChunkClass    = "class"
	ChunkGlobal   = "global"
)

// Chunk is a retrievable slice of source.
type Chunk struct {
	Content   string `json:"content"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	File      string `json:"file,omitempty"`
}

// RetrievalResult is a ranked chunk. ASTRef is set once the chunk has been
// resolved back to its syntax node.
type RetrievalResult struct {
	Chunk
	Score  float64               `json:"score"`
	ASTRef *extractor.Coordinate `json:"ast_ref,omitempty"`
}
