package knowledge

import (
	"context"
	"sort"
	"time"

	"prism/internal/ast"
	"prism/internal/extractor"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTopK is used when a caller passes a non-positive topK.
	DefaultTopK = 5
	// DefaultMinScore is the exclusive similarity floor.
	DefaultMinScore = 0.1
)

var tracer = otel.Tracer("prism/knowledge")

// Similarity scores two vectors.
type Similarity func(a, b []float32) float64

type RankerOption func(*Ranker)

// WithMinScore overrides the exclusive similarity floor.
func WithMinScore(score float64) RankerOption {
	return func(r *Ranker) {
		r.minScore = score
	}
}

// WithSimilarity replaces cosine similarity.
func WithSimilarity(fn Similarity) RankerOption {
	return func(r *Ranker) {
		if fn != nil {
			r.similarity = fn
		}
	}
}

// Ranker orders chunks by semantic similarity to a query.
type Ranker struct {
	capability *Capability
	similarity Similarity
	minScore   float64
}

func NewRanker(capability *Capability, opts ...RankerOption) *Ranker {
	r := &Ranker{
		capability: capability,
		similarity: Cosine,
		minScore:   DefaultMinScore,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank embeds query and chunks, keeps chunks scoring strictly above the
// floor, and returns at most topK of them by descending score. Ties keep
// chunk order.
func (r *Ranker) Rank(ctx context.Context, query string, chunks []Chunk, topK int) ([]RetrievalResult, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Rank",
		trace.WithAttributes(attribute.Int("chunks", len(chunks)), attribute.Int("top_k", topK)))
	defer span.End()
	start := time.Now()
	defer func() { rankDurationSeconds.Observe(time.Since(start).Seconds()) }()

	if !r.capability.Available() {
		err := r.capability.Err()
		span.RecordError(err)
		return nil, err
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(chunks) == 0 {
		return []RetrievalResult{}, nil
	}

	queryVecs, err := r.capability.Embed(ctx, []string{query})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	vecs, err := r.capability.Embed(ctx, texts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	scored := make([]RetrievalResult, len(chunks))
	for i, ch := range chunks {
		scored[i] = RetrievalResult{Chunk: ch, Score: r.similarity(queryVecs[0], vecs[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	results := make([]RetrievalResult, 0, topK)
	for _, res := range scored {
		if res.Score <= r.minScore {
			continue
		}
		results = append(results, res)
		if len(results) == topK {
			break
		}
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}

// AttachCoordinates resolves each result back to the syntax node starting at
// its first line. Results without a matching node keep a nil ASTRef.
func AttachCoordinates(results []RetrievalResult, tree *ast.Tree) {
	if tree == nil {
		return
	}
	index := extractor.LineIndex(tree)
	for i := range results {
		if coord, ok := extractor.ResolveAt(index, tree, results[i].LineStart, results[i].Type); ok {
			results[i].ASTRef = &coord
		}
	}
}

// AttachCoordinatesByFile resolves results that came from several files.
func AttachCoordinatesByFile(results []RetrievalResult, trees map[string]*ast.Tree) {
	indexes := make(map[string]map[int][]*ast.Node)
	for i := range results {
		tree, ok := trees[results[i].File]
		if !ok {
			continue
		}
		index, ok := indexes[results[i].File]
		if !ok {
			index = extractor.LineIndex(tree)
			indexes[results[i].File] = index
		}
		if coord, ok := extractor.ResolveAt(index, tree, results[i].LineStart, results[i].Type); ok {
			results[i].ASTRef = &coord
		}
	}
}
