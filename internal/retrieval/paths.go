package retrieval

import (
	"context"

	"prism/internal/extractor"
	"prism/internal/graph"
	"prism/internal/knowledge"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxDepth bounds the number of edges in a path.
	DefaultMaxDepth = 5
	// LineTolerance is the line distance accepted when a result cannot be
	// matched to a function by node id.
	LineTolerance = 2
)

// Path types.
const (
	CallerToCallee = "caller_to_callee"
	CalleeToCaller = "callee_to_caller"
	Bidirectional  = "bidirectional"
)

var tracer = otel.Tracer("prism/retrieval")

// Config controls path search.
type Config struct {
	MaxDepth      int
	LineTolerance int
}

func DefaultConfig() Config {
	return Config{
		MaxDepth:      DefaultMaxDepth,
		LineTolerance: LineTolerance,
	}
}

// MatchedNode links a retrieval result to a call-graph function.
type MatchedNode struct {
	Identifier  string                `json:"identifier"`
	Name        string                `json:"name"`
	Class       string                `json:"class,omitempty"`
	ChunkType   string                `json:"chunk_type"`
	Score       float64               `json:"score"`
	ResultIndex int                   `json:"result_index"`
	File        string                `json:"file,omitempty"`
	ASTRef      *extractor.Coordinate `json:"ast_ref,omitempty"`
}

// PathEdge is a call edge on a path, reported caller to callee, with the
// direction in which the search followed it.
type PathEdge struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	CallLine  int             `json:"call_line"`
	Direction graph.Direction `json:"direction"`
}

// PathRecord is the shortest connection found between two matched nodes.
type PathRecord struct {
	From              string     `json:"from"`
	To                string     `json:"to"`
	IntermediateNodes []string   `json:"intermediate_nodes"`
	Edges             []PathEdge `json:"edges"`
	Length            int        `json:"length"`
	PathType          string     `json:"path_type"`
}

// PathResult is the outcome of a path search.
type PathResult struct {
	MatchedNodes            []MatchedNode `json:"matched_nodes"`
	Paths                   []PathRecord  `json:"paths"`
	UniqueIntermediateNodes []string      `json:"unique_intermediate_nodes"`
	UniqueEdges             []PathEdge    `json:"unique_edges"`
}

// FindPaths matches results to call-graph functions and connects every
// ordered pair of distinct matches through the call graph. maxDepth <= 0
// selects DefaultMaxDepth.
func FindPaths(results []knowledge.RetrievalResult, functions []extractor.FunctionRecord, calls []extractor.CallEdge, maxDepth int) PathResult {
	cfg := DefaultConfig()
	if maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	return Find(context.Background(), results, graph.Build(functions, calls), functions, cfg)
}

// Find is FindPaths over a prebuilt graph.
func Find(ctx context.Context, results []knowledge.RetrievalResult, g *graph.Graph, functions []extractor.FunctionRecord, cfg Config) PathResult {
	_, span := tracer.Start(ctx, "retrieval.FindPaths",
		trace.WithAttributes(attribute.Int("results", len(results)), attribute.Int("max_depth", cfg.MaxDepth)))
	defer span.End()

	out := PathResult{
		MatchedNodes:            []MatchedNode{},
		Paths:                   []PathRecord{},
		UniqueIntermediateNodes: []string{},
		UniqueEdges:             []PathEdge{},
	}

	var ids []string
	seenID := make(map[string]bool)
	for i, res := range results {
		fn, ok := matchFunction(res, functions, cfg.LineTolerance)
		if !ok {
			continue
		}
		out.MatchedNodes = append(out.MatchedNodes, MatchedNode{
			Identifier:  fn.Identifier,
			Name:        fn.Name,
			Class:       fn.Class,
			ChunkType:   res.Type,
			Score:       res.Score,
			ResultIndex: i,
			File:        fn.File,
			ASTRef:      res.ASTRef,
		})
		if !seenID[fn.Identifier] {
			seenID[fn.Identifier] = true
			ids = append(ids, fn.Identifier)
		}
	}

	seenNode := make(map[string]bool)
	seenEdge := make(map[graph.Edge]bool)
	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			path, ok := shortestPath(g, from, to, cfg.MaxDepth)
			if !ok {
				continue
			}
			out.Paths = append(out.Paths, path)
			for _, n := range path.IntermediateNodes {
				if !seenNode[n] {
					seenNode[n] = true
					out.UniqueIntermediateNodes = append(out.UniqueIntermediateNodes, n)
				}
			}
			for _, e := range path.Edges {
				key := graph.Edge{From: e.From, To: e.To, Line: e.CallLine}
				if !seenEdge[key] {
					seenEdge[key] = true
					out.UniqueEdges = append(out.UniqueEdges, e)
				}
			}
		}
	}
	span.SetAttributes(attribute.Int("matched", len(out.MatchedNodes)), attribute.Int("paths", len(out.Paths)))
	return out
}

// matchFunction finds the function a result refers to: first by node id,
// then by the nearest start line within tolerance.
func matchFunction(res knowledge.RetrievalResult, functions []extractor.FunctionRecord, tolerance int) (extractor.FunctionRecord, bool) {
	if res.ASTRef == nil {
		return extractor.FunctionRecord{}, false
	}
	for _, fn := range functions {
		if sameFile(res.File, fn.File) && fn.ASTRef.NodeID == res.ASTRef.NodeID {
			return fn, true
		}
	}
	best, bestDiff := -1, tolerance+1
	for i, fn := range functions {
		if !sameFile(res.File, fn.File) {
			continue
		}
		line := fn.ASTRef.Line
		if line == 0 {
			line = fn.Lineno
		}
		// ties go to the earlier function
		if d := abs(line - res.ASTRef.Line); d <= tolerance && d < bestDiff {
			best, bestDiff = i, d
		}
	}
	if best < 0 {
		return extractor.FunctionRecord{}, false
	}
	return functions[best], true
}

func sameFile(a, b string) bool {
	return a == "" || b == "" || a == b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
