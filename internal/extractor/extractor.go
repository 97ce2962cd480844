package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"prism/internal/ast"
)

// FileResult bundles the structural views of one source file.
type FileResult struct {
	Tree      *ast.Tree        `json:"-"`
	Classes   []ClassRecord    `json:"classes"`
	Functions []FunctionRecord `json:"functions"`
	CallGraph CallGraphResult  `json:"call_graph"`
}

// Extractor parses source and runs every structural extractor over it.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil logger uses slog.Default.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract parses source and returns its classes, standalone functions and
// call graph. Syntax errors are returned unchanged so callers can match
// ast.ErrSyntax.
func (e *Extractor) Extract(ctx context.Context, source []byte) (*FileResult, error) {
	tree, err := ast.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	res := Analyze(tree)
	e.logger.Debug("extracted source",
		slog.Int("classes", len(res.Classes)),
		slog.Int("functions", len(res.CallGraph.Functions)),
		slog.Int("calls", len(res.CallGraph.Calls)))
	return res, nil
}

// Analyze runs the extractors over an already parsed tree. A single
// Assigner is shared so that every view reports identical coordinates.
func Analyze(tree *ast.Tree) *FileResult {
	assigner := NewAssigner(tree)
	return &FileResult{
		Tree:      tree,
		Classes:   classes(tree, assigner),
		Functions: functions(tree, assigner),
		CallGraph: callGraph(tree, assigner),
	}
}

// TagFile stamps file onto every record of the result.
func (r *FileResult) TagFile(file string) {
	for i := range r.Classes {
		r.Classes[i].File = file
	}
	for i := range r.Functions {
		r.Functions[i].File = file
	}
	for i := range r.CallGraph.Functions {
		r.CallGraph.Functions[i].File = file
	}
	for i := range r.CallGraph.Calls {
		r.CallGraph.Calls[i].File = file
	}
}

// SyntaxMessage formats a parse failure the way the API reports it.
func SyntaxMessage(err error) string {
	return fmt.Sprintf("Syntax error: %s", err.Error())
}
