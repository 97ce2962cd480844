package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"prism/internal/ast"
)

// DefaultMaxChunks bounds the chunks produced for a single request.
const DefaultMaxChunks = 500

// Chunker splits source into function, class and global chunks.
type Chunker struct {
	maxChunks int
	logger    *slog.Logger
}

// NewChunker creates a chunker. maxChunks <= 0 selects DefaultMaxChunks.
func NewChunker(maxChunks int, logger *slog.Logger) *Chunker {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{maxChunks: maxChunks, logger: logger}
}

// MaxChunks returns the chunk limit.
func (c *Chunker) MaxChunks() int {
	return c.maxChunks
}

// Chunk parses source and chunks it. Unparsable source yields no chunks.
func (c *Chunker) Chunk(ctx context.Context, source []byte) []Chunk {
	tree, err := ast.Parse(ctx, source)
	if err != nil {
		if errors.Is(err, ast.ErrSyntax) {
			c.logger.Warn("skipping chunking of unparsable source", slog.String("error", err.Error()))
		} else {
			c.logger.Error("failed to parse source for chunking", slog.String("error", err.Error()))
		}
		return []Chunk{}
	}
	return c.ChunkTree(tree)
}

// ChunkTree chunks an already parsed tree. Every function and class
// definition (nested ones included) becomes a chunk holding its verbatim
// lines; imports and assignments outside those chunks are gathered into a
// trailing global chunk.
func (c *Chunker) ChunkTree(tree *ast.Tree) []Chunk {
	chunks := []Chunk{}
	if tree == nil || tree.Root == nil {
		return chunks
	}
	lines := tree.Lines()

	ast.Walk(tree.Root, func(n *ast.Node) bool {
		switch {
		case n.Kind.IsFunction():
			chunks = append(chunks, unitChunk(n, ChunkFunction, lines))
		case n.Kind == ast.ClassDef:
			chunks = append(chunks, unitChunk(n, ChunkClass, lines))
		}
		return true
	})

	if global, ok := globalChunk(tree.Root, chunks, lines); ok {
		chunks = append(chunks, global)
	}
	if len(chunks) > c.maxChunks {
		c.logger.Warn("chunk limit reached", slog.Int("chunks", len(chunks)), slog.Int("max_chunks", c.maxChunks))
		chunks = chunks[:c.maxChunks]
	}
	return chunks
}

func unitChunk(n *ast.Node, typ string, lines []string) Chunk {
	ch := Chunk{Type: typ, Name: n.Name(), LineStart: n.Line, LineEnd: n.EndLine}
	if n.EndLine < n.Line || n.Line < 1 || n.Line > len(lines) {
		ch.LineEnd = n.Line
		if typ == ChunkClass {
			ch.Content = fmt.Sprintf("class %s:", ch.Name)
		} else {
			ch.Content = fmt.Sprintf("def %s(...):", ch.Name)
		}
		return ch
	}
	end := n.EndLine
	if end > len(lines) {
		end = len(lines)
	}
	ch.Content = strings.Join(lines[n.Line-1:end], "\n")
	return ch
}

// globalChunk collects the distinct stripped lines of imports and
// assignments not covered by any unit chunk. LineStart is 1 and LineEnd the
// number of collected statements.
func globalChunk(root *ast.Node, units []Chunk, lines []string) (Chunk, bool) {
	seen := make(map[string]struct{})
	var stmts []string
	ast.Walk(root, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.Import, ast.ImportFrom, ast.Assign:
		default:
			return true
		}
		if covered(n.Line, units) || n.Line < 1 || n.Line > len(lines) {
			return true
		}
		text := strings.TrimSpace(lines[n.Line-1])
		if text == "" {
			return true
		}
		if _, ok := seen[text]; ok {
			return true
		}
		seen[text] = struct{}{}
		stmts = append(stmts, text)
		return true
	})
	if len(stmts) == 0 {
		return Chunk{}, false
	}
	return Chunk{
		Content:   strings.Join(stmts, "\n"),
		Type:      ChunkGlobal,
		Name:      "global_scope",
		LineStart: 1,
		LineEnd:   len(stmts),
	}, true
}

func covered(line int, units []Chunk) bool {
	for _, u := range units {
		if line >= u.LineStart && line <= u.LineEnd {
			return true
		}
	}
	return false
}
