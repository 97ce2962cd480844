package index

import (
	"context"
	"log/slog"
	"path/filepath"

	"prism/internal/ast"
	"prism/internal/crawler"
	"prism/internal/extractor"
	"prism/internal/knowledge"
)

// FileError records a file that could not be read or parsed.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Codebase is the union of the structural views of every analyzed file.
type Codebase struct {
	Root       string                     `json:"directory_path"`
	FilesFound int                        `json:"files_found"`
	Files      []string                   `json:"files"`
	Classes    []extractor.ClassRecord    `json:"classes"`
	Functions  []extractor.FunctionRecord `json:"functions"`
	Standalone []extractor.FunctionRecord `json:"standalone_functions"`
	Calls      []extractor.CallEdge       `json:"calls"`
	Errors     []FileError                `json:"errors"`
	Skipped    []string                   `json:"skipped_directories"`
	Trees      map[string]*ast.Tree       `json:"-"`
}

// ChunkSet is the union of the chunks of every processed file.
type ChunkSet struct {
	Root    string               `json:"directory_path"`
	Files   []string             `json:"files"`
	Chunks  []knowledge.Chunk    `json:"chunks"`
	Errors  []FileError          `json:"errors"`
	Skipped []string             `json:"skipped_directories"`
	Trees   map[string]*ast.Tree `json:"-"`
}

// Indexer orchestrates per-file analysis over a directory tree.
type Indexer struct {
	crawler     *crawler.Crawler
	extractor   *extractor.Extractor
	chunker     *knowledge.Chunker
	maxFileSize int64
	logger      *slog.Logger
}

// NewIndexer creates a new indexer. maxFileSize <= 0 selects
// crawler.DefaultMaxFileSize.
func NewIndexer(c *crawler.Crawler, chunker *knowledge.Chunker, maxFileSize int64, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		crawler:     c,
		extractor:   extractor.NewExtractor(logger),
		chunker:     chunker,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// AnalyzeCodebase extracts classes, functions and calls from every Python
// file under root, in crawl order. Failing files are recorded in Errors and
// do not stop the batch.
func (i *Indexer) AnalyzeCodebase(ctx context.Context, root string, maxFiles int) (*Codebase, error) {
	found, err := i.crawler.Discover(root, maxFiles)
	if err != nil {
		return nil, err
	}

	cb := &Codebase{
		Root:       root,
		FilesFound: found.Found,
		Files:      []string{},
		Classes:    []extractor.ClassRecord{},
		Functions:  []extractor.FunctionRecord{},
		Standalone: []extractor.FunctionRecord{},
		Calls:      []extractor.CallEdge{},
		Errors:     []FileError{},
		Skipped:    found.Skipped,
		Trees:      make(map[string]*ast.Tree),
	}

	for _, rel := range found.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := crawler.ReadSource(filepath.Join(root, filepath.FromSlash(rel)), i.maxFileSize)
		if err != nil {
			cb.Errors = append(cb.Errors, i.fileError(rel, err))
			continue
		}
		res, err := i.extractor.Extract(ctx, src)
		if err != nil {
			cb.Errors = append(cb.Errors, i.fileError(rel, err))
			continue
		}
		res.TagFile(rel)

		cb.Files = append(cb.Files, rel)
		cb.Classes = append(cb.Classes, res.Classes...)
		cb.Standalone = append(cb.Standalone, res.Functions...)
		cb.Functions = append(cb.Functions, res.CallGraph.Functions...)
		cb.Calls = append(cb.Calls, res.CallGraph.Calls...)
		cb.Trees[rel] = res.Tree
	}

	i.logger.Info("codebase analyzed",
		slog.String("root", root),
		slog.Int("files", len(cb.Files)),
		slog.Int("errors", len(cb.Errors)))
	return cb, nil
}

// ChunkCodebase chunks every Python file under root, tagging each chunk
// with its file. The total number of chunks is bounded by the chunker's
// limit.
func (i *Indexer) ChunkCodebase(ctx context.Context, root string, maxFiles int) (*ChunkSet, error) {
	found, err := i.crawler.Discover(root, maxFiles)
	if err != nil {
		return nil, err
	}

	set := &ChunkSet{
		Root:    root,
		Files:   []string{},
		Chunks:  []knowledge.Chunk{},
		Errors:  []FileError{},
		Skipped: found.Skipped,
		Trees:   make(map[string]*ast.Tree),
	}

	for _, rel := range found.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(set.Chunks) >= i.chunker.MaxChunks() {
			break
		}
		src, err := crawler.ReadSource(filepath.Join(root, filepath.FromSlash(rel)), i.maxFileSize)
		if err != nil {
			set.Errors = append(set.Errors, i.fileError(rel, err))
			continue
		}
		tree, err := ast.Parse(ctx, src)
		if err != nil {
			set.Errors = append(set.Errors, i.fileError(rel, err))
			continue
		}

		chunks := i.chunker.ChunkTree(tree)
		if room := i.chunker.MaxChunks() - len(set.Chunks); len(chunks) > room {
			chunks = chunks[:room]
		}
		for j := range chunks {
			chunks[j].File = rel
		}
		set.Files = append(set.Files, rel)
		set.Chunks = append(set.Chunks, chunks...)
		set.Trees[rel] = tree
	}

	i.logger.Info("codebase chunked",
		slog.String("root", root),
		slog.Int("files", len(set.Files)),
		slog.Int("chunks", len(set.Chunks)))
	return set, nil
}

func (i *Indexer) fileError(file string, err error) FileError {
	i.logger.Warn("skipping file", slog.String("file", file), slog.String("error", err.Error()))
	return FileError{File: file, Error: err.Error()}
}
