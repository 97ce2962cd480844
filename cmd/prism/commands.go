package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"prism/internal/analysis"
	"prism/internal/ast"
	"prism/internal/config"
	"prism/internal/crawler"
	"prism/internal/diagram"
	"prism/internal/extractor"
	"prism/internal/graph"
	"prism/internal/index"
	"prism/internal/knowledge"
	"prism/internal/retrieval"
	"prism/internal/server"

	"github.com/spf13/cobra"
)

var (
	maxFiles    int
	topK        int
	maxDepth    int
	diagramKind string
)

func init() {
	analyzeCmd.Flags().IntVar(&maxFiles, "max-files", 0, "Maximum files to analyze in a directory (default from config)")
	queryCmd.Flags().IntVar(&maxFiles, "max-files", 0, "Maximum files to search in a directory (default from config)")
	queryCmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of results to return (default from config)")
	diagramCmd.Flags().StringVar(&diagramKind, "kind", "class", "Diagram to render: class or callgraph")
	queryCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum call-graph path length (default from config)")
}

// setup loads the config and builds the process logger on stderr.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newCapability(ctx context.Context, cfg *config.Config, logger *slog.Logger) *knowledge.Capability {
	return knowledge.NewCapability(ctx, knowledge.EmbedderOptions{
		Provider:  cfg.Embedding.Provider,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		BaseURL:   cfg.Embedding.BaseURL,
	}, cfg.Embedding.CacheSize, logger)
}

func newIndexer(cfg *config.Config, logger *slog.Logger) *index.Indexer {
	return index.NewIndexer(crawler.NewCrawler(logger), knowledge.NewChunker(cfg.Retrieval.MaxChunks, logger), cfg.Crawl.MaxFileSize, logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func readFile(cfg *config.Config, path string) ([]byte, error) {
	return crawler.ReadSource(path, cfg.Crawl.MaxFileSize)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		capability := newCapability(ctx, cfg, logger)
		return server.New(cfg, capability, logger).Run(ctx)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Print classes, functions and calls of a file or directory as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		path := args[0]

		dir, err := isDir(path)
		if err != nil {
			return err
		}
		if dir {
			cb, err := newIndexer(cfg, logger).AnalyzeCodebase(ctx, path, orDefault(maxFiles, cfg.Crawl.MaxFiles))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				*index.Codebase
				Statistics analysis.Statistics `json:"statistics"`
				Hotspots   []analysis.Hotspot  `json:"hotspots"`
			}{cb, analysis.Summarize(cb), analysis.Hotspots(cb.Functions, cb.Calls, 10)})
		}

		src, err := readFile(cfg, path)
		if err != nil {
			return err
		}
		res, err := extractor.NewExtractor(logger).Extract(ctx, src)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res.TagFile(filepath.ToSlash(path))
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Print the retrieval chunks of a file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		src, err := readFile(cfg, args[0])
		if err != nil {
			return err
		}
		chunks := knowledge.NewChunker(cfg.Retrieval.MaxChunks, logger).Chunk(cmd.Context(), src)
		return writeJSON(cmd.OutOrStdout(), chunks)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <path> <query>",
	Short: "Rank the chunks of a file or directory against a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		path, query := args[0], args[1]

		capability := newCapability(ctx, cfg, logger)
		if !capability.Available() {
			return capability.Err()
		}
		ranker := knowledge.NewRanker(capability, knowledge.WithMinScore(cfg.Retrieval.MinScore))
		k := orDefault(topK, cfg.Retrieval.TopK)

		dir, err := isDir(path)
		if err != nil {
			return err
		}
		if dir {
			set, err := newIndexer(cfg, logger).ChunkCodebase(ctx, path, orDefault(maxFiles, cfg.Crawl.MaxFiles))
			if err != nil {
				return err
			}
			results, err := ranker.Rank(ctx, query, set.Chunks, k)
			if err != nil {
				return err
			}
			knowledge.AttachCoordinatesByFile(results, set.Trees)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"query":            query,
				"files_processed":  len(set.Files),
				"chunks_processed": len(set.Chunks),
				"results":          results,
				"errors":           set.Errors,
			})
		}

		src, err := readFile(cfg, path)
		if err != nil {
			return err
		}
		tree, err := ast.Parse(ctx, src)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		chunks := knowledge.NewChunker(cfg.Retrieval.MaxChunks, logger).ChunkTree(tree)
		results, err := ranker.Rank(ctx, query, chunks, k)
		if err != nil {
			return err
		}
		knowledge.AttachCoordinates(results, tree)

		cg := extractor.CallGraph(tree)
		pathCfg := retrieval.DefaultConfig()
		pathCfg.MaxDepth = orDefault(maxDepth, cfg.Retrieval.MaxDepth)
		paths := retrieval.Find(ctx, results, graph.Build(cg.Functions, cg.Calls), cg.Functions, pathCfg)
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"query":   query,
			"results": results,
			"paths":   paths,
		})
	},
}

var diagramCmd = &cobra.Command{
	Use:   "diagram <file>",
	Short: "Print a Mermaid class or call-graph diagram of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		src, err := readFile(cfg, args[0])
		if err != nil {
			return err
		}
		tree, err := ast.Parse(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		switch diagramKind {
		case "class":
			_, err = io.WriteString(cmd.OutOrStdout(), diagram.ClassDiagram(extractor.Classes(tree)))
		case "callgraph":
			_, err = io.WriteString(cmd.OutOrStdout(), diagram.CallFlowchart(extractor.CallGraph(tree)))
		default:
			err = fmt.Errorf("unknown diagram kind %q", diagramKind)
		}
		return err
	},
}
