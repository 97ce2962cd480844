package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"prism/internal/config"
	"prism/internal/crawler"
	"prism/internal/index"
	"prism/internal/knowledge"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the analysis views over HTTP.
type Server struct {
	cfg        *config.Config
	capability *knowledge.Capability
	chunker    *knowledge.Chunker
	ranker     *knowledge.Ranker
	indexer    *index.Indexer
	logger     *slog.Logger
}

// New wires a server around an initialized embedding capability. The
// capability may be unavailable; ranking routes then answer 503.
func New(cfg *config.Config, capability *knowledge.Capability, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	chunker := knowledge.NewChunker(cfg.Retrieval.MaxChunks, logger)
	return &Server{
		cfg:        cfg,
		capability: capability,
		chunker:    chunker,
		ranker:     knowledge.NewRanker(capability, knowledge.WithMinScore(cfg.Retrieval.MinScore)),
		indexer:    index.NewIndexer(crawler.NewCrawler(logger), chunker, cfg.Crawl.MaxFileSize, logger),
		logger:     logger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware(s.cfg.Server.CORSOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/ast", s.handleAST)
	api.POST("/inheritance", s.handleInheritance)
	api.POST("/callgraph", s.handleCallGraph)
	api.POST("/chunks", s.handleChunks)
	api.POST("/diagram", s.handleDiagram)
	api.POST("/rag-query", s.handleRAGQuery)
	api.POST("/rag-paths", s.handleRAGPaths)
	api.POST("/analyze-codebase", s.handleAnalyzeCodebase)
	api.POST("/rag-query-codebase", s.handleRAGQueryCodebase)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
