package server

import (
	"log/slog"
	"net/http"

	"prism/internal/analysis"
	"prism/internal/ast"
	"prism/internal/diagram"
	"prism/internal/extractor"
	"prism/internal/graph"
	"prism/internal/knowledge"
	"prism/internal/retrieval"

	"github.com/gin-gonic/gin"
)

const hotspotLimit = 10

type codeRequest struct {
	Code string `json:"code"`
}

type diagramRequest struct {
	Code string `json:"code"`
	Kind string `json:"kind" binding:"omitempty,oneof=class callgraph"`
}

type queryRequest struct {
	Code     string `json:"code"`
	Query    string `json:"query"`
	TopK     int    `json:"top_k" binding:"omitempty,gte=1,lte=100"`
	MaxDepth int    `json:"max_depth" binding:"omitempty,gte=1,lte=20"`
}

type codebaseRequest struct {
	DirectoryPath string `json:"directory_path"`
	Query         string `json:"query"`
	MaxFiles      int    `json:"max_files" binding:"omitempty,gte=1,lte=10000"`
	TopK          int    `json:"top_k" binding:"omitempty,gte=1,lte=100"`
}

// HealthResponse reports liveness and embedding availability.
type HealthResponse struct {
	Status              string `json:"status"`
	Service             string `json:"service"`
	EmbeddingsAvailable bool   `json:"embeddings_available"`
	EmbeddingProvider   string `json:"embedding_provider,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:              "healthy",
		Service:             "prism-backend",
		EmbeddingsAvailable: s.capability.Available(),
		EmbeddingProvider:   s.capability.Provider(),
	})
}

// parseCode binds a code request and parses it. It writes the error
// response itself and reports false on failure.
func (s *Server) parseCode(c *gin.Context, handler string) (*ast.Tree, bool) {
	var req codeRequest
	if !bind(c, &req) {
		return nil, false
	}
	if req.Code == "" {
		writeError(c, http.StatusBadRequest, "No code provided")
		return nil, false
	}
	tree, err := ast.Parse(c.Request.Context(), []byte(req.Code))
	if err != nil {
		fail(c, s.requestLogger(c, handler), err)
		return nil, false
	}
	return tree, true
}

func (s *Server) handleAST(c *gin.Context) {
	tree, ok := s.parseCode(c, "ast")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ast": ast.ToMap(tree)})
}

func (s *Server) handleInheritance(c *gin.Context) {
	tree, ok := s.parseCode(c, "inheritance")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "classes": extractor.Classes(tree)})
}

func (s *Server) handleCallGraph(c *gin.Context) {
	tree, ok := s.parseCode(c, "callgraph")
	if !ok {
		return
	}
	cg := extractor.CallGraph(tree)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"functions": cg.Functions,
		"calls":     cg.Calls,
	})
}

func (s *Server) handleDiagram(c *gin.Context) {
	var req diagramRequest
	if !bind(c, &req) {
		return
	}
	if req.Code == "" {
		writeError(c, http.StatusBadRequest, "No code provided")
		return
	}
	tree, err := ast.Parse(c.Request.Context(), []byte(req.Code))
	if err != nil {
		fail(c, s.requestLogger(c, "diagram"), err)
		return
	}

	var out string
	if req.Kind == "callgraph" {
		out = diagram.CallFlowchart(extractor.CallGraph(tree))
	} else {
		req.Kind = "class"
		out = diagram.ClassDiagram(extractor.Classes(tree))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "kind": req.Kind, "mermaid": out})
}

func (s *Server) handleChunks(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	if req.Code == "" {
		writeError(c, http.StatusBadRequest, "No code provided")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chunks":  s.chunker.Chunk(c.Request.Context(), []byte(req.Code)),
	})
}

// rankSource checks the request, chunks the code and ranks the chunks
// against the query. Results carry coordinates into the parsed tree.
func (s *Server) rankSource(c *gin.Context, handler string, req queryRequest) (*ast.Tree, []knowledge.RetrievalResult, bool) {
	logger := s.requestLogger(c, handler)
	if req.Code == "" {
		writeError(c, http.StatusBadRequest, "No code provided")
		return nil, nil, false
	}
	if req.Query == "" {
		writeError(c, http.StatusBadRequest, "No query provided")
		return nil, nil, false
	}
	if !s.capability.Available() {
		fail(c, logger, s.capability.Err())
		return nil, nil, false
	}

	ctx := c.Request.Context()
	tree, err := ast.Parse(ctx, []byte(req.Code))
	if err != nil {
		fail(c, logger, err)
		return nil, nil, false
	}
	results, err := s.ranker.Rank(ctx, req.Query, s.chunker.ChunkTree(tree), s.topK(req.TopK))
	if err != nil {
		fail(c, logger, err)
		return nil, nil, false
	}
	knowledge.AttachCoordinates(results, tree)
	logger.Debug("ranked chunks", slog.String("query", req.Query), slog.Int("results", len(results)))
	return tree, results, true
}

func (s *Server) handleRAGQuery(c *gin.Context) {
	var req queryRequest
	if !bind(c, &req) {
		return
	}
	_, results, ok := s.rankSource(c, "rag-query", req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   req.Query,
		"results": results,
	})
}

func (s *Server) handleRAGPaths(c *gin.Context) {
	var req queryRequest
	if !bind(c, &req) {
		return
	}
	tree, results, ok := s.rankSource(c, "rag-paths", req)
	if !ok {
		return
	}

	cg := extractor.CallGraph(tree)
	cfg := retrieval.DefaultConfig()
	cfg.MaxDepth = s.cfg.Retrieval.MaxDepth
	if req.MaxDepth > 0 {
		cfg.MaxDepth = req.MaxDepth
	}
	paths := retrieval.Find(c.Request.Context(), results, graph.Build(cg.Functions, cg.Calls), cg.Functions, cfg)

	c.JSON(http.StatusOK, gin.H{
		"success":                   true,
		"query":                     req.Query,
		"results":                   results,
		"matched_nodes":             paths.MatchedNodes,
		"paths":                     paths.Paths,
		"unique_intermediate_nodes": paths.UniqueIntermediateNodes,
		"unique_edges":              paths.UniqueEdges,
		"diagram":                   diagram.PathFlowchart(paths),
	})
}

func (s *Server) handleAnalyzeCodebase(c *gin.Context) {
	var req codebaseRequest
	if !bind(c, &req) {
		return
	}
	if req.DirectoryPath == "" {
		writeError(c, http.StatusBadRequest, "No directory path provided")
		return
	}

	cb, err := s.indexer.AnalyzeCodebase(c.Request.Context(), req.DirectoryPath, s.maxFiles(req.MaxFiles))
	if err != nil {
		fail(c, s.requestLogger(c, "analyze-codebase"), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"directory_path":      req.DirectoryPath,
		"files_found":         cb.FilesFound,
		"files_analyzed":      len(cb.Files),
		"classes":             cb.Classes,
		"functions":           cb.Functions,
		"calls":               cb.Calls,
		"errors":              cb.Errors,
		"skipped_directories": cb.Skipped,
		"statistics":          analysis.Summarize(cb),
		"hotspots":            analysis.Hotspots(cb.Functions, cb.Calls, hotspotLimit),
	})
}

func (s *Server) handleRAGQueryCodebase(c *gin.Context) {
	var req codebaseRequest
	if !bind(c, &req) {
		return
	}
	logger := s.requestLogger(c, "rag-query-codebase")
	if req.DirectoryPath == "" {
		writeError(c, http.StatusBadRequest, "No directory path provided")
		return
	}
	if req.Query == "" {
		writeError(c, http.StatusBadRequest, "No query provided")
		return
	}
	if !s.capability.Available() {
		fail(c, logger, s.capability.Err())
		return
	}

	ctx := c.Request.Context()
	set, err := s.indexer.ChunkCodebase(ctx, req.DirectoryPath, s.maxFiles(req.MaxFiles))
	if err != nil {
		fail(c, logger, err)
		return
	}
	results, err := s.ranker.Rank(ctx, req.Query, set.Chunks, s.topK(req.TopK))
	if err != nil {
		fail(c, logger, err)
		return
	}
	knowledge.AttachCoordinatesByFile(results, set.Trees)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"query":               req.Query,
		"directory_path":      req.DirectoryPath,
		"files_processed":     len(set.Files),
		"chunks_processed":    len(set.Chunks),
		"results":             results,
		"errors":              set.Errors,
		"skipped_directories": set.Skipped,
	})
}

func (s *Server) topK(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.cfg.Retrieval.TopK
}

func (s *Server) maxFiles(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.cfg.Crawl.MaxFiles
}
