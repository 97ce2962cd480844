package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prism/internal/config"
	"prism/internal/knowledge"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// keywordEmbedder counts vocabulary words, giving deterministic cosine
// scores without a model.
type keywordEmbedder struct {
	vocabulary []string
}

func (e keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.vocabulary))
		for j, word := range e.vocabulary {
			vec[j] = float32(strings.Count(text, word))
		}
		out[i] = vec
	}
	return out, nil
}

func (e keywordEmbedder) Dimension() int { return len(e.vocabulary) }

const ragSource = `import os

def load(path):
    return read(path)

def read(path):
    return os.open(path)

def unrelated():
    pass
`

func newTestServer(capability *knowledge.Capability) *gin.Engine {
	if capability == nil {
		capability = knowledge.NewCapabilityWithEmbedder(
			keywordEmbedder{vocabulary: []string{"load", "read", "unrelated", "import"}}, "test", 16, nil)
	}
	return New(config.Default(), capability, nil).Router()
}

func do(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	w, body := do(t, newTestServer(nil), http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "prism-backend", body["service"])
	assert.Equal(t, true, body["embeddings_available"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestStructuralRoutes(t *testing.T) {
	router := newTestServer(nil)
	code := map[string]string{"code": "class A(B):\n    def m(self):\n        helper()\n"}

	t.Run("ast", func(t *testing.T) {
		w, body := do(t, router, http.MethodPost, "/api/ast", code)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		tree := body["ast"].(map[string]any)
		assert.Equal(t, "Module", tree["type"])
	})

	t.Run("inheritance", func(t *testing.T) {
		w, body := do(t, router, http.MethodPost, "/api/inheritance", code)
		require.Equal(t, http.StatusOK, w.Code)
		classes := body["classes"].([]any)
		require.Len(t, classes, 1)
		cls := classes[0].(map[string]any)
		assert.Equal(t, "A", cls["name"])
		assert.Equal(t, []any{"B"}, cls["bases"])
	})

	t.Run("callgraph", func(t *testing.T) {
		w, body := do(t, router, http.MethodPost, "/api/callgraph", code)
		require.Equal(t, http.StatusOK, w.Code)
		calls := body["calls"].([]any)
		require.Len(t, calls, 1)
		edge := calls[0].(map[string]any)
		assert.Equal(t, "A.m", edge["caller"])
		assert.Equal(t, "helper", edge["callee"])
	})

	t.Run("diagram", func(t *testing.T) {
		w, body := do(t, router, http.MethodPost, "/api/diagram", code)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "class", body["kind"])
		assert.Contains(t, body["mermaid"], "B <|-- A")

		w, body = do(t, router, http.MethodPost, "/api/diagram", map[string]string{"code": code["code"], "kind": "callgraph"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, body["mermaid"], "A_m --> helper")

		w, _ = do(t, router, http.MethodPost, "/api/diagram", map[string]string{"code": code["code"], "kind": "sequence"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("chunks", func(t *testing.T) {
		w, body := do(t, router, http.MethodPost, "/api/chunks", code)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["chunks"], 2)
	})
}

func TestErrorEnvelope(t *testing.T) {
	router := newTestServer(nil)

	tests := []struct {
		name    string
		path    string
		body    any
		status  int
		message string
	}{
		{"missing code", "/api/ast", map[string]string{}, http.StatusBadRequest, "No code provided"},
		{"empty body", "/api/callgraph", nil, http.StatusBadRequest, "No code provided"},
		{"syntax error", "/api/inheritance", map[string]string{"code": "def broken(:\n    pass\n"}, http.StatusBadRequest, "Syntax error: "},
		{"malformed json", "/api/ast", "{", http.StatusBadRequest, "Invalid request"},
		{"missing query", "/api/rag-query", map[string]string{"code": ragSource}, http.StatusBadRequest, "No query provided"},
		{"bad top_k", "/api/rag-query", map[string]any{"code": ragSource, "query": "x", "top_k": -1}, http.StatusBadRequest, "Invalid request"},
		{"missing directory", "/api/analyze-codebase", map[string]string{}, http.StatusBadRequest, "No directory path provided"},
		{"unknown directory", "/api/analyze-codebase", map[string]string{"directory_path": "/does/not/exist"}, http.StatusBadRequest, "not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], tt.message)
		})
	}
}

func TestRAGQuery(t *testing.T) {
	w, body := do(t, newTestServer(nil), http.MethodPost, "/api/rag-query",
		map[string]any{"code": ragSource, "query": "load read"})
	require.Equal(t, http.StatusOK, w.Code)

	results := body["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, "load", first["name"])
	assert.InDelta(t, 1.0, first["score"], 1e-6)
	ref := first["ast_ref"].(map[string]any)
	assert.Equal(t, "FunctionDef_3_0", ref["node_id"])
	assert.Equal(t, "read", results[1].(map[string]any)["name"])
}

func TestRAGPaths(t *testing.T) {
	w, body := do(t, newTestServer(nil), http.MethodPost, "/api/rag-paths",
		map[string]any{"code": ragSource, "query": "load read"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, body["matched_nodes"], 2)
	paths := body["paths"].([]any)
	require.Len(t, paths, 2)
	first := paths[0].(map[string]any)
	assert.Equal(t, "load", first["from"])
	assert.Equal(t, "read", first["to"])
	assert.Equal(t, "caller_to_callee", first["path_type"])
	assert.Equal(t, "callee_to_caller", paths[1].(map[string]any)["path_type"])
	assert.Empty(t, body["unique_intermediate_nodes"])
	assert.Len(t, body["unique_edges"], 1)
	assert.Contains(t, body["diagram"], "load -->|line 4| read")
}

func TestRankingUnavailable(t *testing.T) {
	router := newTestServer(knowledge.UnavailableCapability(errors.New("no api key")))

	w, body := do(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["embeddings_available"])

	for _, path := range []string{"/api/rag-query", "/api/rag-paths"} {
		w, body = do(t, router, http.MethodPost, path, map[string]any{"code": ragSource, "query": "load"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "no api key")
	}

	w, _ = do(t, router, http.MethodPost, "/api/rag-query-codebase",
		map[string]any{"directory_path": t.TempDir(), "query": "load"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/chunks", map[string]string{"code": ragSource})
	assert.Equal(t, http.StatusOK, w.Code, "chunking does not need embeddings")
}

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"io/loader.py":  "def load(path):\n    return read(path)\n",
		"io/reader.py":  "def read(path):\n    return open(path)\n",
		"broken.py":     "def broken(:\n",
		"venv/skip.py":  "def skipped():\n    pass\n",
		"notes/info.md": "# notes\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestAnalyzeCodebase(t *testing.T) {
	dir := writeTree(t)
	w, body := do(t, newTestServer(nil), http.MethodPost, "/api/analyze-codebase",
		map[string]any{"directory_path": dir})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, float64(3), body["files_found"])
	assert.Equal(t, float64(2), body["files_analyzed"])
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "broken.py", errs[0].(map[string]any)["file"])
	assert.Equal(t, []any{"venv"}, body["skipped_directories"])

	stats := body["statistics"].(map[string]any)
	assert.Equal(t, float64(2), stats["total_functions"])
	assert.Equal(t, float64(2), stats["total_calls"])
	assert.Equal(t, float64(1), stats["files_with_errors"])
	assert.Equal(t, float64(1), stats["directories_skipped"])
}

func TestRAGQueryCodebase(t *testing.T) {
	dir := writeTree(t)
	w, body := do(t, newTestServer(nil), http.MethodPost, "/api/rag-query-codebase",
		map[string]any{"directory_path": dir, "query": "read"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, float64(2), body["files_processed"])
	assert.Equal(t, float64(2), body["chunks_processed"])
	results := body["results"].([]any)
	require.Len(t, results, 2)
	for _, r := range results {
		res := r.(map[string]any)
		assert.NotEmpty(t, res["file"])
		assert.NotNil(t, res["ast_ref"])
	}
}

func TestMiddleware(t *testing.T) {
	router := newTestServer(nil)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/ast", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	})

	t.Run("metrics", func(t *testing.T) {
		do(t, router, http.MethodGet, "/api/health", nil)
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "prism_http_requests_total")
	})
}
