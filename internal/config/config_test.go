package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PRISM_API_KEY", "PRISM_EMBEDDING_PROVIDER", "PRISM_EMBEDDING_MODEL", "PRISM_ADDR", "PRISM_LOG_LEVEL", "GEMINI_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
embedding:
  provider: ollama
  base_url: http://localhost:11434
retrieval:
  top_k: 3
log:
  format: json
`), 0o644))
	t.Setenv("PRISM_EMBEDDING_MODEL", "mxbai-embed-large")
	t.Setenv("PRISM_LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedding.Model)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 5, cfg.Retrieval.MaxDepth, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_ProviderKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRISM_EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", "embedding:\n  provider: cohere\n"},
		{"zero top_k", "retrieval:\n  top_k: 0\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
