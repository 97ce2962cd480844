package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr" validate:"required"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Embedding struct {
		Provider  string `yaml:"provider" validate:"oneof=gemini openai ollama none"`
		Model     string `yaml:"model"`
		APIKey    string `yaml:"api_key"`
		Dimension int    `yaml:"dimension" validate:"gte=0"`
		BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
		CacheSize int    `yaml:"cache_size" validate:"gte=0"`
	} `yaml:"embedding"`
	Retrieval struct {
		TopK      int     `yaml:"top_k" validate:"gte=1"`
		MinScore  float64 `yaml:"min_score" validate:"gte=-1,lte=1"`
		MaxDepth  int     `yaml:"max_depth" validate:"gte=1"`
		MaxChunks int     `yaml:"max_chunks" validate:"gte=1"`
	} `yaml:"retrieval"`
	Crawl struct {
		MaxFiles    int   `yaml:"max_files" validate:"gte=1"`
		MaxFileSize int64 `yaml:"max_file_size" validate:"gte=1"`
	} `yaml:"crawl"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=text json"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":5000"
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Embedding.Provider = "gemini"
	cfg.Embedding.CacheSize = 4096
	cfg.Retrieval.TopK = 5
	cfg.Retrieval.MinScore = 0.1
	cfg.Retrieval.MaxDepth = 5
	cfg.Retrieval.MaxChunks = 500
	cfg.Crawl.MaxFiles = 200
	cfg.Crawl.MaxFileSize = 2 * 1024 * 1024
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// LoadConfig reads .env, then the YAML file at path over the defaults, then
// PRISM_* environment overrides, and validates the result. A missing file
// is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if apiKey := os.Getenv("PRISM_API_KEY"); apiKey != "" {
		cfg.Embedding.APIKey = apiKey
	}
	if provider := os.Getenv("PRISM_EMBEDDING_PROVIDER"); provider != "" {
		cfg.Embedding.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("PRISM_EMBEDDING_MODEL"); model != "" {
		cfg.Embedding.Model = model
	}
	if addr := os.Getenv("PRISM_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("PRISM_LOG_LEVEL"); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}
	if cfg.Embedding.APIKey == "" {
		switch cfg.Embedding.Provider {
		case "gemini":
			cfg.Embedding.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}
