// Package config provides configuration loading and structs for the patent search service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Data      DataConfig      `yaml:"data"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds paths for the document catalog and the embedding matrix.
type StorageConfig struct {
	CatalogPath     string `yaml:"catalog_path"`
	EmbeddingsPath  string `yaml:"embeddings_path"`
	EmbeddingsStore string `yaml:"embeddings_store"` // "file" or "sqlite"
}

// DataConfig describes where patent JSON files are read from.
type DataConfig struct {
	Folder     string `yaml:"folder"`
	Pattern    string `yaml:"pattern"`
	IDStrategy string `yaml:"id_strategy"` // "content-hash" or "sequence"
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string       `yaml:"provider"` // "mock", "onnx" or "openai"
	Model      string       `yaml:"model"`
	ModelPath  string       `yaml:"model_path"`
	Dimensions int          `yaml:"dimensions"`
	MaxTokens  int          `yaml:"max_tokens"`
	BatchSize  int          `yaml:"batch_size"`
	CacheSize  int          `yaml:"cache_size"`
	OpenAI     OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	User      string `yaml:"user"`
}

// APIKey reads the key from the configured environment variable.
func (o OpenAIConfig) APIKey() string {
	return os.Getenv(o.APIKeyEnv)
}

// SearchConfig holds query and ranking settings.
type SearchConfig struct {
	DefaultTopK    int  `yaml:"default_top_k"`
	MaxTopK        int  `yaml:"max_top_k"`
	ShardSize      int  `yaml:"shard_size"`
	Workers        int  `yaml:"workers"`
	ReembedSimilar bool `yaml:"reembed_similar"`
}

// ClampTopK applies the default to non-positive values and caps at MaxTopK.
func (s SearchConfig) ClampTopK(topK int) int {
	if topK <= 0 {
		return s.DefaultTopK
	}
	if s.MaxTopK > 0 && topK > s.MaxTopK {
		return s.MaxTopK
	}
	return topK
}

// Default returns a configuration with every default applied. Relative paths are left
// relative to the working directory.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.CatalogPath = expandPath(cfg.Storage.CatalogPath, configDir)
	cfg.Storage.EmbeddingsPath = expandPath(cfg.Storage.EmbeddingsPath, configDir)
	cfg.Data.Folder = expandPath(cfg.Data.Folder, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// Validate rejects enumerated settings with unknown values.
func Validate(cfg *Config) error {
	switch cfg.Storage.EmbeddingsStore {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage.embeddings_store %q", cfg.Storage.EmbeddingsStore)
	}
	switch cfg.Data.IDStrategy {
	case "content-hash", "sequence":
	default:
		return fmt.Errorf("invalid data.id_strategy %q", cfg.Data.IDStrategy)
	}
	switch cfg.Embedding.Provider {
	case "mock", "onnx", "openai":
	default:
		return fmt.Errorf("invalid embedding.provider %q", cfg.Embedding.Provider)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir,
// "~/" is the home directory, and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	path = strings.TrimPrefix(path, "~/")
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
