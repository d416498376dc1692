// Package config provides configuration loading and structs for the Outlyne server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Recall    RecallConfig    `yaml:"recall"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Search    SearchConfig    `yaml:"search"`
	Classify  ClassifyConfig  `yaml:"classify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig holds embedder settings. Backend selects the implementation:
// "remote" (HTTP inference service), "onnx" (local, requires CGO), or "mock".
type EmbeddingConfig struct {
	Backend         string `yaml:"backend"`
	Endpoint        string `yaml:"endpoint"`
	VisionModelPath string `yaml:"vision_model_path"`
	TextModelPath   string `yaml:"text_model_path"`
	Dimensions      int    `yaml:"dimensions"`
	MaxTokens       int    `yaml:"max_tokens"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// CacheConfig holds sketch embedding cache settings.
type CacheConfig struct {
	Size       int `yaml:"size"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RecallConfig holds candidate recall adapter settings.
type RecallConfig struct {
	Backend        string  `yaml:"backend"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	SafeSearch     string  `yaml:"safe_search"`
	Region         string  `yaml:"region"`
}

// FetchConfig holds thumbnail download settings.
type FetchConfig struct {
	MaxConcurrent         int   `yaml:"max_concurrent"`
	TimeoutSeconds        int   `yaml:"timeout_seconds"`
	ConnectTimeoutSeconds int   `yaml:"connect_timeout_seconds"`
	MaxBodyBytes          int64 `yaml:"max_body_bytes"`
}

// SearchConfig holds pipeline settings.
type SearchConfig struct {
	DefaultLimit        int `yaml:"default_limit"`
	MaxLimit            int `yaml:"max_limit"`
	OverfetchMultiplier int `yaml:"overfetch_multiplier"`
}

// ClassifyConfig holds zero-shot classifier settings.
type ClassifyConfig struct {
	VocabularyPath string `yaml:"vocabulary_path"`
	Watch          bool   `yaml:"watch"`
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

	configDir := filepath.Dir(path)
	cfg.Embedding.VisionModelPath = expandPath(cfg.Embedding.VisionModelPath, configDir)
	cfg.Embedding.TextModelPath = expandPath(cfg.Embedding.TextModelPath, configDir)
	if cfg.Classify.VocabularyPath != "" {
		cfg.Classify.VocabularyPath = expandPath(cfg.Classify.VocabularyPath, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
