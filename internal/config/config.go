// Package config provides configuration loading and structs for the screener.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides (e.g. SCREENER_OFFLINE).
const EnvPrefix = "SCREENER"

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug" envconfig:"DEBUG"`
	Offline   bool            `yaml:"offline" envconfig:"OFFLINE"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Explain   ExplainConfig   `yaml:"explain"`
	Watch     WatchConfig     `yaml:"watch"`
	OpenAI    OpenAIConfig    `yaml:"-" ignored:"true"`
}

// OpenAIConfig holds credentials for the remote embedding and generation services.
// It is only ever populated from the environment so keys never land in the config file.
type OpenAIConfig struct {
	APIKey  string `envconfig:"OPENAI_API_KEY"`
	BaseURL string `envconfig:"OPENAI_BASE_URL"`
}

// RemoteEnabled reports whether remote calls are allowed: an API key is present
// and offline mode is off.
func (c *Config) RemoteEnabled() bool {
	return !c.Offline && c.OpenAI.APIKey != ""
}

// WatchConfig holds resume inbox watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories" envconfig:"DIRECTORIES"`
	Extensions  []string `yaml:"extensions" envconfig:"EXTENSIONS"`
	Recursive   *bool    `yaml:"recursive" envconfig:"RECURSIVE"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" envconfig:"HOST"`
	Port int    `yaml:"port" envconfig:"PORT"`
}

// StorageConfig holds paths for the candidate database, indices and the embedding cache.
type StorageConfig struct {
	DatabasePath       string `yaml:"database_path" envconfig:"DATABASE_PATH"`
	BleveIndexPath     string `yaml:"bleve_index_path" envconfig:"BLEVE_INDEX_PATH"`
	VectorStorePath    string `yaml:"vector_store_path" envconfig:"VECTOR_STORE_PATH"`
	EmbeddingCachePath string `yaml:"embedding_cache_path" envconfig:"EMBEDDING_CACHE_PATH"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the remote backend: "openai", "onnx" or "none".
	Provider          string  `yaml:"provider" envconfig:"PROVIDER"`
	Model             string  `yaml:"model" envconfig:"MODEL"`
	Dimensions        int     `yaml:"dimensions" envconfig:"DIMENSIONS"`
	MaxRetries        int     `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	// ONNX settings, used when Provider is "onnx".
	ModelPath string `yaml:"model_path" envconfig:"MODEL_PATH"`
	MaxTokens int    `yaml:"max_tokens" envconfig:"MAX_TOKENS"`
}

// VectorConfig holds vector index settings.
type VectorConfig struct {
	// IndexType is "chromem" (default) or "memory".
	IndexType  string `yaml:"index_type" envconfig:"INDEX_TYPE"`
	Collection string `yaml:"collection" envconfig:"COLLECTION"`
	Compress   bool   `yaml:"compress" envconfig:"COMPRESS"`
}

// RankingConfig holds re-ranking settings.
type RankingConfig struct {
	DefaultTopK     int     `yaml:"default_top_k" envconfig:"DEFAULT_TOP_K"`
	MaxTopK         int     `yaml:"max_top_k" envconfig:"MAX_TOP_K"`
	OverfetchFactor int     `yaml:"overfetch_factor" envconfig:"OVERFETCH_FACTOR"`
	BoostPerYear    float64 `yaml:"boost_per_year" envconfig:"BOOST_PER_YEAR"`
	MaxBoost        float64 `yaml:"max_boost" envconfig:"MAX_BOOST"`
}

// ExplainConfig holds explanation generator settings.
type ExplainConfig struct {
	Model             string   `yaml:"model" envconfig:"MODEL"`
	AllowedModels     []string `yaml:"allowed_models" envconfig:"ALLOWED_MODELS"`
	MaxTokens         int      `yaml:"max_tokens" envconfig:"MAX_TOKENS"`
	Temperature       float64  `yaml:"temperature" envconfig:"TEMPERATURE"`
	RequestsPerSecond float64  `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
}

// Load reads and parses the config file at path, expands paths, applies defaults
// and environment overrides. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	expandPaths(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// Default returns a config built only from defaults and the environment.
// Relative paths resolve against the working directory.
func Default() (*Config, error) {
	var cfg Config
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	expandPaths(&cfg, cwd)
	return &cfg, nil
}

// ApplyEnv overlays SCREENER_* variables and the OpenAI credentials onto cfg.
// Unset variables leave the existing values untouched.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}
	if err := envconfig.Process("", &cfg.OpenAI); err != nil {
		return fmt.Errorf("failed to process OpenAI environment: %w", err)
	}
	return nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandPaths(cfg *Config, configDir string) {
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.VectorStorePath = expandPath(cfg.Storage.VectorStorePath, configDir)
	cfg.Storage.EmbeddingCachePath = expandPath(cfg.Storage.EmbeddingCachePath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
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
