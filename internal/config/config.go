// Package config loads gateway configuration from an optional YAML file and
// GOVGATE_-prefixed environment variables, with defaults in code.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Debug      bool   `mapstructure:"debug"`

	PolicyPath  string `mapstructure:"policy_path"`
	WatchPolicy bool   `mapstructure:"watch_policy"`
	DataDir     string `mapstructure:"data_dir"`

	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Dimension int    `mapstructure:"dimension"`
	CacheSize int    `mapstructure:"cache_size"`
}

// AnalyzerConfig configures the NLP PII analyzer service.
type AnalyzerConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Language       string        `mapstructure:"language"`
	ScoreThreshold float64       `mapstructure:"score_threshold"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// LLMConfig configures the upstream chat provider.
type LLMConfig struct {
	OpenAIAPIKey  string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL string        `mapstructure:"openai_base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// RetrievalConfig configures search behavior and context splicing.
type RetrievalConfig struct {
	TopK               int `mapstructure:"top_k"`
	ContextTokenBudget int `mapstructure:"context_token_budget"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("debug", false)
	v.SetDefault("policy_path", "configs/policies.yaml")
	v.SetDefault("watch_policy", true)
	v.SetDefault("data_dir", "data")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimension", 1536)
	v.SetDefault("embedding.cache_size", 10000)
	v.SetDefault("analyzer.language", "ja")
	v.SetDefault("analyzer.score_threshold", 0.4)
	v.SetDefault("analyzer.timeout", 10*time.Second)
	v.SetDefault("llm.timeout", 120*time.Second)

	// Keys with no meaningful default still need registering, otherwise
	// AutomaticEnv never consults them.
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("analyzer.endpoint", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.context_token_budget", 1500)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.prometheus_port", 9090)

	v.SetEnvPrefix("GOVGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// VectorPath returns the vector index persistence directory.
func (c *Config) VectorPath() string {
	return filepath.Join(c.DataDir, "vectors")
}

// KeywordPath returns the keyword index database file.
func (c *Config) KeywordPath() string {
	return filepath.Join(c.DataDir, "keyword_docs.db")
}

// LogPath returns the request log database file.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "request_logs.db")
}
