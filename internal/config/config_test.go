package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "configs/policies.yaml", cfg.PolicyPath)
	assert.True(t, cfg.WatchPolicy)
	assert.Equal(t, "ja", cfg.Analyzer.Language)
	assert.Equal(t, 0.4, cfg.Analyzer.ScoreThreshold)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 1500, cfg.Retrieval.ContextTokenBudget)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.PrometheusPort)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: ":9999"
policy_path: /etc/govgate/policies.yaml
retrieval:
  top_k: 10
analyzer:
  endpoint: http://analyzer:5001
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, "http://analyzer:5001", cfg.Analyzer.Endpoint)
	// Values absent from the file keep their defaults.
	assert.Equal(t, 1500, cfg.Retrieval.ContextTokenBudget)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GOVGATE_LISTEN_ADDR", ":7777")
	t.Setenv("GOVGATE_EMBEDDING_API_KEY", "sk-env-secret")
	t.Setenv("GOVGATE_ANALYZER_ENDPOINT", "http://analyzer:5001")
	t.Setenv("GOVGATE_LLM_OPENAI_API_KEY", "sk-env-llm")
	t.Setenv("GOVGATE_LLM_OPENAI_BASE_URL", "http://llm.internal/v1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.ListenAddr)
	assert.Equal(t, "sk-env-secret", cfg.Embedding.APIKey)
	assert.Equal(t, "http://analyzer:5001", cfg.Analyzer.Endpoint)
	assert.Equal(t, "sk-env-llm", cfg.LLM.OpenAIAPIKey)
	assert.Equal(t, "http://llm.internal/v1", cfg.LLM.OpenAIBaseURL)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_DataPaths(t *testing.T) {
	cfg := &Config{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "keyword_docs.db"), cfg.KeywordPath())
	assert.Equal(t, filepath.Join("data", "vectors"), cfg.VectorPath())
	assert.Equal(t, filepath.Join("data", "request_logs.db"), cfg.LogPath())
}
