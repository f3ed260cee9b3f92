// Package rag implements the hybrid retrieval engine: tenant-scoped ingestion
// into a vector index and a keyword index, and fused search across both.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// EmbedderConfig holds embedding provider configuration.
type EmbedderConfig struct {
	Model     string // e.g. "text-embedding-3-small"
	APIKey    string
	BaseURL   string // OpenAI-compatible endpoint, defaults to api.openai.com
	Dimension int    // Embedding width, default 1536
	CacheSize int    // LRU cache entries, default 10000
}

// Embedder generates text embeddings. Failures propagate to callers as
// retrieval errors; they are never swallowed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

type httpEmbedder struct {
	config     EmbedderConfig
	httpClient *http.Client
	cache      *lru.Cache[string, []float32]
}

// NewEmbedder creates an embedder against an OpenAI-compatible embeddings
// endpoint, with an LRU cache in front of it.
func NewEmbedder(config EmbedderConfig) (Embedder, error) {
	if config.Model == "" {
		config.Model = "text-embedding-3-small"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Dimension == 0 {
		config.Dimension = 1536
	}
	if config.CacheSize == 0 {
		config.CacheSize = 10000
	}

	cache, err := lru.New[string, []float32](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &httpEmbedder{
		config:     config,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cache:      cache,
	}, nil
}

func (e *httpEmbedder) Dimensions() int {
	return e.config.Dimension
}

// Embed generates the embedding for a single text, consulting the cache
// first and retrying transient API failures with backoff.
func (e *httpEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	var embedding []float32
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		embedding, err = e.callAPI(ctx, text)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("embed after retries: %w", err)
	}

	e.cache.Add(text, embedding)
	return embedding, nil
}

func (e *httpEmbedder) callAPI(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model": e.config.Model,
		"input": []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.config.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings API error %d: %s", resp.StatusCode, string(payload))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) == 0 {
		return nil, fmt.Errorf("embeddings API returned no data")
	}

	return apiResp.Data[0].Embedding, nil
}
