package pii

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// DefaultScoreThreshold is the minimum recognizer confidence for an entity to
// count as detected.
const DefaultScoreThreshold = 0.4

// entityVocabulary is the fixed set of entity types the gateway interprets.
// Anything else the analyzer reports is dropped.
var entityVocabulary = map[string]struct{}{
	"PERSON":        {},
	"PHONE_NUMBER":  {},
	"EMAIL_ADDRESS": {},
	"LOCATION":      {},
	"CREDIT_CARD":   {},
}

// AnalyzerConfig configures the NLP analyzer strategy.
type AnalyzerConfig struct {
	Endpoint       string  // Base URL of the analyzer service
	Language       string  // Recognition language (default "ja")
	ScoreThreshold float64 // Minimum entity confidence (default 0.4)
	Timeout        time.Duration
}

// analyzerClient talks to a Presidio-style entity recognition service. The
// backing model is loaded by the service on first use, so constructing and
// health-checking the client is the expensive step.
type analyzerClient struct {
	config     AnalyzerConfig
	httpClient *http.Client
}

var (
	sharedAnalyzerOnce sync.Once
	sharedAnalyzer     *analyzerClient
	sharedAnalyzerErr  error
)

type nlpDetector struct {
	config AnalyzerConfig
}

// NewAnalyzerDetector returns the NLP-backed primary strategy. The underlying
// client is built lazily on first Detect and shared process-wide; concurrent
// first calls never construct duplicate instances.
func NewAnalyzerDetector(config AnalyzerConfig) Detector {
	if config.Language == "" {
		config.Language = "ja"
	}
	if config.ScoreThreshold == 0 {
		config.ScoreThreshold = DefaultScoreThreshold
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &nlpDetector{config: config}
}

func (*nlpDetector) Name() string { return "analyzer" }

func (d *nlpDetector) Detect(ctx context.Context, text string) (Result, error) {
	client, err := d.client()
	if err != nil {
		return Result{}, err
	}
	return client.analyze(ctx, text)
}

func (d *nlpDetector) client() (*analyzerClient, error) {
	sharedAnalyzerOnce.Do(func() {
		sharedAnalyzer, sharedAnalyzerErr = newAnalyzerClient(d.config)
	})
	return sharedAnalyzer, sharedAnalyzerErr
}

func newAnalyzerClient(config AnalyzerConfig) (*analyzerClient, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("analyzer endpoint not configured")
	}

	client := &analyzerClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}

	// Probe once so a dead service fails the whole strategy up front instead
	// of timing out on every request.
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()
	if err := client.health(ctx); err != nil {
		return nil, fmt.Errorf("analyzer health check: %w", err)
	}

	return client, nil
}

func (c *analyzerClient) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analyzer unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

type analyzerFinding struct {
	EntityType string  `json:"entity_type"`
	Score      float64 `json:"score"`
}

func (c *analyzerClient) analyze(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(map[string]any{
		"text":     text,
		"language": c.config.Language,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/analyze", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("analyzer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("analyzer error %d: %s", resp.StatusCode, string(payload))
	}

	var findings []analyzerFinding
	if err := json.NewDecoder(resp.Body).Decode(&findings); err != nil {
		return Result{}, fmt.Errorf("decode analyzer response: %w", err)
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, f := range findings {
		if f.Score < c.config.ScoreThreshold {
			continue
		}
		if _, known := entityVocabulary[f.EntityType]; !known {
			continue
		}
		if _, dup := seen[f.EntityType]; dup {
			continue
		}
		seen[f.EntityType] = struct{}{}
		categories = append(categories, f.EntityType)
	}

	return Result{Detected: len(categories) > 0, Categories: categories}, nil
}
