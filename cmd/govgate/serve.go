package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"govgate/internal/config"
	"govgate/internal/governance"
	"govgate/internal/llm"
	"govgate/internal/logging"
	"govgate/internal/logstore"
	"govgate/internal/observability"
	"govgate/internal/pii"
	"govgate/internal/policy"
	"govgate/internal/rag"
	serverhttp "govgate/internal/server/http"
	"govgate/internal/token"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the governance gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	logger := logging.NewComponentLogger("Main")
	logger.Info("starting governance gateway...")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Policy load failure is fatal at startup.
	doc, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}
	policies := policy.NewStore(doc, logging.NewComponentLogger("PolicyStore"))
	logger.Info("policy loaded: version=%s modes=%d", doc.Version, len(doc.Modes))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WatchPolicy {
		if err := policies.Watch(ctx, cfg.PolicyPath); err != nil {
			logger.Warn("policy hot reload disabled: %v", err)
		}
	}

	metrics, err := observability.NewCollector(observability.Config{
		Enabled:        cfg.Metrics.Enabled,
		PrometheusPort: cfg.Metrics.PrometheusPort,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	sensor := pii.NewSensor(
		logging.NewComponentLogger("PIISensor"),
		pii.NewAnalyzerDetector(pii.AnalyzerConfig{
			Endpoint:       cfg.Analyzer.Endpoint,
			Language:       cfg.Analyzer.Language,
			ScoreThreshold: cfg.Analyzer.ScoreThreshold,
			Timeout:        cfg.Analyzer.Timeout,
		}),
		pii.NewRegexDetector(),
	)

	kernel := governance.NewKernel(policies, sensor, metrics, logging.NewComponentLogger("Kernel"))

	embedder, err := rag.NewEmbedder(rag.EmbedderConfig{
		Model:     cfg.Embedding.Model,
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
		Dimension: cfg.Embedding.Dimension,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	vectorIndex, err := rag.NewVectorIndex(cfg.VectorPath(), embedder)
	if err != nil {
		return fmt.Errorf("init vector index: %w", err)
	}

	keywordIndex, err := rag.NewKeywordIndex(cfg.KeywordPath())
	if err != nil {
		return fmt.Errorf("init keyword index: %w", err)
	}
	defer keywordIndex.Close()

	retriever := rag.NewHybridRetriever(embedder, vectorIndex, keywordIndex, rag.UnionFuser{},
		metrics, logging.NewComponentLogger("HybridRetriever"))

	logs, err := logstore.Open(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open log store: %w", err)
	}
	defer logs.Close()

	router := llm.NewRouter(map[string]llm.Client{
		"openai": llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAIAPIKey,
			BaseURL: cfg.LLM.OpenAIBaseURL,
			Timeout: cfg.LLM.Timeout,
		}),
		"local": llm.NewEchoClient("local"),
	})

	server := serverhttp.NewServer(serverhttp.Options{
		ListenAddr:         cfg.ListenAddr,
		Debug:              cfg.Debug,
		TopK:               cfg.Retrieval.TopK,
		ContextTokenBudget: cfg.Retrieval.ContextTokenBudget,
	}, kernel, retriever, router, logs, policies, token.NewCounter(), metrics, logging.NewComponentLogger("HTTPServer"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown: %v", err)
	}
	return nil
}
