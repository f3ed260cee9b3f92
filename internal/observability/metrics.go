// Package observability exposes gateway metrics through an OTel meter backed
// by a Prometheus exporter and scrape endpoint.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Config configures the metrics collector.
type Config struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	PrometheusPort int  `yaml:"prometheus_port" mapstructure:"prometheus_port"`
}

// Collector manages all gateway metrics. A nil or disabled collector is safe
// to record against; every method degrades to a no-op.
type Collector struct {
	meter metric.Meter

	decisions       metric.Int64Counter
	decisionLatency metric.Float64Histogram
	piiDetections   metric.Int64Counter

	retrievalOps     metric.Int64Counter
	retrievalLatency metric.Float64Histogram

	llmRequests metric.Int64Counter
	llmLatency  metric.Float64Histogram

	prometheusServer *http.Server
}

// NewCollector creates a metrics collector. When disabled it returns an
// inert collector so call sites never branch.
func NewCollector(config Config) (*Collector, error) {
	if !config.Enabled {
		return &Collector{}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter("govgate")

	c := &Collector{meter: meter}

	if c.decisions, err = meter.Int64Counter(
		"govgate.decisions.total",
		metric.WithDescription("Governed requests by resolved mode and model"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create decisions counter: %w", err)
	}

	if c.decisionLatency, err = meter.Float64Histogram(
		"govgate.decisions.latency",
		metric.WithDescription("Policy decision latency"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("create decision latency histogram: %w", err)
	}

	if c.piiDetections, err = meter.Int64Counter(
		"govgate.pii.detections.total",
		metric.WithDescription("Requests with PII detected"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create pii counter: %w", err)
	}

	if c.retrievalOps, err = meter.Int64Counter(
		"govgate.retrieval.operations.total",
		metric.WithDescription("Retrieval ingest/search operations by outcome"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("create retrieval counter: %w", err)
	}

	if c.retrievalLatency, err = meter.Float64Histogram(
		"govgate.retrieval.latency",
		metric.WithDescription("Retrieval operation latency"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("create retrieval latency histogram: %w", err)
	}

	if c.llmRequests, err = meter.Int64Counter(
		"govgate.llm.requests.total",
		metric.WithDescription("Upstream LLM requests by model"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create llm counter: %w", err)
	}

	if c.llmLatency, err = meter.Float64Histogram(
		"govgate.llm.latency",
		metric.WithDescription("Upstream LLM request latency"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("create llm latency histogram: %w", err)
	}

	if config.PrometheusPort > 0 {
		c.startPrometheusServer(config.PrometheusPort)
	}

	return c, nil
}

func (c *Collector) startPrometheusServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promclient.Handler())

	c.prometheusServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := c.prometheusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("prometheus server error: %v\n", err)
		}
	}()
}

// RecordDecision records one governed request.
func (c *Collector) RecordDecision(ctx context.Context, mode, model string, piiDetected bool, latency time.Duration) {
	if c == nil || c.decisions == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("model", model),
	)
	c.decisions.Add(ctx, 1, attrs)
	c.decisionLatency.Record(ctx, float64(latency.Milliseconds()), attrs)
	if piiDetected {
		c.piiDetections.Add(ctx, 1)
	}
}

// RecordRetrieval records one retrieval operation.
func (c *Collector) RecordRetrieval(ctx context.Context, operation string, err error, latency time.Duration) {
	if c == nil || c.retrievalOps == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	c.retrievalOps.Add(ctx, 1, attrs)
	c.retrievalLatency.Record(ctx, float64(latency.Milliseconds()), attrs)
}

// RecordLLMRequest records one upstream LLM call.
func (c *Collector) RecordLLMRequest(ctx context.Context, model string, err error, latency time.Duration) {
	if c == nil || c.llmRequests == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	)
	c.llmRequests.Add(ctx, 1, attrs)
	c.llmLatency.Record(ctx, float64(latency.Milliseconds()), attrs)
}

// Shutdown stops the Prometheus scrape server.
func (c *Collector) Shutdown(ctx context.Context) error {
	if c == nil || c.prometheusServer == nil {
		return nil
	}
	return c.prometheusServer.Shutdown(ctx)
}
