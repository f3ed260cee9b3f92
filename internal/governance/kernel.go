package governance

import (
	"context"
	"time"

	"govgate/internal/logging"
	"govgate/internal/observability"
	"govgate/internal/pii"
	"govgate/internal/policy"
)

// Decision is the outcome of governing one request.
type Decision struct {
	Domain        string
	Mode          string
	Model         string
	SystemPrompt  string
	PolicyVersion string
	PII           pii.Result
}

// Kernel evaluates the live policy against one message. The classifier and
// the decision rules are pure in-memory computation; only the PII sensor's
// primary strategy may block on I/O.
type Kernel struct {
	policies *policy.Store
	sensor   *pii.Sensor
	metrics  *observability.Collector
	logger   logging.Logger
}

// NewKernel wires the decision engine. metrics may be nil.
func NewKernel(policies *policy.Store, sensor *pii.Sensor, metrics *observability.Collector, logger logging.Logger) *Kernel {
	return &Kernel{
		policies: policies,
		sensor:   sensor,
		metrics:  metrics,
		logger:   logging.OrNop(logger),
	}
}

// Decide classifies the message, scans it for PII and resolves mode, model
// and system prompt under the current policy. It never fails: sensor errors
// degrade inside the sensor and every resolver is total.
func (k *Kernel) Decide(ctx context.Context, message string) Decision {
	start := time.Now()
	doc := k.policies.Current()

	domain := ClassifyDomain(message)
	piiResult := k.sensor.Detect(ctx, message)

	mode := DecideMode(message, doc, domain, piiResult)
	model := SelectModel(mode, doc)
	prompt := CompileSystemPrompt(mode, doc)

	decision := Decision{
		Domain:        domain,
		Mode:          mode,
		Model:         model,
		SystemPrompt:  prompt,
		PolicyVersion: doc.Version,
		PII:           piiResult,
	}

	k.logger.Debug("decision: domain=%s mode=%s model=%s pii=%v policy=%s",
		domain, mode, model, piiResult.Detected, doc.Version)
	k.metrics.RecordDecision(ctx, mode, model, piiResult.Detected, time.Since(start))

	return decision
}
