// Package pii detects personally identifiable information in request text.
//
// Detection is polymorphic over an ordered chain of strategies. The primary
// strategy is an NLP-backed analyzer service; the fallback is a small set of
// regular expressions. Both produce the same Result shape, and a failing
// primary is recovered per call, never surfaced to callers.
package pii

import (
	"context"

	"govgate/internal/logging"
)

// Result is the public detection contract, identical for every strategy.
type Result struct {
	Detected   bool     `json:"detected"`
	Categories []string `json:"categories"`
}

// Detector is one detection strategy.
type Detector interface {
	Name() string
	Detect(ctx context.Context, text string) (Result, error)
}

// Sensor tries detectors in order until one returns without failure.
type Sensor struct {
	chain  []Detector
	logger logging.Logger
}

// NewSensor builds a sensor from an ordered detector chain. Detectors earlier
// in the chain are preferred.
func NewSensor(logger logging.Logger, chain ...Detector) *Sensor {
	return &Sensor{chain: chain, logger: logging.OrNop(logger)}
}

// Detect scans text for PII. It never fails: if every strategy errors the
// result is simply "nothing detected".
func (s *Sensor) Detect(ctx context.Context, text string) Result {
	for _, d := range s.chain {
		result, err := d.Detect(ctx, text)
		if err != nil {
			s.logger.Warn("pii detector %s failed, trying next strategy: %v", d.Name(), err)
			continue
		}
		return result
	}

	s.logger.Warn("all pii detectors failed, treating message as clean")
	return Result{}
}
