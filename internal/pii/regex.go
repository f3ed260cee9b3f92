package pii

import (
	"context"
	"regexp"
)

// regexPatterns maps fallback category names to their patterns. The category
// labels are intentionally lowercase short names, distinct from the analyzer
// entity vocabulary, so logs show which strategy flagged a request.
var regexPatterns = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{"email", regexp.MustCompile(`[\w.-]+@[\w.-]+\.[a-zA-Z]{2,}`)},
	{"phone", regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?(?:\(?\d{2,4}\)?[-.\s]?)?\d{3,4}[-.\s]?\d{3,4}`)},
}

type regexDetector struct{}

// NewRegexDetector returns the regular-expression fallback strategy. It is
// total: it never returns an error.
func NewRegexDetector() Detector {
	return regexDetector{}
}

func (regexDetector) Name() string { return "regex" }

func (regexDetector) Detect(_ context.Context, text string) (Result, error) {
	var categories []string
	for _, p := range regexPatterns {
		if p.pattern.MatchString(text) {
			categories = append(categories, p.category)
		}
	}
	return Result{Detected: len(categories) > 0, Categories: categories}, nil
}
