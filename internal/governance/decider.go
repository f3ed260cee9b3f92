package governance

import (
	"strings"

	"govgate/internal/pii"
	"govgate/internal/policy"
)

const (
	// ModeFast is the sentinel mode used when nothing in the policy resolves.
	ModeFast = "FAST"

	// escalationRulePII is the only escalation rule name interpreted today.
	escalationRulePII = "pii_always_heavy"

	// defaultEscalationMode applies when the rule omits its target mode.
	defaultEscalationMode = "HEAVY"
)

// DecideMode selects an operating mode for a message. Precedence, first
// resolution wins:
//
//  1. PII detected and a pii_always_heavy rule exists: its target mode.
//  2. First mode whose domains_any contains the domain label, or whose
//     keywords_any has a substring match in the message (case-sensitive,
//     exact as authored).
//  3. First mode flagged fallback in document order.
//  4. ModeFast.
//
// Deterministic and total for any document, including an empty one.
func DecideMode(message string, doc *policy.Document, domain string, piiResult pii.Result) string {
	if piiResult.Detected {
		for _, rule := range doc.EscalationRules {
			if rule.Name != escalationRulePII {
				continue
			}
			if rule.EscalateToMinMode != "" {
				return rule.EscalateToMinMode
			}
			return defaultEscalationMode
		}
	}

	for i := range doc.Modes {
		mode := &doc.Modes[i]
		for _, d := range mode.Triggers.DomainsAny {
			if d == domain {
				return mode.ID
			}
		}
		for _, keyword := range mode.Triggers.KeywordsAny {
			if keyword != "" && strings.Contains(message, keyword) {
				return mode.ID
			}
		}
	}

	if fallback := doc.FallbackMode(); fallback != nil {
		return fallback.ID
	}

	return ModeFast
}
