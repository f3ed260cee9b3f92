package governance

import (
	"testing"

	"govgate/internal/pii"
	"govgate/internal/policy"
)

func testPolicy() *policy.Document {
	return &policy.Document{
		Version: "test",
		Modes: []policy.Mode{
			{ID: "FAST", Triggers: policy.Triggers{Fallback: true}, DefaultModels: []string{"openai:gpt4_mini"}},
			{ID: "HEAVY", Triggers: policy.Triggers{
				DomainsAny:  []string{"medical"},
				KeywordsAny: []string{"法律"},
			}, DefaultModels: []string{"openai:gpt4o"}},
		},
		EscalationRules: []policy.EscalationRule{
			{Name: "pii_always_heavy", EscalateToMinMode: "HEAVY"},
		},
	}
}

func TestDecideMode_KeywordBeatsFallback(t *testing.T) {
	message := "契約について教えて、法律的に問題ない？"
	doc := testPolicy()

	domain := ClassifyDomain(message)
	if domain != "legal" {
		t.Fatalf("domain = %q, want legal", domain)
	}

	got := DecideMode(message, doc, domain, pii.Result{})
	if got != "HEAVY" {
		t.Errorf("mode = %q, want HEAVY (keyword match beats fallback)", got)
	}
}

func TestDecideMode_PIIEscalationWinsOverTriggers(t *testing.T) {
	// A FAST-triggering keyword is also present; PII escalation still wins.
	doc := testPolicy()
	doc.Modes[0].Triggers.KeywordsAny = []string{"電話"}
	message := "090-1234-5678に電話してください"

	got := DecideMode(message, doc, ClassifyDomain(message), pii.Result{Detected: true, Categories: []string{"phone"}})
	if got != "HEAVY" {
		t.Errorf("mode = %q, want HEAVY (pii escalation has top precedence)", got)
	}
}

func TestDecideMode_PIIEscalationDefaultsToHeavy(t *testing.T) {
	doc := testPolicy()
	doc.EscalationRules = []policy.EscalationRule{{Name: "pii_always_heavy"}}

	got := DecideMode("some text", doc, "general", pii.Result{Detected: true})
	if got != "HEAVY" {
		t.Errorf("mode = %q, want HEAVY default when escalate_to_min_mode is absent", got)
	}
}

func TestDecideMode_UnknownEscalationRulesIgnored(t *testing.T) {
	doc := testPolicy()
	doc.EscalationRules = []policy.EscalationRule{
		{Name: "some_future_rule", EscalateToMinMode: "ULTRA"},
	}

	got := DecideMode("hello", doc, "general", pii.Result{Detected: true})
	if got != "FAST" {
		t.Errorf("mode = %q, want FAST (unknown rules ignored, fallback applies)", got)
	}
}

func TestDecideMode_DomainTrigger(t *testing.T) {
	doc := testPolicy()
	got := DecideMode("病院に行きたい", doc, "medical", pii.Result{})
	if got != "HEAVY" {
		t.Errorf("mode = %q, want HEAVY via domains_any", got)
	}
}

func TestDecideMode_FallbackModeWhenNothingMatches(t *testing.T) {
	doc := testPolicy()
	got := DecideMode("こんにちは", doc, "general", pii.Result{})
	if got != "FAST" {
		t.Errorf("mode = %q, want FAST via fallback flag", got)
	}
}

func TestDecideMode_SentinelOnEmptyPolicy(t *testing.T) {
	got := DecideMode("anything", &policy.Document{}, "general", pii.Result{})
	if got != ModeFast {
		t.Errorf("mode = %q, want %q sentinel for empty policy", got, ModeFast)
	}
}

func TestDecideMode_NoFallbackFlagResolvesToSentinel(t *testing.T) {
	doc := &policy.Document{
		Modes: []policy.Mode{
			{ID: "HEAVY", Triggers: policy.Triggers{KeywordsAny: []string{"never-matches"}}},
		},
	}
	got := DecideMode("plain message", doc, "general", pii.Result{})
	if got != "FAST" {
		t.Errorf("mode = %q, want FAST sentinel", got)
	}
}

func TestDecideMode_FirstFallbackFlaggedWins(t *testing.T) {
	doc := &policy.Document{
		Modes: []policy.Mode{
			{ID: "A", Triggers: policy.Triggers{Fallback: true}},
			{ID: "B", Triggers: policy.Triggers{Fallback: true}},
		},
	}
	got := DecideMode("plain message", doc, "general", pii.Result{})
	if got != "A" {
		t.Errorf("mode = %q, want A (first fallback flag in document order)", got)
	}
}

func TestDecideMode_KeywordMatchIsCaseSensitive(t *testing.T) {
	doc := &policy.Document{
		Modes: []policy.Mode{
			{ID: "HEAVY", Triggers: policy.Triggers{KeywordsAny: []string{"Legal"}}},
		},
	}
	if got := DecideMode("legal question", doc, "general", pii.Result{}); got != "FAST" {
		t.Errorf("mode = %q, keyword matching must be exact as authored", got)
	}
	if got := DecideMode("Legal question", doc, "general", pii.Result{}); got != "HEAVY" {
		t.Errorf("mode = %q, want HEAVY on exact keyword", got)
	}
}
