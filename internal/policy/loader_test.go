package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePolicy = `
version: "0.3"
modes:
  - id: FAST
    triggers:
      fallback: true
    default_models: ["openai:gpt4_mini"]
  - id: HEAVY
    triggers:
      domains_any: [legal, medical]
      keywords_any: ["法律"]
    default_models: ["openai:gpt4o"]
escalation_rules:
  - name: pii_always_heavy
    escalate_to_min_mode: HEAVY
routing:
  rules:
    - when_mode_in: [HEAVY]
      primary_model: "openai:gpt4o"
safety:
  precedence: [law, privacy]
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(samplePolicy))
	if err != nil {
		t.Fatalf("parse sample policy: %v", err)
	}

	if doc.Version != "0.3" {
		t.Errorf("version = %q, want 0.3", doc.Version)
	}
	if len(doc.Modes) != 2 {
		t.Fatalf("modes = %d, want 2", len(doc.Modes))
	}
	if !doc.Modes[0].Triggers.Fallback {
		t.Error("FAST should be flagged fallback")
	}
	if got := doc.Modes[1].Triggers.DomainsAny; len(got) != 2 || got[0] != "legal" {
		t.Errorf("HEAVY domains_any = %v", got)
	}
	if len(doc.EscalationRules) != 1 || doc.EscalationRules[0].Name != "pii_always_heavy" {
		t.Errorf("escalation rules = %v", doc.EscalationRules)
	}
	if len(doc.Routing.Rules) != 1 || doc.Routing.Rules[0].PrimaryModel != "openai:gpt4o" {
		t.Errorf("routing rules = %v", doc.Routing.Rules)
	}
	if len(doc.Safety.Precedence) != 2 {
		t.Errorf("safety precedence = %v", doc.Safety.Precedence)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("modes: [broken")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestParse_DuplicateModeID(t *testing.T) {
	data := `
modes:
  - id: FAST
  - id: FAST
`
	_, err := Parse([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "duplicate mode id") {
		t.Fatalf("expected duplicate mode id error, got %v", err)
	}
}

func TestParse_EmptyDocumentIsLegal(t *testing.T) {
	doc, err := Parse([]byte("version: \"0.0\"\n"))
	if err != nil {
		t.Fatalf("empty policy should be legal: %v", err)
	}
	if doc.FallbackMode() != nil {
		t.Error("empty policy has no fallback mode")
	}
	if doc.FindMode("FAST") != nil {
		t.Error("empty policy has no modes")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	if err := os.WriteFile(path, []byte(samplePolicy), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Version != "0.3" {
		t.Errorf("version = %q", doc.Version)
	}
}

func TestFallbackMode_FirstFlaggedWins(t *testing.T) {
	data := `
modes:
  - id: A
    triggers: {fallback: true}
  - id: B
    triggers: {fallback: true}
`
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.FallbackMode().ID; got != "A" {
		t.Errorf("fallback mode = %s, want A (first in document order)", got)
	}
}
