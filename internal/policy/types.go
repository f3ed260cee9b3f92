package policy

import "fmt"

// Document is the immutable in-memory form of a loaded policy file.
//
// A Document is never mutated after load; hot reload replaces the whole value
// through Store. Rule slices keep document order because evaluation is
// first-match-wins throughout.
type Document struct {
	Version         string           `yaml:"version" json:"version"`
	Modes           []Mode           `yaml:"modes" json:"modes"`
	EscalationRules []EscalationRule `yaml:"escalation_rules" json:"escalation_rules"`
	Routing         Routing          `yaml:"routing" json:"routing"`
	Safety          Safety           `yaml:"safety" json:"safety"`
}

// Mode is an operating profile controlling model choice and prompt strictness.
type Mode struct {
	ID            string   `yaml:"id" json:"id"`
	Triggers      Triggers `yaml:"triggers" json:"triggers"`
	DefaultModels []string `yaml:"default_models" json:"default_models"`
}

// Triggers describes when a mode is selected.
type Triggers struct {
	DomainsAny  []string `yaml:"domains_any" json:"domains_any"`
	KeywordsAny []string `yaml:"keywords_any" json:"keywords_any"`
	Fallback    bool     `yaml:"fallback" json:"fallback"`
}

// EscalationRule forces a minimum mode when its condition holds. Only the rule
// named "pii_always_heavy" is interpreted today; unknown names are kept but
// ignored so older gateways accept newer policy files.
type EscalationRule struct {
	Name              string `yaml:"name" json:"name"`
	EscalateToMinMode string `yaml:"escalate_to_min_mode" json:"escalate_to_min_mode"`
}

// Routing holds the ordered model routing rules.
type Routing struct {
	Rules []RoutingRule `yaml:"rules" json:"rules"`
}

// RoutingRule maps a set of modes to a primary model. First match in document
// order wins.
type RoutingRule struct {
	WhenModeIn   []string `yaml:"when_mode_in" json:"when_mode_in"`
	PrimaryModel string   `yaml:"primary_model" json:"primary_model"`
}

// Safety carries the safety precedence list surfaced in compiled prompts.
type Safety struct {
	Precedence []string `yaml:"precedence" json:"precedence"`
}

// FindMode returns the mode with the given id, or nil.
func (d *Document) FindMode(id string) *Mode {
	for i := range d.Modes {
		if d.Modes[i].ID == id {
			return &d.Modes[i]
		}
	}
	return nil
}

// FallbackMode returns the first mode flagged as fallback in document order,
// or nil. When several modes are flagged the first one wins.
func (d *Document) FallbackMode() *Mode {
	for i := range d.Modes {
		if d.Modes[i].Triggers.Fallback {
			return &d.Modes[i]
		}
	}
	return nil
}

// Validate checks structural invariants that would make rule evaluation
// ambiguous. An empty document is legal; the decision path degrades to its
// documented sentinels.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Modes))
	for _, mode := range d.Modes {
		if mode.ID == "" {
			return fmt.Errorf("mode with empty id")
		}
		if _, dup := seen[mode.ID]; dup {
			return fmt.Errorf("duplicate mode id %q", mode.ID)
		}
		seen[mode.ID] = struct{}{}
	}

	for _, rule := range d.Routing.Rules {
		if rule.PrimaryModel == "" {
			return fmt.Errorf("routing rule for modes %v has no primary_model", rule.WhenModeIn)
		}
	}

	return nil
}
