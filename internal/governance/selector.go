package governance

import "govgate/internal/policy"

// DefaultModel is the sentinel model id when neither routing rules nor mode
// defaults resolve.
const DefaultModel = "openai:gpt4_mini"

// SelectModel maps a mode to a target model identifier. Resolution order:
// first routing rule whose when_mode_in contains the mode, then the mode's
// first default model, then DefaultModel. Pure, deterministic and total.
func SelectModel(modeID string, doc *policy.Document) string {
	for _, rule := range doc.Routing.Rules {
		for _, candidate := range rule.WhenModeIn {
			if candidate == modeID {
				return rule.PrimaryModel
			}
		}
	}

	if mode := doc.FindMode(modeID); mode != nil && len(mode.DefaultModels) > 0 {
		return mode.DefaultModels[0]
	}

	return DefaultModel
}
