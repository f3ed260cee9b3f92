package governance

import (
	"strings"

	"govgate/internal/policy"
)

var promptPreamble = []string{
	"You are an AI assistant governed by a central policy kernel.",
	"Follow the safety precedence as provided by the policy.",
}

// modeGuidance maps known mode ids to their canned instruction line. Modes
// outside this map contribute nothing extra, so unknown mode ids are legal.
var modeGuidance = map[string]string{
	"HEAVY": "Be extremely cautious, especially for medical/legal/finance queries.",
	"FLASH": "Focus on the most recent facts and keep the answer short. Avoid long advice.",
	"FAST":  "Respond quickly and concisely. Do not perform web searches.",
}

// CompileSystemPrompt renders the system prompt for a mode: fixed preamble,
// mode guidance when mapped, then the safety precedence line when the policy
// carries one. Pure, deterministic and total.
func CompileSystemPrompt(modeID string, doc *policy.Document) string {
	lines := make([]string, 0, len(promptPreamble)+2)
	lines = append(lines, promptPreamble...)

	if guidance, ok := modeGuidance[modeID]; ok {
		lines = append(lines, guidance)
	}

	if len(doc.Safety.Precedence) > 0 {
		lines = append(lines, "Safety precedence: "+strings.Join(doc.Safety.Precedence, ", "))
	}

	return strings.Join(lines, "\n")
}
