// Package governance implements the policy decision engine: domain
// classification, mode escalation, model selection and system prompt
// compilation. Every function on the decision path is total; unmapped or
// empty policies degrade to documented sentinels instead of failing.
package governance

import "strings"

// DomainGeneral is returned when no domain keyword matches.
const DomainGeneral = "general"

// domainTable is the ordered classification table. First matching keyword set
// wins. Matching is case-insensitive substring containment, which also covers
// the Japanese keywords unchanged.
var domainTable = []struct {
	label    string
	keywords []string
}{
	{"finance", []string{"株", "株価", "株式", "finance", "投資"}},
	{"medical", []string{"医療", "病院", "health", "medical"}},
	{"legal", []string{"法律", "契約", "legal", "law"}},
	{"news", []string{"ニュース", "速報", "weather", "天気"}},
}

// ClassifyDomain maps raw text to a coarse domain label. Pure and total over
// any string, including the empty one.
func ClassifyDomain(text string) string {
	lowered := strings.ToLower(text)
	for _, entry := range domainTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.label
			}
		}
	}
	return DomainGeneral
}
