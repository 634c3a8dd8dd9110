// Package impact classifies commits and aggregates a repository's recent
// commit window into a domain.RepositoryImpact.
package impact

import (
	"strings"

	"github.com/footprint-tools/storyteller/internal/domain"
)

type rule struct {
	keywords []string
	label    domain.Impact
}

// rules are evaluated in order; the first rule with a keyword contained in
// the lowercased message wins.
var rules = []rule{
	{[]string{"fix", "bug", "patch"}, domain.ImpactBugFix},
	{[]string{"feat", "add", "new"}, domain.ImpactFeature},
	{[]string{"refactor", "clean", "improve"}, domain.ImpactRefactor},
	{[]string{"perf", "optimize", "speed"}, domain.ImpactPerformance},
	{[]string{"doc", "readme"}, domain.ImpactDocumentation},
	{[]string{"test", "spec"}, domain.ImpactTesting},
}

// Classify returns the semantic category of a commit message. It never fails;
// messages matching no rule are ImpactUpdate.
func Classify(message string) domain.Impact {
	m := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(m, kw) {
				return r.label
			}
		}
	}
	return domain.ImpactUpdate
}
