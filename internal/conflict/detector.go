// Package conflict flags suspicious rule combinations in a loaded policy
// document. Findings are advisory: duplicate names are legal at evaluation
// time but usually indicate a preset and a local check colliding.
package conflict

import (
	"fmt"

	"github.com/rufio-dev/rufio/internal/domain"
)

// Finding describes one suspicious rule combination.
type Finding struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Detect scans rules in document order and reports duplicate names and
// fully shadowed rules. Rule order is preserved in the findings.
func Detect(rules []domain.Rule) []Finding {
	var findings []Finding

	byName := make(map[string]int)
	for _, rule := range rules {
		byName[rule.Name]++
	}

	seen := make(map[string]bool)
	for _, rule := range rules {
		if byName[rule.Name] > 1 && !seen[rule.Name] {
			seen[rule.Name] = true
			findings = append(findings, Finding{
				Name:    rule.Name,
				Count:   byName[rule.Name],
				Message: fmt.Sprintf("rule name %q appears %d times; all occurrences are evaluated", rule.Name, byName[rule.Name]),
			})
		}
	}

	findings = append(findings, detectShadowed(rules)...)
	return findings
}

// detectShadowed reports rules identical to an earlier rule in trigger and
// obligation. Evaluating the duplicate can never produce a different
// verdict than the first occurrence.
func detectShadowed(rules []domain.Rule) []Finding {
	var findings []Finding

	type shape struct {
		glob string
		gate string
		kind domain.ObligationKind
		body string
	}

	seen := make(map[shape]string)
	for _, rule := range rules {
		s := shape{
			glob: rule.Trigger.PathsChanged,
			gate: rule.Trigger.PathExists,
			kind: rule.Obligation.Kind(),
			body: obligationKey(rule.Obligation),
		}

		if first, ok := seen[s]; ok {
			findings = append(findings, Finding{
				Name:    rule.Name,
				Count:   1,
				Message: fmt.Sprintf("rule %q duplicates rule %q and can never change the verdict", rule.Name, first),
			})
			continue
		}
		seen[s] = rule.Name
	}

	return findings
}

func obligationKey(o domain.Obligation) string {
	switch o.Kind() {
	case domain.ObligationCommands:
		return fmt.Sprintf("%q", o.Commands())
	case domain.ObligationChanged:
		return fmt.Sprintf("%q", o.Paths())
	default:
		return ""
	}
}
