// Package analysis implements the content analysis engine: a fixed battery
// of structural and lexical checks over a flattened one-pager.
package analysis

import (
	"onepager/internal/domain/models/onepager"
	"onepager/internal/domain/services"
)

// Check is a pure function from a snapshot to zero or more findings.
type Check func(snapshot onepager.Snapshot) []onepager.Finding

// Finding ids
const (
	FindingNoTitle           = "no-title"
	FindingTitleTooShort     = "title-too-short"
	FindingTitleTooLong      = "title-too-long"
	FindingNoContent         = "no-content"
	FindingContentTooShort   = "content-too-short"
	FindingNoCTA             = "no-cta"
	FindingNoRisksSection    = "no-risks-section"
	FindingEmptyRisksSection = "empty-risks-section"
)

// defaultChecks run in this order; findings are concatenated in the same order.
var defaultChecks = []Check{
	CheckTitle,
	CheckContent,
	CheckRisks,
}

type engine struct {
	checks []Check
}

// NewEngine creates the analyzer with the default checks.
func NewEngine() services.ContentAnalyzer {
	return &engine{checks: defaultChecks}
}

// NewEngineWithChecks creates an analyzer running the given checks in order.
func NewEngineWithChecks(checks ...Check) services.ContentAnalyzer {
	return &engine{checks: checks}
}

// Analyze runs every check from scratch. Checks are cheap and documents are
// short, so nothing is memoized here.
func (e *engine) Analyze(snapshot onepager.Snapshot) []onepager.Finding {
	findings := make([]onepager.Finding, 0)
	for _, check := range e.checks {
		findings = append(findings, check(snapshot)...)
	}
	return findings
}
