package services

import "onepager/internal/domain/models/onepager"

// ContentAnalyzer produces quality findings for a flattened document.
// Implementations must be pure: identical snapshots yield identical,
// identically ordered findings.
type ContentAnalyzer interface {
	Analyze(snapshot onepager.Snapshot) []onepager.Finding
}
