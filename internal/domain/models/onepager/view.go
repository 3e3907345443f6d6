package onepager

import "time"

// View is what the editor renders: stored blocks with suggestion overlays
// applied, per-block loading state, follow-up offers and findings.
type View struct {
	ID        *string           `json:"id"`
	Title     string            `json:"title"`
	Blocks    []BlockView       `json:"blocks"`
	Loading   []string          `json:"loading"`
	Findings  []Finding         `json:"findings"`
	Errors    map[string]string `json:"errors,omitempty"` // block id -> last AI failure
	Saving    bool              `json:"saving"`
	UpdatedAt time.Time         `json:"updated_at"`
}
