package onepager

// Severity ranks a Finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Finding is a structural/lexical quality observation about a document.
// It is unrelated to AI suggestions.
type Finding struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	FieldID  string   `json:"field_id,omitempty"`
}

// SnapshotBlock is a flattened block as seen by the analysis engine. Type
// carries the block's title, used as a category label.
type SnapshotBlock struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Snapshot is the flattened document the analysis engine runs over.
type Snapshot struct {
	Title  string          `json:"title"`
	Blocks []SnapshotBlock `json:"blocks"`
}

// Equal reports whether two snapshots are identical.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Title != other.Title || len(s.Blocks) != len(other.Blocks) {
		return false
	}
	for i := range s.Blocks {
		if s.Blocks[i] != other.Blocks[i] {
			return false
		}
	}
	return true
}
