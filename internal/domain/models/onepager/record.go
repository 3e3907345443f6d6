package onepager

import (
	"time"

	"onepager/internal/richtext"
)

// Record is the persisted shape of a document: the title plus the ordered
// non-title blocks. Writes overwrite Title and Fields wholesale.
type Record struct {
	ID        string        `json:"id" db:"id"`
	UserID    string        `json:"user_id" db:"user_id"`
	Title     string        `json:"title" db:"title"`
	Fields    []FieldRecord `json:"fields" db:"fields"` // JSONB
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// FieldRecord is one persisted block.
type FieldRecord struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Content richtext.Node `json:"content"`
}
