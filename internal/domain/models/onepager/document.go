package onepager

import (
	"time"

	"github.com/google/uuid"

	"onepager/internal/richtext"
)

// TitleBlockID is the fixed id of the pinned title block.
const TitleBlockID = "title"

// Field names a replaceable field of a block.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
)

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	return f == FieldTitle || f == FieldContent
}

// Block is a titled, reorderable unit of document content.
// ID is immutable once created.
type Block struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Content richtext.Node `json:"content"`
}

// IsTitle reports whether b is the pinned title block.
func (b Block) IsTitle() bool {
	return b.ID == TitleBlockID
}

// Document is an ordered block sequence whose first element is always the
// pinned title block. ID is nil until the document has been persisted.
type Document struct {
	ID        *string   `json:"id"`
	Blocks    []Block   `json:"blocks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Title returns the document title held by the title block.
func (d *Document) Title() string {
	if len(d.Blocks) == 0 {
		return ""
	}
	return d.Blocks[0].Title
}

// ContentBlocks returns the non-title blocks in order.
func (d *Document) ContentBlocks() []Block {
	if len(d.Blocks) == 0 {
		return nil
	}
	return d.Blocks[1:]
}

// IndexOf returns the position of the block with the given id, or -1.
func (d *Document) IndexOf(id string) int {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// Block returns the block with the given id.
func (d *Document) Block(id string) (Block, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.Blocks[i], true
	}
	return Block{}, false
}

// NewBlock creates an empty block with a fresh id.
func NewBlock() Block {
	return Block{
		ID:      uuid.NewString(),
		Content: richtext.Normalize(richtext.Node{}),
	}
}

// NewSection creates a block from a label and plain text.
func NewSection(title, text string) Block {
	return Block{
		ID:      uuid.NewString(),
		Title:   title,
		Content: richtext.FromPlainText(text),
	}
}
