// Package richtext models block bodies as TipTap-compatible node trees.
//
// Trees are treated as immutable values: editors replace a block's tree
// wholesale, and callers compare snapshots with Equal instead of tracking
// in-place mutations.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Node type constants (TipTap schema names)
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeText           = "text"
	TypeHeading        = "heading"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeCodeBlock      = "codeBlock"
	TypeBlockquote     = "blockquote"
	TypeHorizontalRule = "horizontalRule"
	TypeHardBreak      = "hardBreak"
)

// Mark is an inline formatting mark on a text leaf (bold, italic, ...).
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Node is either a container (Type + ordered Content) or a text leaf
// (Type == "text" + literal Text).
type Node struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Content []Node                 `json:"content,omitempty"`
}

// IsText reports whether n is a text leaf.
func (n Node) IsText() bool {
	return n.Type == TypeText
}

// IsZero reports whether n was never set (e.g. decoded from JSON null).
func (n Node) IsZero() bool {
	return n.Type == "" && n.Text == "" && len(n.Content) == 0
}

// Flatten extracts the plain text of a tree. A text leaf contributes its
// literal string; a container contributes the concatenation of its
// flattened children, in order.
func Flatten(n Node) string {
	var b strings.Builder
	flattenInto(&b, n)
	return b.String()
}

func flattenInto(b *strings.Builder, n Node) {
	if n.IsText() {
		b.WriteString(n.Text)
		return
	}
	for _, child := range n.Content {
		flattenInto(b, child)
	}
}

// Equal reports structural equality. Nil and empty slices/maps are equal.
func Equal(a, b Node) bool {
	if a.Type != b.Type || a.Text != b.Text {
		return false
	}
	if !attrsEqual(a.Attrs, b.Attrs) {
		return false
	}
	if len(a.Marks) != len(b.Marks) {
		return false
	}
	for i := range a.Marks {
		if a.Marks[i].Type != b.Marks[i].Type || !attrsEqual(a.Marks[i].Attrs, b.Marks[i].Attrs) {
			return false
		}
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !Equal(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b map[string]interface{}) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Clone returns a deep copy of n so callers can hand out trees without
// sharing backing arrays.
func (n Node) Clone() Node {
	out := Node{Type: n.Type, Text: n.Text}
	out.Attrs = cloneAttrs(n.Attrs)
	if n.Marks != nil {
		out.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			out.Marks[i] = Mark{Type: m.Type, Attrs: cloneAttrs(m.Attrs)}
		}
	}
	if n.Content != nil {
		out.Content = make([]Node, len(n.Content))
		for i, child := range n.Content {
			out.Content[i] = child.Clone()
		}
	}
	return out
}

func cloneAttrs(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// UnmarshalJSON decodes a node tree. Legacy documents stored a block body
// as a plain string; those are normalized to a single-paragraph tree.
func (n *Node) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = Node{}
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode legacy content: %w", err)
		}
		*n = FromPlainText(s)
		return nil
	}

	// Alias drops the method set to avoid recursing into UnmarshalJSON
	type nodeAlias Node
	var alias nodeAlias
	if err := json.Unmarshal(trimmed, &alias); err != nil {
		return err
	}
	*n = Node(alias)
	return nil
}

// Normalize returns an empty document for a zero node, otherwise n.
func Normalize(n Node) Node {
	if n.IsZero() {
		return Doc(Node{Type: TypeParagraph})
	}
	return n
}
