package richtext

import "strings"

// Doc wraps children in a document root.
func Doc(children ...Node) Node {
	return Node{Type: TypeDoc, Content: children}
}

// Text creates a text leaf.
func Text(s string) Node {
	return Node{Type: TypeText, Text: s}
}

// Paragraph creates a paragraph. An empty string yields an empty paragraph
// since the editor schema rejects empty text leaves.
func Paragraph(s string) Node {
	if s == "" {
		return Node{Type: TypeParagraph}
	}
	return Node{Type: TypeParagraph, Content: []Node{Text(s)}}
}

// FromPlainText wraps a plain string in a single-paragraph document.
func FromPlainText(s string) Node {
	return Doc(Paragraph(s))
}

// BulletList builds a document holding one bullet list with one item per
// entry. Blank entries are skipped.
func BulletList(items []string) Node {
	list := Node{Type: TypeBulletList}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		list.Content = append(list.Content, Node{
			Type:    TypeListItem,
			Content: []Node{Paragraph(item)},
		})
	}
	return Doc(list)
}
