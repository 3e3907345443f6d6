package onepager

import (
	"strings"

	models "onepager/internal/domain/models/onepager"
	"onepager/internal/richtext"
)

// renderMarkdown exports the stored document: the title as a level-one
// heading and each section as a level-two heading followed by its body.
func renderMarkdown(doc models.Document) string {
	var b strings.Builder

	if title := strings.TrimSpace(doc.Title()); title != "" {
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}

	for _, block := range doc.ContentBlocks() {
		if heading := strings.TrimSpace(block.Title); heading != "" {
			b.WriteString("## ")
			b.WriteString(heading)
			b.WriteString("\n\n")
		}
		if body := richtext.ToMarkdown(block.Content); body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(b.String()) + "\n"
}
