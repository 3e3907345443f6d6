package richtext

import (
	"fmt"
	"strings"
)

// ToMarkdown renders a tree as Markdown for export.
func ToMarkdown(n Node) string {
	var builder strings.Builder
	if n.Type == TypeDoc {
		for _, child := range n.Content {
			convertNode(&builder, child)
		}
	} else {
		convertNode(&builder, n)
	}
	return strings.TrimSpace(builder.String())
}

func convertNode(builder *strings.Builder, node Node) {
	switch node.Type {
	case TypeHeading:
		convertHeading(builder, node)
	case TypeParagraph:
		processInlineContent(builder, node.Content)
		builder.WriteString("\n\n")
	case TypeBulletList:
		for _, item := range node.Content {
			builder.WriteString("- ")
			convertListItem(builder, item)
		}
		builder.WriteString("\n")
	case TypeOrderedList:
		for i, item := range node.Content {
			builder.WriteString(fmt.Sprintf("%d. ", i+1))
			convertListItem(builder, item)
		}
		builder.WriteString("\n")
	case TypeListItem:
		convertListItem(builder, node)
	case TypeCodeBlock:
		convertCodeBlock(builder, node)
	case TypeBlockquote:
		for _, child := range node.Content {
			builder.WriteString("> ")
			convertNode(builder, child)
		}
	case TypeHorizontalRule:
		builder.WriteString("---\n\n")
	case TypeHardBreak:
		builder.WriteString("  \n")
	case TypeText:
		builder.WriteString(applyMarks(node.Text, node.Marks))
	default:
		// Unknown containers still contribute their children
		for _, child := range node.Content {
			convertNode(builder, child)
		}
	}
}

func convertHeading(builder *strings.Builder, node Node) {
	level := headingLevel(node.Attrs)
	builder.WriteString(strings.Repeat("#", level))
	builder.WriteString(" ")
	processInlineContent(builder, node.Content)
	builder.WriteString("\n\n")
}

// headingLevel accepts float64 (decoded JSON) or int (built in Go).
func headingLevel(attrs map[string]interface{}) int {
	switch v := attrs["level"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}

func convertListItem(builder *strings.Builder, node Node) {
	for _, child := range node.Content {
		if child.Type == TypeParagraph {
			processInlineContent(builder, child.Content)
			builder.WriteString("\n")
		} else {
			convertNode(builder, child)
		}
	}
}

func convertCodeBlock(builder *strings.Builder, node Node) {
	language, _ := node.Attrs["language"].(string)

	builder.WriteString("```")
	builder.WriteString(language)
	builder.WriteString("\n")
	for _, child := range node.Content {
		builder.WriteString(child.Text)
	}
	builder.WriteString("\n```\n\n")
}

func processInlineContent(builder *strings.Builder, content []Node) {
	for _, node := range content {
		switch node.Type {
		case TypeText:
			builder.WriteString(applyMarks(node.Text, node.Marks))
		case TypeHardBreak:
			builder.WriteString("  \n")
		}
	}
}

func applyMarks(text string, marks []Mark) string {
	var wrappers []string
	for _, mark := range marks {
		switch mark.Type {
		case "bold":
			wrappers = append([]string{"**"}, wrappers...)
		case "italic":
			wrappers = append([]string{"*"}, wrappers...)
		case "code":
			wrappers = append([]string{"`"}, wrappers...)
		case "strike":
			wrappers = append([]string{"~~"}, wrappers...)
		}
	}

	result := text
	for _, wrapper := range wrappers {
		result = wrapper + result + wrapper
	}
	return result
}
