package llm

import (
	"fmt"
	"strings"

	"onepager/internal/actions"
	"onepager/internal/domain/services"
)

// GeneratedSections are the sections a generated one-pager must contain, in order.
var GeneratedSections = []string{
	"Problem Statement",
	"Proposed Solution",
	"Target Audience",
	"Success Metrics",
	"Potential Risks",
	"Mitigation Plan",
	"Timeline",
}

const systemPrompt = "You are an expert Senior Product Manager helping a colleague write a concise product one-pager."

// buildGeneratePrompt asks for a Working Backwards draft returned as {"fields": [...]}.
func buildGeneratePrompt(title string) string {
	var b strings.Builder

	b.WriteString(`You are an expert Senior Product Manager, using the "Working Backwards" process to flesh out a new product idea.`)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "The title of the new product is: %q\n\n", title)
	b.WriteString("Your task is to first, internally, write a short, future-dated press release announcing this product to the world. ")
	b.WriteString("The press release should be customer-obsessed and clearly explain the user's problem and how the product solves it.\n\n")
	b.WriteString("Second, using ONLY the information from the press release you just wrote, generate a structured one-pager document.\n\n")
	b.WriteString(`You MUST return your response as a valid JSON object. The JSON object must have a single key, "fields", which is an array of objects. `)
	b.WriteString(`Each object in the array must have two keys: "label" and "value".`)
	b.WriteString("\n\nThe sections you MUST generate are:\n")
	for _, section := range GeneratedSections {
		fmt.Fprintf(&b, "- %s\n", section)
	}
	b.WriteString("\nExample of the required JSON format:\n")
	b.WriteString(`{
  "fields": [
    { "label": "Problem Statement", "value": "Your generated text..." },
    { "label": "Proposed Solution", "value": "Your generated text..." }
  ]
}`)
	b.WriteString("\n\nDo not include the press release in the final JSON output, only use it for your internal thinking to generate the fields.\n")

	return b.String()
}

// buildRefinePrompt dispatches on the action: summarize-type actions get a
// JSON bullet prompt, everything else a full-context rewrite prompt.
func buildRefinePrompt(req *services.RefineRequest) string {
	if actions.IsSummarize(req.SpecificAction) {
		return buildSummarizePrompt(req.TargetField.Value)
	}
	return buildRewritePrompt(req)
}

func buildSummarizePrompt(text string) string {
	var b strings.Builder

	b.WriteString("You are an expert Product Manager. Analyze the following text block and summarize its essential information.\n\n")
	b.WriteString("TEXT BLOCK TO ANALYZE:\n")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString(`Your task is to return ONLY a valid JSON object. The object must have a single key, "items", which is an array of strings. `)
	b.WriteString("Each string in the array should be one key bullet point.\n\n")
	b.WriteString("Example format:\n")
	b.WriteString(`{
  "items": [
    "This is the first key point.",
    "This is the second key point."
  ]
}`)
	b.WriteString("\n\nDo not include any other text or explanation outside of the JSON object.\n")

	return b.String()
}

func buildRewritePrompt(req *services.RefineRequest) string {
	sections := make([]string, len(req.DocumentContext.Fields))
	for i, f := range req.DocumentContext.Fields {
		sections[i] = fmt.Sprintf("## %s\n%s", f.Label, f.Value)
	}

	var b strings.Builder
	b.WriteString("You are an expert Product Manager providing feedback on a new product proposal.\n")
	b.WriteString("Here is the full context of the document:\n---\n")
	fmt.Fprintf(&b, "# Document Title: %s\n", req.DocumentContext.Title)
	b.WriteString(strings.Join(sections, "\n\n"))
	b.WriteString("\n---\n")
	b.WriteString("Now, focus ONLY on the following section:\n")
	fmt.Fprintf(&b, "## Section to Refine: %s\n", req.TargetField.Label)
	b.WriteString("### Current Content:\n")
	b.WriteString(req.TargetField.Value)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Your specific task is to: %q.\n", req.SpecificAction)
	b.WriteString("Provide ONLY the improved text for this section.\n")

	return b.String()
}
