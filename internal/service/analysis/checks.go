package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"onepager/internal/domain/models/onepager"
)

const (
	minTitleLength = 10
	maxTitleLength = 70

	// briefWordCount is the exclusive upper bound for a "very brief" document
	briefWordCount = 50

	// ctaWordCount is the word count above which a call to action is expected
	ctaWordCount = 20
)

var ctaPhrases = []string{"learn more", "contact us", "sign up", "buy now", "get started"}

// CheckTitle flags a missing, short, or long title. At most one finding fires.
func CheckTitle(snapshot onepager.Snapshot) []onepager.Finding {
	title := snapshot.Title
	length := utf8.RuneCountInString(title)

	switch {
	case strings.TrimSpace(title) == "":
		return []onepager.Finding{{
			ID:       FindingNoTitle,
			Severity: onepager.SeverityHigh,
			Message:  "Add a title to your one-pager.",
		}}
	case length < minTitleLength:
		return []onepager.Finding{{
			ID:       FindingTitleTooShort,
			Severity: onepager.SeverityMedium,
			Message:  "Your title is very short. Consider making it more descriptive.",
		}}
	case length > maxTitleLength:
		return []onepager.Finding{{
			ID:       FindingTitleTooLong,
			Severity: onepager.SeverityMedium,
			Message:  "Your title is quite long. Shorter titles are often more impactful.",
		}}
	}
	return nil
}

// CheckContent flags empty or brief documents and a missing call to action.
// The length finding and the call-to-action finding are independent.
func CheckContent(snapshot onepager.Snapshot) []onepager.Finding {
	var findings []onepager.Finding

	contents := make([]string, len(snapshot.Blocks))
	for i, block := range snapshot.Blocks {
		contents[i] = block.Content
	}
	wordCount := len(strings.Fields(strings.Join(contents, " ")))

	if wordCount == 0 {
		findings = append(findings, onepager.Finding{
			ID:       FindingNoContent,
			Severity: onepager.SeverityHigh,
			Message:  "Your document is empty. Add some content blocks.",
		})
	} else if wordCount < briefWordCount {
		findings = append(findings, onepager.Finding{
			ID:       FindingContentTooShort,
			Severity: onepager.SeverityLow,
			Message:  fmt.Sprintf("Your one-pager is very brief (%d words). Consider expanding on your ideas.", wordCount),
		})
	}

	if wordCount > ctaWordCount && !hasCallToAction(snapshot.Blocks) {
		findings = append(findings, onepager.Finding{
			ID:       FindingNoCTA,
			Severity: onepager.SeverityMedium,
			Message:  "Consider adding a call to action to guide your readers on what to do next.",
		})
	}

	return findings
}

func hasCallToAction(blocks []onepager.SnapshotBlock) bool {
	for _, block := range blocks {
		content := strings.ToLower(block.Content)
		for _, phrase := range ctaPhrases {
			if strings.Contains(content, phrase) {
				return true
			}
		}
	}
	return false
}

// CheckRisks expects a section labeled with "risk" and flags it when empty.
// Only the first matching section is inspected.
func CheckRisks(snapshot onepager.Snapshot) []onepager.Finding {
	for _, block := range snapshot.Blocks {
		if !strings.Contains(strings.ToLower(block.Type), "risk") {
			continue
		}
		if strings.TrimSpace(block.Content) == "" {
			return []onepager.Finding{{
				ID:       FindingEmptyRisksSection,
				Severity: onepager.SeverityLow,
				Message:  `The "Risks" section is empty. Outline potential risks and how you plan to mitigate them.`,
				FieldID:  block.ID,
			}}
		}
		return nil
	}

	return []onepager.Finding{{
		ID:       FindingNoRisksSection,
		Severity: onepager.SeverityMedium,
		Message:  `Consider adding a "Risks and Mitigations" section to address potential challenges and show foresight.`,
	}}
}
