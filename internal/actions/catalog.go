// Package actions holds the catalog of AI refine actions offered per block.
package actions

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"onepager/internal/domain/models/onepager"
)

//go:embed actions.yaml
var catalogYAML []byte

// summarizeKeyword marks actions whose result is a bullet list
const summarizeKeyword = "summarize"

// Catalog lists the refine actions per block. It is immutable after load.
type Catalog struct {
	followUp string
	title    []string
	defaults []string
	sections []SectionActions
	samples  map[string]string
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action catalog: %w", err)
	}
	if strings.TrimSpace(file.FollowUp) == "" {
		return nil, fmt.Errorf("action catalog: follow_up is required")
	}

	for i := range file.Sections {
		file.Sections[i].Match = strings.ToLower(file.Sections[i].Match)
	}

	return &Catalog{
		followUp: file.FollowUp,
		title:    file.Title,
		defaults: file.Defaults,
		sections: file.Sections,
		samples:  file.Samples,
	}, nil
}

// ActionsFor returns the actions offered for a block: the first section
// whose match is contained in the lowercased label, followed by the defaults.
func (c *Catalog) ActionsFor(label string) []string {
	lower := strings.ToLower(label)

	var out []string
	for _, section := range c.sections {
		if strings.Contains(lower, section.Match) {
			out = append(out, section.Actions...)
			break
		}
	}
	return append(out, c.defaults...)
}

// ActionsForBlock returns the actions for a block, using the title list for
// the pinned title block.
func (c *Catalog) ActionsForBlock(b onepager.Block) []string {
	if b.IsTitle() {
		out := make([]string, len(c.title))
		copy(out, c.title)
		return out
	}
	return c.ActionsFor(b.Title)
}

// FollowUpAction is the structural action offered after accepting long content.
func (c *Catalog) FollowUpAction() string {
	return c.followUp
}

// Sample returns the canned response for an action, if one exists.
func (c *Catalog) Sample(action string) (string, bool) {
	s, ok := c.samples[action]
	return s, ok
}

// IsSummarize reports whether an action expects a list of bullet strings.
func IsSummarize(action string) bool {
	return strings.Contains(strings.ToLower(action), summarizeKeyword)
}
