package actions

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SectionActions are the actions offered for sections whose title contains Match
type SectionActions struct {
	Match   string   `json:"match"`
	Actions []string `json:"actions"`
}

// catalogFile mirrors actions.yaml
type catalogFile struct {
	FollowUp string            `yaml:"follow_up"`
	Title    []string          `yaml:"title"`
	Defaults []string          `yaml:"defaults"`
	Sections []SectionActions  `yaml:"-"` // Ordered, populated by UnmarshalYAML
	Samples  map[string]string `yaml:"samples"`
}

// UnmarshalYAML keeps section order from the YAML file, since the first
// matching section wins.
func (c *catalogFile) UnmarshalYAML(node *yaml.Node) error {
	type plain struct {
		FollowUp string              `yaml:"follow_up"`
		Title    []string            `yaml:"title"`
		Defaults []string            `yaml:"defaults"`
		Sections map[string][]string `yaml:"sections"`
		Samples  map[string]string   `yaml:"samples"`
	}
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	c.FollowUp = p.FollowUp
	c.Title = p.Title
	c.Defaults = p.Defaults
	c.Samples = p.Samples

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "sections" {
			continue
		}
		sectionsNode := node.Content[i+1]
		if sectionsNode.Kind != yaml.MappingNode {
			return fmt.Errorf("sections must be a mapping, got kind %d", sectionsNode.Kind)
		}
		// Content alternates key, value, key, value...
		for j := 0; j+1 < len(sectionsNode.Content); j += 2 {
			match := sectionsNode.Content[j].Value
			c.Sections = append(c.Sections, SectionActions{
				Match:   match,
				Actions: p.Sections[match],
			})
		}
		break
	}

	return nil
}
