// Package persona defines the persona card: who the agent presents as on
// each platform. The card is loaded from config and exposed read-only over
// the API and the MCP resource.
package persona

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Card describes the persona.
type Card struct {
	Name    string            `yaml:"name" json:"name"`
	Species string            `yaml:"species" json:"species,omitempty"`
	Bio     string            `yaml:"bio" json:"bio,omitempty"`
	Traits  []string          `yaml:"traits" json:"traits,omitempty"`
	Voice   []string          `yaml:"voice" json:"voice,omitempty"`
	Handles map[string]string `yaml:"handles" json:"handles,omitempty"`
}

// Validate checks the card is usable.
func (c *Card) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&c.Species, validation.Length(0, 64)),
		validation.Field(&c.Bio, validation.Length(0, 2048)),
		validation.Field(&c.Handles, validation.Each(validation.Required, validation.Length(1, 64))),
	)
}

// Handle returns the persona's handle on a platform, falling back to a
// lowercased name when none is configured.
func (c *Card) Handle(platform string) string {
	if h, ok := c.Handles[platform]; ok && h != "" {
		return h
	}
	return strings.ToLower(strings.ReplaceAll(c.Name, " ", "_"))
}

// Render formats the card as markdown for the MCP resource and API.
func (c *Card) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Name)
	if c.Species != "" {
		fmt.Fprintf(&b, "Species: %s\n\n", c.Species)
	}
	if c.Bio != "" {
		b.WriteString(strings.TrimSpace(c.Bio))
		b.WriteString("\n\n")
	}
	if len(c.Traits) > 0 {
		b.WriteString("## Traits\n\n")
		for _, t := range c.Traits {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}
	if len(c.Voice) > 0 {
		b.WriteString("## Voice\n\n")
		for _, v := range c.Voice {
			fmt.Fprintf(&b, "- %s\n", v)
		}
		b.WriteString("\n")
	}
	if len(c.Handles) > 0 {
		b.WriteString("## Handles\n\n")
		for _, platform := range sortedKeys(c.Handles) {
			fmt.Fprintf(&b, "- %s: @%s\n", platform, c.Handles[platform])
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default is the card used when config leaves the persona section empty.
func Default() Card {
	return Card{
		Name:    "Kit the Fox",
		Species: "red fox",
		Bio:     "Curious den-keeper. Writes notes about dye chemistry and tidepools, keeps a daily journal, and pokes around molting forums.",
		Traits:  []string{"curious", "tidy", "nocturnal"},
		Voice:   []string{"short sentences", "asks questions", "no hashtags"},
		Handles: map[string]string{
			"moltbook":   "kit_the_fox",
			"clawk":      "kit_the_fox",
			"shellmates": "kit_the_fox",
			"agentmail":  "kit@den.example",
		},
	}
}
