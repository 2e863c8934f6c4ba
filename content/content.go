package content

import (
	"fmt"
	"strings"
)

// WorkItem is one prompt submission. Name identifies it in logs and reports.
type WorkItem struct {
	Name        string
	Description string
	Prompt      string
}

// Batch is an ordered list of work items.
type Batch []WorkItem

// Item is a thing to draw with the shared template.
type Item struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Style is one rendering of a styled item, with its own full prompt.
type Style struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Prompt      string `yaml:"prompt"`
}

// StyledItem is an item that comes with hand-written prompts per style.
type StyledItem struct {
	Name        string  `yaml:"name"`
	Category    string  `yaml:"category"`
	Description string  `yaml:"description"`
	Styles      []Style `yaml:"styles"`
}

// Placeholder is replaced by the item name in Catalog.Template.
const Placeholder = "{itemName}"

// Catalog is the prompt content for a run.
type Catalog struct {
	Template string       `yaml:"template"`
	Items    []Item       `yaml:"items"`
	Styled   []StyledItem `yaml:"styled"`
	// Extra prompts appended to the distinct batch, e.g. from a mailbox.
	Extra []WorkItem `yaml:"-"`
}

// Mode selects how a Catalog turns into a Batch.
type Mode string

const (
	ModeTemplate Mode = "template" // shared template, one prompt per item
	ModeDistinct Mode = "distinct" // a distinct prompt per styled entry
	ModeCombined Mode = "combined" // one prompt asking for every item
)

// Modes lists the run modes in menu order.
var Modes = []Mode{ModeTemplate, ModeDistinct, ModeCombined}

// Describe returns the menu label of a mode.
func (m Mode) Describe() string {
	switch m {
	case ModeTemplate:
		return "Multi-image with same style (using items list)"
	case ModeDistinct:
		return "Multi-image with different styles (using prompts list)"
	case ModeCombined:
		return "Single prompt covering every item"
	}
	return string(m)
}

// ParseMode maps a menu label or mode name back to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if s == string(m) || s == m.Describe() {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown run mode %q", s)
}

// Prompt renders the template for a single item.
func (c *Catalog) Prompt(item Item) string {
	return strings.ReplaceAll(c.Template, Placeholder, item.Name)
}

// MultiPrompt renders one prompt that asks for every item.
func (c *Catalog) MultiPrompt(items []Item) string {
	names := make([]string, len(items))
	lines := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
		lines[i] = fmt.Sprintf("- %s: %s", item.Name, item.Description)
	}
	base := strings.ReplaceAll(c.Template, Placeholder, strings.Join(names, ", "))
	return base + "\n\nPlease generate separate images for each of the following items:\n" + strings.Join(lines, "\n")
}

// Prompts flattens the styled items into one work item per style, followed
// by any extra prompts.
func (c *Catalog) Prompts() Batch {
	var batch Batch
	for _, item := range c.Styled {
		for _, style := range item.Styles {
			batch = append(batch, WorkItem{
				Name:        item.Name + " / " + style.Name,
				Description: style.Description,
				Prompt:      strings.TrimSpace(style.Prompt),
			})
		}
	}
	return append(batch, c.Extra...)
}

// Batch builds the work list for a mode.
func (c *Catalog) Batch(mode Mode) (Batch, error) {
	switch mode {
	case ModeTemplate:
		batch := make(Batch, 0, len(c.Items))
		for _, item := range c.Items {
			batch = append(batch, WorkItem{Name: item.Name, Description: item.Description, Prompt: c.Prompt(item)})
		}
		return batch, nil
	case ModeDistinct:
		return c.Prompts(), nil
	case ModeCombined:
		if len(c.Items) == 0 {
			return nil, nil
		}
		names := make([]string, len(c.Items))
		for i, item := range c.Items {
			names[i] = item.Name
		}
		return Batch{{
			Name:        strings.Join(names, ", "),
			Description: fmt.Sprintf("%d items in one prompt", len(c.Items)),
			Prompt:      c.MultiPrompt(c.Items),
		}}, nil
	}
	return nil, fmt.Errorf("unknown run mode %q", mode)
}
