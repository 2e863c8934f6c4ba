package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/content.yaml
var defaultContent []byte

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultContent)
}

// Load reads a catalog from path, or the bundled one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog and checks that every mode has something to
// work with.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	if len(c.Items) > 0 && !strings.Contains(c.Template, Placeholder) {
		errs = append(errs, fmt.Errorf("template has no %s placeholder", Placeholder))
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, fmt.Errorf("items[%d]: name is empty", i))
		}
	}
	for i, item := range c.Styled {
		for j, style := range item.Styles {
			if strings.TrimSpace(style.Prompt) == "" {
				errs = append(errs, fmt.Errorf("styled[%d].styles[%d]: prompt is empty", i, j))
			}
		}
	}
	return errors.Join(errs...)
}
