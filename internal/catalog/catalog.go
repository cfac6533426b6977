// Package catalog resolves per-provider model defaults from an embedded
// catalog file, so the binary works without any model configuration.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

// ProviderEntry describes the catalog defaults for one provider.
type ProviderEntry struct {
	DefaultModel    string `yaml:"default_model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type catalogFile struct {
	Providers map[string]ProviderEntry `yaml:"providers"`
}

// Catalog holds the parsed provider entries.
type Catalog struct {
	providers map[string]ProviderEntry
}

// Load parses the embedded model catalog.
func Load() (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(modelsYAML, &f); err != nil {
		return nil, fmt.Errorf("parse embedded model catalog: %w", err)
	}
	if len(f.Providers) == 0 {
		return nil, fmt.Errorf("embedded model catalog lists no providers")
	}
	for name, entry := range f.Providers {
		if entry.DefaultModel == "" {
			return nil, fmt.Errorf("catalog provider %s has no default model", name)
		}
	}
	return &Catalog{providers: f.Providers}, nil
}

// Lookup returns the catalog entry for a provider.
func (c *Catalog) Lookup(provider string) (ProviderEntry, bool) {
	entry, ok := c.providers[provider]
	return entry, ok
}

// Providers returns the known provider names in sorted order.
func (c *Catalog) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
