package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/automator/internal/automator"
)

//go:embed endpoints.yaml
var defaultCatalog []byte

// Catalog maps an integration id to its endpoint definitions.
type Catalog map[string][]automator.Definition

// Default returns the built-in catalog.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path loads the built-in catalog.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// For returns the definitions of an integration, nil when it has none.
func (c Catalog) For(integrationID string) []automator.Definition {
	return c[integrationID]
}

// IntegrationIDs returns the integration ids in the catalog, sorted.
func (c Catalog) IntegrationIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c Catalog) validate() error {
	for integration, defs := range c {
		ids := make(map[string]struct{}, len(defs))
		paths := make(map[string]struct{}, len(defs))
		for i, def := range defs {
			switch {
			case def.ID == "":
				return fmt.Errorf("%s[%d]: missing id", integration, i)
			case def.Path == "" || def.Path[0] != '/':
				return fmt.Errorf("%s/%s: path must start with /", integration, def.ID)
			case !def.Type.Valid():
				return fmt.Errorf("%s/%s: unknown type %q", integration, def.ID, def.Type)
			case def.Type == automator.TypeQueue && def.Trigger == "":
				return fmt.Errorf("%s/%s: queue endpoint without trigger", integration, def.ID)
			case def.Type != automator.TypeQueue && def.PostType == "":
				return fmt.Errorf("%s/%s: %s endpoint without post_type", integration, def.ID, def.Type)
			}
			if _, dup := ids[def.ID]; dup {
				return fmt.Errorf("%s/%s: duplicate id", integration, def.ID)
			}
			if _, dup := paths[def.Path]; dup {
				return fmt.Errorf("%s/%s: duplicate path %s", integration, def.ID, def.Path)
			}
			ids[def.ID] = struct{}{}
			paths[def.Path] = struct{}{}
		}
	}
	return nil
}
