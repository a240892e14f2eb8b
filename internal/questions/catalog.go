package questions

import (
	"encoding/json"
	"fmt"
	"os"
)

// ModuleRef describes one module inside the catalog: its id, display
// name, and the question file it loads from (without extension).
type ModuleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

// Subcategory groups modules under a specialty that has subcategories.
type Subcategory struct {
	Name    string      `json:"name"`
	Modules []ModuleRef `json:"modules"`
}

// Specialty is a top-level content area. It either lists modules
// directly or splits them across subcategories.
type Specialty struct {
	Name             string                 `json:"name"`
	HasSubcategories bool                   `json:"hasSubcategories"`
	Subcategories    map[string]Subcategory `json:"subcategories,omitempty"`
	Modules          []ModuleRef            `json:"modules,omitempty"`
}

// Catalog is the full content tree: specialties, subcategories, modules.
type Catalog struct {
	Specialties map[string]Specialty `json:"specialties"`
}

// LoadCatalog reads a catalog JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// FindModule returns the ModuleRef for id, walking specialties and
// subcategories. The second result is false when no module matches.
func (c *Catalog) FindModule(id string) (ModuleRef, bool) {
	for _, sp := range c.Specialties {
		if sp.HasSubcategories {
			for _, sub := range sp.Subcategories {
				for _, m := range sub.Modules {
					if m.ID == id {
						return m, true
					}
				}
			}
			continue
		}
		for _, m := range sp.Modules {
			if m.ID == id {
				return m, true
			}
		}
	}
	return ModuleRef{}, false
}

// ResolveModuleName returns the display name for a module id, or the id
// itself when the module is not in the catalog.
func (c *Catalog) ResolveModuleName(moduleID string) string {
	if m, ok := c.FindModule(moduleID); ok {
		return m.Name
	}
	return moduleID
}

var _ NameResolver = (*Catalog)(nil)
