package catalog

import (
	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

type resourceFile struct {
	Resources []resourceEntry `yaml:"resources" validate:"required,min=1,dive"`
}

type resourceEntry struct {
	Kind        string `yaml:"kind" validate:"required"`
	DisplayName string `yaml:"display_name"`
	Category    string `yaml:"category" validate:"omitempty,oneof=raw food material equipment"`
	StackSize   uint32 `yaml:"stack_size" validate:"required,min=1"`
	Consumable  bool   `yaml:"consumable"`
	Tradable    bool   `yaml:"tradable"`
}

// LoadResources builds the resource catalog from a YAML file. An empty path
// returns the built-in catalog.
func LoadResources(path string) (*resource.Catalog, error) {
	if blank(path) {
		return resource.DefaultCatalog(), nil
	}

	var file resourceFile
	if err := decodeFile(path, &file); err != nil {
		return nil, err
	}

	defs := make([]resource.Definition, 0, len(file.Resources))
	for _, r := range file.Resources {
		category := resource.Category(r.Category)
		if category == "" {
			category = resource.CategoryRaw
		}
		defs = append(defs, resource.Definition{
			Kind:         resource.Kind(r.Kind),
			DisplayName:  r.DisplayName,
			Category:     category,
			StackSize:    r.StackSize,
			IsConsumable: r.Consumable,
			Tradable:     r.Tradable,
		})
	}
	return resource.NewCatalog(defs)
}
