package resource

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// Kind identifies a resource. The set of valid kinds is closed and fixed by the
// Catalog at startup; passing an unknown kind to a catalog-bound API is a bug.
type Kind string

// Category groups kinds for display and stock summaries
type Category string

const (
	CategoryRaw       Category = "raw"
	CategoryFood      Category = "food"
	CategoryMaterial  Category = "material"
	CategoryEquipment Category = "equipment"
)

// Definition is the static description of one resource kind
type Definition struct {
	Kind         Kind
	DisplayName  string
	Category     Category
	StackSize    uint32
	IsConsumable bool
	Tradable     bool
}

// Catalog is the immutable table of resource definitions.
//
// Invariants:
// - Every definition has StackSize >= 1
// - Kinds are unique
type Catalog struct {
	defs  map[Kind]Definition
	order []Kind
}

// NewCatalog validates defs and builds a catalog preserving declaration order.
func NewCatalog(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, shared.NewValidationError("resources", "catalog must define at least one resource")
	}

	c := &Catalog{
		defs:  make(map[Kind]Definition, len(defs)),
		order: make([]Kind, 0, len(defs)),
	}
	for i, def := range defs {
		field := fmt.Sprintf("resources[%d]", i)
		if def.Kind == "" {
			return nil, shared.NewValidationError(field, "kind cannot be empty")
		}
		if def.StackSize < 1 {
			return nil, shared.NewValidationError(field, fmt.Sprintf("stack size for %s must be at least 1", def.Kind))
		}
		if _, dup := c.defs[def.Kind]; dup {
			return nil, shared.NewValidationError(field, fmt.Sprintf("duplicate resource kind %s", def.Kind))
		}
		if def.DisplayName == "" {
			def.DisplayName = string(def.Kind)
		}
		c.defs[def.Kind] = def
		c.order = append(c.order, def.Kind)
	}
	return c, nil
}

// MustNewCatalog is NewCatalog for static tables; panics on invalid input
func MustNewCatalog(defs []Definition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the definition for kind
func (c *Catalog) Lookup(kind Kind) (Definition, bool) {
	def, ok := c.defs[kind]
	return def, ok
}

// Has reports whether kind is defined
func (c *Catalog) Has(kind Kind) bool {
	_, ok := c.defs[kind]
	return ok
}

// Get returns the definition for kind, panicking on unknown kinds
func (c *Catalog) Get(kind Kind) Definition {
	def, ok := c.defs[kind]
	if !ok {
		panic(fmt.Sprintf("resource: unknown kind %q", kind))
	}
	return def
}

// StackSize returns the global per-kind bound
func (c *Catalog) StackSize(kind Kind) uint32 {
	return c.Get(kind).StackSize
}

// MustKnow panics unless every kind is defined
func (c *Catalog) MustKnow(kinds ...Kind) {
	for _, k := range kinds {
		c.Get(k)
	}
}

// Kinds returns all kinds in declaration order
func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, len(c.order))
	copy(out, c.order)
	return out
}

// ByCategory returns the kinds of one category in declaration order
func (c *Catalog) ByCategory(cat Category) []Kind {
	var out []Kind
	for _, k := range c.order {
		if c.defs[k].Category == cat {
			out = append(out, k)
		}
	}
	return out
}

// SortKinds sorts kinds lexically in place and returns them. Map iteration is
// random in Go; anything that walks a ledger in a user-visible order goes
// through here.
func SortKinds(kinds []Kind) []Kind {
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
