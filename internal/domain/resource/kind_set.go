package resource

// KindSet is an unordered set of resource kinds
type KindSet map[Kind]struct{}

// NewKindSet builds a set from kinds
func NewKindSet(kinds ...Kind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Contains reports membership. A nil or empty set contains nothing.
func (s KindSet) Contains(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the members in lexical order
func (s KindSet) Sorted() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return SortKinds(out)
}

// Default kinds used by the bundled catalog and tests
const (
	Wood   Kind = "wood"
	Stone  Kind = "stone"
	Food   Kind = "food"
	Metal  Kind = "metal"
	Planks Kind = "planks"
	Tools  Kind = "tools"
)

// DefaultCatalog returns the built-in resource table used when no catalog
// file is configured.
func DefaultCatalog() *Catalog {
	return MustNewCatalog([]Definition{
		{Kind: Wood, DisplayName: "Wood", Category: CategoryRaw, StackSize: 50, Tradable: true},
		{Kind: Stone, DisplayName: "Stone", Category: CategoryRaw, StackSize: 50, Tradable: true},
		{Kind: Food, DisplayName: "Food", Category: CategoryFood, StackSize: 30, IsConsumable: true, Tradable: true},
		{Kind: Metal, DisplayName: "Metal", Category: CategoryRaw, StackSize: 40, Tradable: true},
		{Kind: Planks, DisplayName: "Planks", Category: CategoryMaterial, StackSize: 50, Tradable: true},
		{Kind: Tools, DisplayName: "Tools", Category: CategoryEquipment, StackSize: 10},
	})
}
