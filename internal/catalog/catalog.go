// Package catalog holds the immutable trait catalog the generation engine runs
// against: categories in layering order, their traits, rarity weights and
// compatibility rules. The catalog is validated once at load time and read-only
// afterwards.
package catalog

// Trait is one selectable option within a category.
type Trait struct {
	ID            int
	Name          string
	InscriptionID string

	// Weight is the declared rarity percentage. Only meaningful when Weighted
	// is true; otherwise the trait shares the category's unclaimed remainder.
	Weight   float64
	Weighted bool

	// Forbidden and Required hold trait IDs. Forbidden is symmetric after
	// Load: if A forbids B, B forbids A.
	Forbidden map[int]bool
	Required  map[int]bool
}

// Category is one layering slot of the composition.
type Category struct {
	Name   string
	Rank   int
	Traits []*Trait

	// NoneAllowed marks that omitting this category entirely is a legal
	// choice. NoneWeight is its declared rarity when NoneWeighted.
	NoneAllowed  bool
	NoneWeight   float64
	NoneWeighted bool
	NoneID       int

	declaredSum float64
	anyWeighted bool
}

// Catalog is the full trait catalog, frozen after Load.
type Catalog struct {
	categories []*Category
	traits     map[int]*Trait
	owner      map[int]*Category
	position   map[string]int
}

// Categories returns the categories in layering-rank order.
func (c *Catalog) Categories() []*Category { return c.categories }

// Trait resolves a trait identifier.
func (c *Catalog) Trait(id int) (*Trait, bool) {
	t, ok := c.traits[id]
	return t, ok
}

// CategoryOf returns the category owning the trait identifier.
func (c *Catalog) CategoryOf(id int) (*Category, bool) {
	cat, ok := c.owner[id]
	return cat, ok
}

// Position returns the index of a category within layering order.
func (c *Catalog) Position(name string) (int, bool) {
	i, ok := c.position[name]
	return i, ok
}

// TraitWeight returns the effective relative weight of a trait within its
// category. Declared weights are used as-is; undeclared traits split the
// remainder of 100% equally with the none option; a fully unweighted category
// is uniform.
func (c *Catalog) TraitWeight(cat *Category, t *Trait) float64 {
	if !cat.anyWeighted {
		return 1
	}
	if t.Weighted {
		return t.Weight
	}
	return cat.remainderShare()
}

// NoneWeight returns the effective relative weight of the none choice, or 0
// when none is not allowed.
func (c *Catalog) NoneWeight(cat *Category) float64 {
	if !cat.NoneAllowed {
		return 0
	}
	if !cat.anyWeighted {
		return 1
	}
	if cat.NoneWeighted {
		return cat.NoneWeight
	}
	return cat.remainderShare()
}

// remainderShare splits the percentage not claimed by declared weights across
// the undeclared candidates (traits plus none when applicable).
func (cat *Category) remainderShare() float64 {
	undeclared := 0
	for _, t := range cat.Traits {
		if !t.Weighted {
			undeclared++
		}
	}
	if cat.NoneAllowed && !cat.NoneWeighted {
		undeclared++
	}
	if undeclared == 0 {
		return 0
	}
	remainder := 100 - cat.declaredSum
	if remainder <= 0 {
		return 0
	}
	return remainder / float64(undeclared)
}
