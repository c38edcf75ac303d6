package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// TraitSpec is one normalized input record, as produced by the spreadsheet
// loader. A spec with None set marks the category's "none" row rather than a
// selectable trait.
type TraitSpec struct {
	ID            int
	Category      string
	Rank          int
	Name          string
	InscriptionID string
	Weight        float64
	Weighted      bool
	Avoid         []int
	Require       []int
	None          bool
}

// ConfigError reports every structural problem found in the catalog input.
// Generation never starts when a ConfigError is returned.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) == 1 {
		return "catalog: " + e.Problems[0]
	}
	return fmt.Sprintf("catalog: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// weightSumSlack absorbs float noise when checking that declared weights stay
// within 100%.
const weightSumSlack = 1e-6

// Load builds a validated, frozen Catalog from normalized input records.
// All structural problems are collected into a single ConfigError rather than
// failing on the first.
func Load(specs []TraitSpec) (*Catalog, error) {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(specs) == 0 {
		return nil, &ConfigError{Problems: []string{"no trait records"}}
	}

	cat := &Catalog{
		traits:   make(map[int]*Trait),
		owner:    make(map[int]*Category),
		position: make(map[string]int),
	}
	byName := make(map[string]*Category)
	noneIDs := make(map[int]string)

	for _, spec := range specs {
		name := strings.TrimSpace(spec.Category)
		if name == "" {
			fail("trait %d: empty category name", spec.ID)
			continue
		}
		group, ok := byName[name]
		if !ok {
			group = &Category{Name: name, Rank: spec.Rank}
			byName[name] = group
			cat.categories = append(cat.categories, group)
		}
		if spec.Weighted && spec.Weight < 0 {
			fail("trait %d (%s): negative weight %.2f", spec.ID, spec.Name, spec.Weight)
			continue
		}
		if spec.None {
			if group.NoneAllowed {
				fail("category %s: duplicate none row (trait %d)", name, spec.ID)
				continue
			}
			group.NoneAllowed = true
			group.NoneID = spec.ID
			group.NoneWeight = spec.Weight
			group.NoneWeighted = spec.Weighted
			noneIDs[spec.ID] = name
			if spec.Weighted {
				group.declaredSum += spec.Weight
				group.anyWeighted = true
			}
			continue
		}
		if _, dup := cat.traits[spec.ID]; dup {
			fail("trait %d: duplicate identifier", spec.ID)
			continue
		}
		t := &Trait{
			ID:            spec.ID,
			Name:          spec.Name,
			InscriptionID: spec.InscriptionID,
			Weight:        spec.Weight,
			Weighted:      spec.Weighted,
			Forbidden:     make(map[int]bool, len(spec.Avoid)),
			Required:      make(map[int]bool, len(spec.Require)),
		}
		for _, id := range spec.Avoid {
			t.Forbidden[id] = true
		}
		for _, id := range spec.Require {
			t.Required[id] = true
		}
		group.Traits = append(group.Traits, t)
		cat.traits[t.ID] = t
		cat.owner[t.ID] = group
		if t.Weighted {
			group.declaredSum += t.Weight
			group.anyWeighted = true
		}
	}

	sort.SliceStable(cat.categories, func(i, j int) bool {
		return cat.categories[i].Rank < cat.categories[j].Rank
	})
	for i, group := range cat.categories {
		cat.position[group.Name] = i
	}

	for _, group := range cat.categories {
		if len(group.Traits) == 0 && !group.NoneAllowed {
			fail("category %s: no traits", group.Name)
		}
		if group.anyWeighted && group.declaredSum > 100+weightSumSlack {
			fail("category %s: declared weights sum to %.2f%%, above 100%%", group.Name, group.declaredSum)
		}
		for _, t := range group.Traits {
			for _, other := range group.Traits {
				if other != t && other.Name == t.Name {
					fail("category %s: duplicate trait name %q (traits %d and %d)", group.Name, t.Name, t.ID, other.ID)
				}
			}
		}
	}

	for _, group := range cat.categories {
		for _, t := range group.Traits {
			for id := range t.Forbidden {
				if id == t.ID {
					fail("trait %d (%s): forbids itself", t.ID, t.Name)
					continue
				}
				if category, isNone := noneIDs[id]; isNone {
					fail("trait %d (%s): avoid list references the none row of category %s; absence cannot be constrained", t.ID, t.Name, category)
					continue
				}
				if _, ok := cat.traits[id]; !ok {
					fail("trait %d (%s): avoid list references unknown trait %d", t.ID, t.Name, id)
				}
			}
			for id := range t.Required {
				if id == t.ID {
					fail("trait %d (%s): requires itself", t.ID, t.Name)
					continue
				}
				if category, isNone := noneIDs[id]; isNone {
					fail("trait %d (%s): require list references the none row of category %s", t.ID, t.Name, category)
					continue
				}
				other, ok := cat.traits[id]
				if !ok {
					fail("trait %d (%s): require list references unknown trait %d", t.ID, t.Name, id)
					continue
				}
				if t.Forbidden[id] {
					fail("trait %d (%s) both requires and forbids trait %d (%s)", t.ID, t.Name, other.ID, other.Name)
				}
				if owner, ok := cat.owner[id]; ok && owner == group {
					fail("trait %d (%s): requires trait %d (%s) from its own category", t.ID, t.Name, other.ID, other.Name)
				}
			}
		}
	}

	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}

	// Forbids are symmetric by convention; mirror one-sided declarations so
	// the engine only ever checks one direction.
	for _, t := range cat.traits {
		for id := range t.Forbidden {
			cat.traits[id].Forbidden[t.ID] = true
		}
	}
	// A mirrored forbid can expose a contradiction the one-sided check missed.
	for _, t := range cat.traits {
		for id := range t.Required {
			if t.Forbidden[id] {
				other := cat.traits[id]
				fail("trait %d (%s) requires trait %d (%s), which forbids it", t.ID, t.Name, other.ID, other.Name)
			}
		}
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}

	return cat, nil
}
