package engine

import "github.com/appengine-ltd/ordgen/internal/catalog"

// Weighting supplies the relative weight of each candidate at draw time.
// Implementations must return non-negative weights.
type Weighting interface {
	TraitWeight(cat *catalog.Category, t *catalog.Trait) float64
	NoneWeight(cat *catalog.Category) float64
	// Record is called once per accepted item so adaptive weightings can
	// track realized usage.
	Record(it Item)
}

// staticWeighting draws with the catalog's declared weights, unchanged for the
// whole run.
type staticWeighting struct {
	cat *catalog.Catalog
}

// StaticWeighting samples traits by their declared rarity weights.
func StaticWeighting(cat *catalog.Catalog) Weighting {
	return &staticWeighting{cat: cat}
}

func (w *staticWeighting) TraitWeight(cat *catalog.Category, t *catalog.Trait) float64 {
	return w.cat.TraitWeight(cat, t)
}

func (w *staticWeighting) NoneWeight(cat *catalog.Category) float64 {
	return w.cat.NoneWeight(cat)
}

func (w *staticWeighting) Record(Item) {}

// quotaWeighting biases each draw toward traits still short of their target
// count for the requested collection size. The +1 keeps exhausted traits
// drawable, which avoids the sampler stalling on the last few items.
type quotaWeighting struct {
	cat       *catalog.Catalog
	total     int
	used      map[int]int
	noneUsed  map[string]int
	perTarget map[int]float64
	nonePct   map[string]float64
}

// QuotaWeighting returns an adaptive weighting that steers realized trait
// counts toward total×weight, compensating for skew introduced by avoid rules.
func QuotaWeighting(cat *catalog.Catalog, total int) Weighting {
	w := &quotaWeighting{
		cat:       cat,
		total:     total,
		used:      make(map[int]int),
		noneUsed:  make(map[string]int),
		perTarget: make(map[int]float64),
		nonePct:   make(map[string]float64),
	}
	for _, group := range cat.Categories() {
		sum := cat.NoneWeight(group)
		for _, t := range group.Traits {
			sum += cat.TraitWeight(group, t)
		}
		if sum <= 0 {
			continue
		}
		for _, t := range group.Traits {
			w.perTarget[t.ID] = cat.TraitWeight(group, t) / sum
		}
		w.nonePct[group.Name] = cat.NoneWeight(group) / sum
	}
	return w
}

func (w *quotaWeighting) TraitWeight(cat *catalog.Category, t *catalog.Trait) float64 {
	return w.deficit(w.perTarget[t.ID], w.used[t.ID])
}

func (w *quotaWeighting) NoneWeight(cat *catalog.Category) float64 {
	if !cat.NoneAllowed {
		return 0
	}
	return w.deficit(w.nonePct[cat.Name], w.noneUsed[cat.Name])
}

func (w *quotaWeighting) deficit(share float64, used int) float64 {
	if share <= 0 {
		return 0
	}
	expected := float64(w.total) * share
	remaining := expected - float64(used)
	if remaining < 0 {
		remaining = 0
	}
	return remaining + 1
}

func (w *quotaWeighting) Record(it Item) {
	for i, ch := range it.Choices {
		if ch.None || ch.Trait == nil {
			name := w.categoryName(i)
			if name != "" {
				w.noneUsed[name]++
			}
			continue
		}
		w.used[ch.Trait.ID]++
	}
}

func (w *quotaWeighting) categoryName(pos int) string {
	groups := w.cat.Categories()
	if pos < 0 || pos >= len(groups) {
		return ""
	}
	return groups[pos].Name
}
