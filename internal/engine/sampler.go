package engine

import (
	"math/rand/v2"
	"sort"

	"github.com/appengine-ltd/ordgen/internal/catalog"
)

// sampler performs weighted random selection over a category's candidates
// minus an exclusion set. Each draw rebuilds the cumulative weight list and
// binary-searches it, so cost stays bounded as exclusions grow.
type sampler struct {
	rng       *rand.Rand
	weighting Weighting
}

// draw picks a trait, or the none choice (nil trait, none=true), from the
// category. Excluded trait IDs and, when noneExcluded is set, the none choice
// are skipped. ok is false when no candidate remains.
func (s *sampler) draw(cat *catalog.Category, excluded map[int]bool, noneExcluded bool) (t *catalog.Trait, none bool, ok bool) {
	candidates := make([]*catalog.Trait, 0, len(cat.Traits)+1)
	cumulative := make([]float64, 0, len(cat.Traits)+1)
	sum := 0.0

	for _, candidate := range cat.Traits {
		if excluded[candidate.ID] {
			continue
		}
		weight := s.weighting.TraitWeight(cat, candidate)
		if weight <= 0 {
			continue
		}
		sum += weight
		candidates = append(candidates, candidate)
		cumulative = append(cumulative, sum)
	}
	noneWeight := 0.0
	if cat.NoneAllowed && !noneExcluded {
		noneWeight = s.weighting.NoneWeight(cat)
		if noneWeight > 0 {
			sum += noneWeight
			candidates = append(candidates, nil)
			cumulative = append(cumulative, sum)
		}
	}

	if len(candidates) == 0 || sum <= 0 {
		return nil, false, false
	}

	x := s.rng.Float64() * sum
	i := sort.SearchFloat64s(cumulative, x)
	if i >= len(candidates) {
		i = len(candidates) - 1
	}
	if candidates[i] == nil {
		return nil, true, true
	}
	return candidates[i], false, true
}
