package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/ordgen/internal/catalog"
)

func mustCatalog(t *testing.T, specs []catalog.TraitSpec) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(specs)
	require.NoError(t, err)
	return cat
}

// wideCatalog builds categories sized so plenty of unique combinations exist.
func wideCatalog(t *testing.T) *catalog.Catalog {
	var specs []catalog.TraitSpec
	id := 1
	for rank, category := range []string{"Background", "Body", "Head", "Expression"} {
		for i := 0; i < 6; i++ {
			specs = append(specs, catalog.TraitSpec{
				ID:       id,
				Category: category,
				Rank:     rank + 1,
				Name:     fmt.Sprintf("%s-%d", category, i),
			})
			id++
		}
	}
	return mustCatalog(t, specs)
}

func TestSamplerWeightConvergence(t *testing.T) {
	cat := mustCatalog(t, []catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "A", Weight: 70, Weighted: true},
		{ID: 2, Category: "Background", Rank: 1, Name: "B", Weight: 30, Weighted: true},
	})
	s := sampler{rng: seededRNG(42), weighting: StaticWeighting(cat)}
	group := cat.Categories()[0]

	const draws = 5000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		trait, none, ok := s.draw(group, nil, false)
		require.True(t, ok)
		require.False(t, none)
		counts[trait.Name]++
	}
	assert.InDelta(t, 70, float64(counts["A"])/draws*100, 3)
	assert.InDelta(t, 30, float64(counts["B"])/draws*100, 3)
}

func TestSamplerUniformFallback(t *testing.T) {
	cat := mustCatalog(t, []catalog.TraitSpec{
		{ID: 1, Category: "Head", Rank: 1, Name: "A"},
		{ID: 2, Category: "Head", Rank: 1, Name: "B"},
		{ID: 3, Category: "Head", Rank: 1, Name: "C"},
		{ID: 4, Category: "Head", Rank: 1, Name: "D"},
	})
	s := sampler{rng: seededRNG(7), weighting: StaticWeighting(cat)}
	group := cat.Categories()[0]

	const draws = 5000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		trait, _, ok := s.draw(group, nil, false)
		require.True(t, ok)
		counts[trait.Name]++
	}
	for _, name := range []string{"A", "B", "C", "D"} {
		assert.InDelta(t, 25, float64(counts[name])/draws*100, 3, "trait %s", name)
	}
}

func TestSamplerExhaustsUnderGrowingExclusion(t *testing.T) {
	cat := mustCatalog(t, []catalog.TraitSpec{
		{ID: 1, Category: "Head", Rank: 1, Name: "A"},
		{ID: 2, Category: "Head", Rank: 1, Name: "B"},
		{ID: 3, Category: "Head", Rank: 1, Name: "none", None: true},
	})
	s := sampler{rng: seededRNG(1), weighting: StaticWeighting(cat)}
	group := cat.Categories()[0]

	excluded := map[int]bool{}
	noneExcluded := false
	for i := 0; i < 3; i++ {
		trait, none, ok := s.draw(group, excluded, noneExcluded)
		require.True(t, ok, "draw %d should still find a candidate", i)
		if none {
			noneExcluded = true
		} else {
			excluded[trait.ID] = true
		}
	}
	_, _, ok := s.draw(group, excluded, noneExcluded)
	assert.False(t, ok, "every candidate is excluded")
}

func TestGenerateUniqueItems(t *testing.T) {
	gen := New(wideCatalog(t), Options{Seed: 99})
	result := gen.Generate(500)

	require.Equal(t, Completed, result.Status)
	require.Len(t, result.Items, 500)
	seen := map[string]bool{}
	for _, item := range result.Items {
		key := item.Key()
		assert.False(t, seen[key], "duplicate item %s", key)
		seen[key] = true
		assert.Len(t, item.Choices, 4)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	first := New(wideCatalog(t), Options{Seed: 1234}).Generate(50)
	second := New(wideCatalog(t), Options{Seed: 1234}).Generate(50)

	require.Len(t, second.Items, len(first.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].Key(), second.Items[i].Key())
	}
}

func TestGenerateNeverPairsForbiddenTraits(t *testing.T) {
	specs := []catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "P", Avoid: []int{3}},
		{ID: 2, Category: "Background", Rank: 1, Name: "Plain"},
		{ID: 3, Category: "Body", Rank: 2, Name: "Q"},
		{ID: 4, Category: "Body", Rank: 2, Name: "Other"},
		{ID: 5, Category: "Head", Rank: 3, Name: "Hat"},
		{ID: 6, Category: "Head", Rank: 3, Name: "Cap"},
	}
	// Asking for more items than the 6 legal combinations keeps the search
	// running until budgets end it; small budgets keep the test quick.
	gen := New(mustCatalog(t, specs), Options{Seed: 5, BacktrackBudget: 30, RestartBudget: 60})
	result := gen.Generate(8)

	require.NotEmpty(t, result.Items)
	for _, item := range result.Items {
		ids := map[int]bool{}
		for _, trait := range item.Traits() {
			ids[trait.ID] = true
		}
		assert.False(t, ids[1] && ids[3], "forbidden pair P+Q generated")
	}
}

func TestGeneratePropagatesRequiredTraits(t *testing.T) {
	// X in Background requires Y in Head; Y requires Z in Expression. Every
	// item holding X must hold both, two categories ahead of the choice.
	specs := []catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "X", Weight: 60, Weighted: true, Require: []int{5}},
		{ID: 2, Category: "Background", Rank: 1, Name: "Plain", Weight: 40, Weighted: true},
		{ID: 3, Category: "Body", Rank: 2, Name: "Slim"},
		{ID: 4, Category: "Body", Rank: 2, Name: "Bulk"},
		{ID: 5, Category: "Head", Rank: 3, Name: "Y", Require: []int{7}},
		{ID: 6, Category: "Head", Rank: 3, Name: "Bare"},
		{ID: 7, Category: "Expression", Rank: 4, Name: "Z"},
		{ID: 8, Category: "Expression", Rank: 4, Name: "Smile"},
	}
	gen := New(mustCatalog(t, specs), Options{Seed: 21, BacktrackBudget: 40, RestartBudget: 80})
	result := gen.Generate(12)

	require.NotEmpty(t, result.Items)
	sawX := false
	for _, item := range result.Items {
		ids := map[int]bool{}
		for _, trait := range item.Traits() {
			ids[trait.ID] = true
		}
		if ids[1] {
			sawX = true
			assert.True(t, ids[5], "X without required Y")
			assert.True(t, ids[7], "X without transitively required Z")
		}
	}
	assert.True(t, sawX, "X should appear at 60%% weight")
}

func TestGenerateTerminatesWhenCombinationsRunOut(t *testing.T) {
	specs := []catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "A"},
		{ID: 2, Category: "Background", Rank: 1, Name: "B"},
		{ID: 3, Category: "Body", Rank: 2, Name: "C"},
		{ID: 4, Category: "Body", Rank: 2, Name: "D"},
	}
	gen := New(mustCatalog(t, specs), Options{Seed: 3, BacktrackBudget: 20, RestartBudget: 40})
	result := gen.Generate(10)

	assert.Equal(t, PartiallyCompleted, result.Status)
	assert.NotEmpty(t, result.Reason)
	assert.Less(t, len(result.Items), 10)
	assert.NotEmpty(t, result.Items, "the four legal combinations should be found")
}

func TestGenerateSingleTraitCategoryIsDeterministic(t *testing.T) {
	specs := []catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "Only"},
		{ID: 2, Category: "Body", Rank: 2, Name: "A"},
		{ID: 3, Category: "Body", Rank: 2, Name: "B"},
		{ID: 4, Category: "Body", Rank: 2, Name: "C"},
	}
	gen := New(mustCatalog(t, specs), Options{Seed: 8})
	result := gen.Generate(3)

	require.Equal(t, Completed, result.Status)
	for _, item := range result.Items {
		require.False(t, item.Choices[0].None)
		assert.Equal(t, "Only", item.Choices[0].Trait.Name)
	}
}

func TestGenerateHonorsNoneChoice(t *testing.T) {
	specs := []catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "A"},
		{ID: 2, Category: "Background", Rank: 1, Name: "B"},
		{ID: 3, Category: "Head", Rank: 2, Name: "Hat", Weight: 50, Weighted: true},
		{ID: 4, Category: "Head", Rank: 2, Name: "none", None: true},
	}
	gen := New(mustCatalog(t, specs), Options{Seed: 17})
	result := gen.Generate(4)

	require.Equal(t, Completed, result.Status)
	noneSeen := false
	for _, item := range result.Items {
		if item.Choices[1].None {
			noneSeen = true
		}
	}
	assert.True(t, noneSeen, "with 4 of 4 combinations generated, the none choice must appear")
}

func TestQuotaWeightingTracksTargets(t *testing.T) {
	// A large second category keeps uniqueness pressure out of the picture so
	// the test isolates the weighting itself.
	specs := []catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "A", Weight: 70, Weighted: true},
		{ID: 2, Category: "Background", Rank: 1, Name: "B", Weight: 30, Weighted: true},
	}
	for i := 0; i < 2000; i++ {
		specs = append(specs, catalog.TraitSpec{
			ID:       3 + i,
			Category: "Serial",
			Rank:     2,
			Name:     fmt.Sprintf("S%d", i),
		})
	}
	cat := mustCatalog(t, specs)
	const n = 1000
	gen := New(cat, Options{Seed: 77, Weighting: QuotaWeighting(cat, n), Shuffle: true})
	result := gen.Generate(n)

	require.Equal(t, Completed, result.Status)
	countA := 0
	for _, item := range result.Items {
		if item.Choices[0].Trait.ID == 1 {
			countA++
		}
	}
	// Quota weighting should land tighter than plain sampling's tolerance.
	assert.InDelta(t, 70, float64(countA)/n*100, 2)
}
