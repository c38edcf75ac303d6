package audit

import (
	"github.com/appengine-ltd/ordgen/internal/catalog"
	"github.com/appengine-ltd/ordgen/internal/engine"
)

// TraitUsage is the realized usage of one trait (or the none choice) across
// the collection, next to its requested rarity.
type TraitUsage struct {
	Trait       string
	Count       int
	Percent     float64
	RarityInput float64
	HasRarity   bool
	None        bool
}

// CategoryUsage aggregates one category. Total always equals the collection
// length: every item makes exactly one choice per category.
type CategoryUsage struct {
	Category string
	Total    int
	Traits   []TraitUsage
}

// Report is the usage-statistics view over a finished collection. Derived,
// read-only; nothing here flows back into the catalog.
type Report struct {
	TotalItems int
	Categories []CategoryUsage
	// TraitCountDistribution maps "number of traits present" (none choices
	// reduce it) to how many items carry exactly that many.
	TraitCountDistribution map[int]int
}

// Summarize tallies realized occurrence counts and frequencies per trait and
// per category. Pure aggregation.
func Summarize(items []engine.Item, cat *catalog.Catalog) Report {
	report := Report{
		TotalItems:             len(items),
		TraitCountDistribution: make(map[int]int),
	}

	counts := make(map[int]int)
	noneCounts := make(map[string]int)
	groups := cat.Categories()
	for _, item := range items {
		present := 0
		for i, ch := range item.Choices {
			if ch.None || ch.Trait == nil {
				if i < len(groups) {
					noneCounts[groups[i].Name]++
				}
				continue
			}
			counts[ch.Trait.ID]++
			present++
		}
		report.TraitCountDistribution[present]++
	}

	pct := func(count int) float64 {
		if len(items) == 0 {
			return 0
		}
		return float64(count) / float64(len(items)) * 100
	}

	for _, group := range groups {
		usage := CategoryUsage{Category: group.Name}
		for _, t := range group.Traits {
			usage.Traits = append(usage.Traits, TraitUsage{
				Trait:       t.Name,
				Count:       counts[t.ID],
				Percent:     pct(counts[t.ID]),
				RarityInput: t.Weight,
				HasRarity:   t.Weighted,
			})
			usage.Total += counts[t.ID]
		}
		if group.NoneAllowed {
			usage.Traits = append(usage.Traits, TraitUsage{
				Trait:       "none",
				Count:       noneCounts[group.Name],
				Percent:     pct(noneCounts[group.Name]),
				RarityInput: group.NoneWeight,
				HasRarity:   group.NoneWeighted,
				None:        true,
			})
			usage.Total += noneCounts[group.Name]
		}
		report.Categories = append(report.Categories, usage)
	}
	return report
}
