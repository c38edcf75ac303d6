// Package output serializes a finished run for downstream tooling: the
// collection metadata, the trait→inscription-id map, and the usage report.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/appengine-ltd/ordgen/internal/audit"
	"github.com/appengine-ltd/ordgen/internal/catalog"
	"github.com/appengine-ltd/ordgen/internal/engine"
)

// Attribute is one trait of one item as persisted to metadata.json.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// CollectionRecords flattens items into metadata records: attributes in
// category layering order, none choices omitted.
func CollectionRecords(items []engine.Item, cat *catalog.Catalog) [][]Attribute {
	groups := cat.Categories()
	records := make([][]Attribute, 0, len(items))
	for _, item := range items {
		record := make([]Attribute, 0, len(item.Choices))
		for i, ch := range item.Choices {
			if ch.None || ch.Trait == nil || i >= len(groups) {
				continue
			}
			record = append(record, Attribute{TraitType: groups[i].Name, Value: ch.Trait.Name})
		}
		records = append(records, record)
	}
	return records
}

// WriteCollection persists metadata.json.
func WriteCollection(path string, items []engine.Item, cat *catalog.Catalog) error {
	return writeJSON(path, CollectionRecords(items, cat))
}

// WriteTraitMap persists traits.json: inscription ids for every trait used at
// least once, keyed by trait type then trait name.
func WriteTraitMap(path string, items []engine.Item, cat *catalog.Catalog) error {
	used := make(map[int]bool)
	for _, item := range items {
		for _, t := range item.Traits() {
			used[t.ID] = true
		}
	}

	mapping := make(map[string]map[string]string)
	for _, group := range cat.Categories() {
		for _, t := range group.Traits {
			if !used[t.ID] {
				continue
			}
			if mapping[group.Name] == nil {
				mapping[group.Name] = make(map[string]string)
			}
			mapping[group.Name][t.Name] = t.InscriptionID
		}
	}
	return writeJSON(path, mapping)
}

// statsDoc is the on-disk layout of trait_usage_statistics.json.
type statsDoc struct {
	TotalInscriptions      int                                 `json:"Total_inscriptions"`
	TraitCountDistribution map[string]string                   `json:"Trait_count_distribution"`
	TraitsUsage            map[string]map[string]traitUsageDoc `json:"Traits_usage"`
	Outcome                string                              `json:"Outcome"`
	OutcomeDetail          string                              `json:"Outcome_detail,omitempty"`
}

type traitUsageDoc struct {
	Usage       string `json:"usage"`
	RarityInput string `json:"rarity_input"`
	NoneStatus  string `json:"none_status,omitempty"`
}

// WriteStats persists trait_usage_statistics.json from the audit report and
// the run outcome.
func WriteStats(path string, report audit.Report, result engine.Result) error {
	doc := statsDoc{
		TotalInscriptions:      report.TotalItems,
		TraitCountDistribution: make(map[string]string, len(report.TraitCountDistribution)),
		TraitsUsage:            make(map[string]map[string]traitUsageDoc, len(report.Categories)),
		Outcome:                result.Status.String(),
		OutcomeDetail:          result.Reason,
	}
	for count, amount := range report.TraitCountDistribution {
		doc.TraitCountDistribution[fmt.Sprintf("%d_traits", count)] = fmt.Sprintf("%d inscriptions", amount)
	}
	for _, category := range report.Categories {
		usage := make(map[string]traitUsageDoc, len(category.Traits))
		for _, t := range category.Traits {
			entry := traitUsageDoc{
				Usage:       fmt.Sprintf("%d (%.2f%%)", t.Count, t.Percent),
				RarityInput: "equal",
			}
			if t.HasRarity {
				entry.RarityInput = fmt.Sprintf("%.2f", t.RarityInput)
			}
			if t.None {
				entry.NoneStatus = "Not used"
				if t.Count > 0 {
					entry.NoneStatus = "Used"
				}
			}
			usage[t.Trait] = entry
		}
		doc.TraitsUsage[category.Category] = usage
	}
	return writeJSON(path, doc)
}

func writeJSON(path string, v any) error {
	blob, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
