// Package audit re-checks a finished collection independently of the
// generator's bookkeeping and aggregates realized trait usage. A violation
// here means a generator or resolver bug, never a normal outcome, so findings
// are always surfaced alongside the report.
package audit

import (
	"fmt"
	"sort"

	"github.com/appengine-ltd/ordgen/internal/catalog"
	"github.com/appengine-ltd/ordgen/internal/engine"
)

// Rule identifies which invariant a violation breaks.
type Rule string

const (
	RuleForbiddenPair   Rule = "forbidden_pair"
	RuleMissingRequired Rule = "missing_required"
	RuleDuplicateItem   Rule = "duplicate_item"
)

// Violation names one broken rule on one item.
type Violation struct {
	Item   int
	Rule   Rule
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("item %d: %s: %s", v.Item, v.Rule, v.Detail)
}

// Validate re-derives every invariant over the finished collection: no
// forbidden pair inside an item, every required set satisfied, no two items
// identical. Pure function of its inputs.
func Validate(items []engine.Item, cat *catalog.Catalog) []Violation {
	var violations []Violation

	seen := make(map[string]int, len(items))
	for i, item := range items {
		key := item.Key()
		if first, dup := seen[key]; dup {
			violations = append(violations, Violation{
				Item:   i,
				Rule:   RuleDuplicateItem,
				Detail: fmt.Sprintf("identical to item %d", first),
			})
		} else {
			seen[key] = i
		}

		traits := item.Traits()
		present := make(map[int]bool, len(traits))
		for _, t := range traits {
			present[t.ID] = true
		}

		for _, t := range traits {
			for id := range t.Forbidden {
				if present[id] && id > t.ID {
					other, _ := cat.Trait(id)
					violations = append(violations, Violation{
						Item:   i,
						Rule:   RuleForbiddenPair,
						Detail: fmt.Sprintf("%s (%d) co-occurs with forbidden %s (%d)", t.Name, t.ID, other.Name, id),
					})
				}
			}
			for id := range t.Required {
				if !present[id] {
					other, _ := cat.Trait(id)
					name := fmt.Sprintf("trait %d", id)
					if other != nil {
						name = fmt.Sprintf("%s (%d)", other.Name, id)
					}
					violations = append(violations, Violation{
						Item:   i,
						Rule:   RuleMissingRequired,
						Detail: fmt.Sprintf("%s (%d) requires missing %s", t.Name, t.ID, name),
					})
				}
			}
		}
	}

	// Deterministic order regardless of map iteration, so repeated runs over
	// the same collection compare equal.
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Item != violations[j].Item {
			return violations[i].Item < violations[j].Item
		}
		if violations[i].Rule != violations[j].Rule {
			return violations[i].Rule < violations[j].Rule
		}
		return violations[i].Detail < violations[j].Detail
	})
	return violations
}
