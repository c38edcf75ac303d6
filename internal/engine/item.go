package engine

import (
	"strconv"
	"strings"

	"github.com/appengine-ltd/ordgen/internal/catalog"
)

// Choice is the selection made for one category: a trait, or none.
type Choice struct {
	Trait *catalog.Trait
	None  bool
}

// Item is one accepted collection member. Choices are indexed by category
// position in layering-rank order and immutable once the item is accepted.
type Item struct {
	Choices []Choice
}

// Key returns the canonical uniqueness key of the item. Two items are
// duplicates iff their keys are equal; the none choice is distinct from every
// trait.
func (it Item) Key() string {
	var b strings.Builder
	for i, ch := range it.Choices {
		if i > 0 {
			b.WriteByte('|')
		}
		if ch.None || ch.Trait == nil {
			b.WriteString("-")
			continue
		}
		b.WriteString(strconv.Itoa(ch.Trait.ID))
	}
	return b.String()
}

// Traits returns the trait choices present in the item, skipping none slots.
func (it Item) Traits() []*catalog.Trait {
	out := make([]*catalog.Trait, 0, len(it.Choices))
	for _, ch := range it.Choices {
		if !ch.None && ch.Trait != nil {
			out = append(out, ch.Trait)
		}
	}
	return out
}
