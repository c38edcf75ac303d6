package engine

import "github.com/appengine-ltd/ordgen/internal/catalog"

// resolver decides whether a candidate trait is legal against a partial item
// and derives the assignments a choice forces on still-unvisited categories.
type resolver struct {
	cat *catalog.Catalog
}

// compatible reports whether the candidate co-exists with every trait already
// present (committed or pinned). Forbids are symmetric after catalog load, so
// a single direction is checked.
func (r resolver) compatible(present map[int]*catalog.Trait, t *catalog.Trait) bool {
	for id := range t.Forbidden {
		if _, taken := present[id]; taken {
			return false
		}
	}
	return true
}

// propagate resolves the candidate's required set, transitively, into pinned
// assignments for categories after pos. It returns ok=false on any dead end: a
// requirement pointing at an already-decided category holding a different
// choice, a collision with an existing pin, or a forced trait forbidden by
// anything already present. The forced map only contains new pins.
func (r resolver) propagate(pos int, t *catalog.Trait, committed []Choice, pins map[int]*catalog.Trait) (forced map[int]*catalog.Trait, ok bool) {
	forced = make(map[int]*catalog.Trait)

	present := make(map[int]*catalog.Trait)
	for _, ch := range committed {
		if !ch.None && ch.Trait != nil {
			present[ch.Trait.ID] = ch.Trait
		}
	}
	for _, pinned := range pins {
		present[pinned.ID] = pinned
	}
	present[t.ID] = t

	queue := []*catalog.Trait{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for id := range cur.Required {
			req, found := r.cat.Trait(id)
			if !found {
				return nil, false
			}
			owner, _ := r.cat.CategoryOf(id)
			at, _ := r.cat.Position(owner.Name)

			switch {
			case at == pos && req.ID != t.ID:
				// Requirements inside the candidate's own category are
				// rejected at catalog load; a hit here is a dead end.
				return nil, false
			case at < pos:
				ch := committed[at]
				if ch.None || ch.Trait == nil || ch.Trait.ID != req.ID {
					return nil, false
				}
			case at > pos:
				if existing, pinned := pins[at]; pinned && existing.ID != req.ID {
					return nil, false
				}
				if existing, pinned := forced[at]; pinned && existing.ID != req.ID {
					return nil, false
				}
				if _, already := present[req.ID]; already {
					continue
				}
				if !r.compatible(present, req) {
					return nil, false
				}
				forced[at] = req
				present[req.ID] = req
				queue = append(queue, req)
			}
		}
	}
	return forced, true
}
