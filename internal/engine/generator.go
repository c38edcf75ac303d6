package engine

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/appengine-ltd/ordgen/internal/catalog"
)

const (
	// DefaultBacktrackBudget bounds backtrack steps within one item attempt.
	DefaultBacktrackBudget = 250
	// DefaultRestartBudget bounds full restarts of one item before it is
	// declared infeasible.
	DefaultRestartBudget = 10000
)

// Status is the overall outcome of a generation run.
type Status int

const (
	Completed Status = iota
	PartiallyCompleted
)

func (s Status) String() string {
	if s == Completed {
		return "completed"
	}
	return "partially_completed"
}

// RunStats counts the search effort spent during a run. Per-item failures are
// contained here rather than surfaced as errors.
type RunStats struct {
	Backtracks int
	Restarts   int
	Duplicates int
}

// Result is the frozen output of a run: the generated items in final order
// plus the outcome and search statistics.
type Result struct {
	Items  []Item
	Status Status
	Reason string
	Stats  RunStats
}

// Options configure a Generator. Zero values select the defaults.
type Options struct {
	// Seed fixes the randomness source; 0 derives one from the clock.
	Seed            int64
	BacktrackBudget int
	RestartBudget   int
	// Weighting overrides declared-weight sampling, e.g. QuotaWeighting.
	Weighting Weighting
	// Shuffle randomizes the final item order. Recommended with
	// QuotaWeighting, whose endgame draws skew toward under-used traits.
	Shuffle bool
}

// Generator builds items one at a time, category by category in layering-rank
// order, backtracking out of dead ends and restarting attempts within
// configured budgets.
type Generator struct {
	cat      *catalog.Catalog
	opts     Options
	rng      *rand.Rand
	sampler  sampler
	resolver resolver
}

func New(cat *catalog.Catalog, opts Options) *Generator {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.BacktrackBudget <= 0 {
		opts.BacktrackBudget = DefaultBacktrackBudget
	}
	if opts.RestartBudget <= 0 {
		opts.RestartBudget = DefaultRestartBudget
	}
	if opts.Weighting == nil {
		opts.Weighting = StaticWeighting(cat)
	}
	rng := seededRNG(opts.Seed)
	return &Generator{
		cat:      cat,
		opts:     opts,
		rng:      rng,
		sampler:  sampler{rng: rng, weighting: opts.Weighting},
		resolver: resolver{cat: cat},
	}
}

// Generate produces up to n unique items. It returns PartiallyCompleted, not
// an error, when the search budgets run out before n items exist.
func (g *Generator) Generate(n int) Result {
	res := Result{Items: make([]Item, 0, n), Status: Completed}
	keys := make(map[string]bool, n)

	for len(res.Items) < n {
		item, ok := g.buildItem(keys, &res.Stats)
		if !ok {
			res.Status = PartiallyCompleted
			res.Reason = fmt.Sprintf(
				"gave up after %d of %d items: restart budget (%d) exhausted; the catalog may not have enough legal combinations",
				len(res.Items), n, g.opts.RestartBudget)
			break
		}
		keys[item.Key()] = true
		res.Items = append(res.Items, item)
		g.opts.Weighting.Record(item)
	}

	if g.opts.Shuffle {
		g.rng.Shuffle(len(res.Items), func(i, j int) {
			res.Items[i], res.Items[j] = res.Items[j], res.Items[i]
		})
	}
	return res
}

// buildItem runs bounded attempts until one yields a new unique item.
func (g *Generator) buildItem(keys map[string]bool, stats *RunStats) (Item, bool) {
	attempts := g.opts.RestartBudget + 1
	for i := 0; i < attempts; i++ {
		if i > 0 {
			stats.Restarts++
		}
		if item, ok := g.attempt(keys, stats); ok {
			return item, true
		}
	}
	return Item{}, false
}

// frame is one entry of the explicit choice-point stack: the committed pick
// for a category, the exclusion state it was drawn under, and the pins the
// pick forced onto later categories.
type frame struct {
	pick         Choice
	excluded     map[int]bool
	noneExcluded bool
	pinnedHere   bool
	forced       []int
}

// attempt builds one complete item, or fails once the backtrack budget is
// spent or the root category is exhausted.
func (g *Generator) attempt(keys map[string]bool, stats *RunStats) (Item, bool) {
	groups := g.cat.Categories()
	k := len(groups)

	stack := make([]frame, 0, k)
	committed := make([]Choice, 0, k)
	pins := make(map[int]*catalog.Trait)
	excluded := make(map[int]bool)
	noneExcluded := false
	backtracks := 0

	retreat := func() bool {
		stats.Backtracks++
		backtracks++
		if backtracks > g.opts.BacktrackBudget {
			return false
		}
		ok := false
		stack, committed, excluded, noneExcluded, ok = unwind(stack, committed, pins)
		return ok
	}

	for {
		if len(stack) == k {
			item := Item{Choices: append([]Choice(nil), committed...)}
			if !keys[item.Key()] {
				return item, true
			}
			// A duplicate is a dead end at the last category: re-choosing a
			// suffix is cheaper than restarting the whole item.
			stats.Duplicates++
			if !retreat() {
				return Item{}, false
			}
			continue
		}

		pos := len(stack)
		group := groups[pos]

		if pinned, ok := pins[pos]; ok {
			pick := Choice{Trait: pinned}
			stack = append(stack, frame{pick: pick, pinnedHere: true})
			committed = append(committed, pick)
			excluded, noneExcluded = make(map[int]bool), false
			continue
		}

		pick, forced, found := g.chooseFor(pos, group, committed, pins, excluded, noneExcluded)
		if !found {
			if !retreat() {
				return Item{}, false
			}
			continue
		}

		forcedCats := make([]int, 0, len(forced))
		for at, req := range forced {
			pins[at] = req
			forcedCats = append(forcedCats, at)
		}
		stack = append(stack, frame{
			pick:         pick,
			excluded:     excluded,
			noneExcluded: noneExcluded,
			forced:       forcedCats,
		})
		committed = append(committed, pick)
		excluded, noneExcluded = make(map[int]bool), false
	}
}

// chooseFor draws candidates for one category until one passes the resolver,
// or the pool is exhausted.
func (g *Generator) chooseFor(pos int, group *catalog.Category, committed []Choice, pins map[int]*catalog.Trait, excluded map[int]bool, noneExcluded bool) (Choice, map[int]*catalog.Trait, bool) {
	for {
		t, none, ok := g.sampler.draw(group, excluded, noneExcluded)
		if !ok {
			return Choice{}, nil, false
		}
		if none {
			return Choice{None: true}, nil, true
		}
		if !g.resolver.compatible(presentTraits(committed, pins), t) {
			excluded[t.ID] = true
			continue
		}
		forced, ok := g.resolver.propagate(pos, t, committed, pins)
		if !ok {
			excluded[t.ID] = true
			continue
		}
		return Choice{Trait: t}, forced, true
	}
}

// unwind pops the stack to the most recent real choice point, releasing pins
// made along the way, and re-opens that category with the failed pick
// excluded.
func unwind(stack []frame, committed []Choice, pins map[int]*catalog.Trait) ([]frame, []Choice, map[int]bool, bool, bool) {
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		committed = committed[:len(committed)-1]
		for _, at := range f.forced {
			delete(pins, at)
		}
		if f.pinnedHere {
			continue
		}
		excluded := f.excluded
		noneExcluded := f.noneExcluded
		if f.pick.None {
			noneExcluded = true
		} else if f.pick.Trait != nil {
			excluded[f.pick.Trait.ID] = true
		}
		return stack, committed, excluded, noneExcluded, true
	}
	return stack, committed, nil, false, false
}

func presentTraits(committed []Choice, pins map[int]*catalog.Trait) map[int]*catalog.Trait {
	present := make(map[int]*catalog.Trait, len(committed)+len(pins))
	for _, ch := range committed {
		if !ch.None && ch.Trait != nil {
			present[ch.Trait.ID] = ch.Trait
		}
	}
	for _, t := range pins {
		present[t.ID] = t
	}
	return present
}
