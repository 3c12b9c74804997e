package cfr

import "cmp"

// entry holds the cumulative regret and cumulative strategy weight for every
// action that has been observed at one information set. Both maps are
// sparse: an action is keyed only once something has touched it, and the
// set of keyed actions is always a subset of the legal actions at any node
// sharing this information set (new actions are added to both maps the
// first time they are seen).
type entry[A cmp.Ordered] struct {
	regret   map[A]float64
	strategy map[A]float64
}

func newEntry[A cmp.Ordered]() *entry[A] {
	return &entry[A]{
		regret:   make(map[A]float64),
		strategy: make(map[A]float64),
	}
}

// Table is the regret/strategy store described in spec §4.1: two sparse
// tables keyed by (information-set string, action), grown monotonically as
// traverse visits new nodes. It is grounded on sdk/solver/regret.go's
// RegretEntry/RegretTable, generalized from a fixed poker-bucket key and
// float64 slice axis to a generic action type keyed by map, and stripped of
// the teacher's sharded-mutex concurrency (the CFR spec is single-threaded
// by design, §5 — a solver's tables have exactly one owner for its
// lifetime).
type Table[A cmp.Ordered] struct {
	entries map[string]*entry[A]
}

// NewTable returns an empty table ready for use.
func NewTable[A cmp.Ordered]() *Table[A] {
	return &Table[A]{entries: make(map[string]*entry[A])}
}

func (t *Table[A]) get(s string) *entry[A] {
	e, ok := t.entries[s]
	if !ok {
		e = newEntry[A]()
		t.entries[s] = e
	}
	return e
}

// CurrentPolicy derives a probability distribution over legal from the
// accumulated regret at information set s via regret matching: actions with
// positive regret get probability proportional to that regret; if no action
// has positive regret, the distribution is uniform over legal. Actions
// absent from the regret table are treated as having zero regret.
func (t *Table[A]) CurrentPolicy(s string, legal []A) map[A]float64 {
	if len(legal) == 0 {
		misuse("CurrentPolicy", "legal actions must be non-empty")
	}
	e := t.entries[s]

	total := 0.0
	positive := make(map[A]float64, len(legal))
	for _, a := range legal {
		r := 0.0
		if e != nil {
			r = e.regret[a]
		}
		if r > 0 {
			positive[a] = r
			total += r
		}
	}

	policy := make(map[A]float64, len(legal))
	if total > 0 {
		for _, a := range legal {
			policy[a] = positive[a] / total
		}
		return policy
	}

	uniform := 1.0 / float64(len(legal))
	for _, a := range legal {
		policy[a] = uniform
	}
	return policy
}

// AveragePolicy normalizes the cumulative strategy weight recorded for s,
// falling back to uniform over the actions that have been recorded if the
// sum is zero. If nothing has been recorded yet for s, it returns an empty
// map.
func (t *Table[A]) AveragePolicy(s string) map[A]float64 {
	e := t.entries[s]
	if e == nil || len(e.strategy) == 0 {
		return map[A]float64{}
	}

	total := 0.0
	for _, w := range e.strategy {
		total += w
	}

	policy := make(map[A]float64, len(e.strategy))
	if total <= 0 {
		uniform := 1.0 / float64(len(e.strategy))
		for a := range e.strategy {
			policy[a] = uniform
		}
		return policy
	}
	for a, w := range e.strategy {
		policy[a] = w / total
	}
	return policy
}

// FullPolicy returns the average policy for every information set with any
// recorded strategy mass.
func (t *Table[A]) FullPolicy() map[string]map[A]float64 {
	out := make(map[string]map[A]float64, len(t.entries))
	for s, e := range t.entries {
		if len(e.strategy) == 0 {
			continue
		}
		out[s] = t.AveragePolicy(s)
	}
	return out
}

// Update accumulates an instantaneous regret and the current policy's
// probability for action a at information set s, weighted by reach (the
// counterfactual reach probability of the other player and chance). When
// rmPlus is set, the cumulative regret is clamped at zero after the update
// (regret-matching+), keeping R[s][a] >= 0 at all times.
func (t *Table[A]) Update(s string, a A, regret, policyProb, reach float64, rmPlus bool) {
	e := t.get(s)
	e.regret[a] += regret * reach
	if rmPlus && e.regret[a] < 0 {
		e.regret[a] = 0
	}
	e.strategy[a] += policyProb * reach
}

// Size returns the number of information sets with any recorded state,
// primarily for progress reporting.
func (t *Table[A]) Size() int {
	return len(t.entries)
}
