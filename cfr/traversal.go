package cfr

import (
	"cmp"
	"slices"
)

// reach holds the reach probability of each player plus chance, indexed by
// Player (Chance occupies index 2). Multiplying the acting player's
// component as the recursion descends keeps per-player and chance reach
// separated so the regret update can weight by counterfactual reach alone.
type reach [3]float64

func (r reach) with(p Player, factor float64) reach {
	next := r
	next[p] *= factor
	return next
}

// counterfactual returns the product of every reach component except the
// acting player's own — the weight spec §4.3 step 6 calls the
// counterfactual reach, deliberately excluding reach[p].
func (r reach) counterfactual(p Player) float64 {
	switch p {
	case Player0:
		return r[Player1] * r[Chance]
	case Player1:
		return r[Player0] * r[Chance]
	default:
		misuse("counterfactual", "must not be called for the chance player")
		return 0
	}
}

// sortedActions returns m's keys in a canonical, deterministic order. Unlike
// ranging m directly (Go randomizes map iteration order on every execution),
// this makes the order a pure function of the keys themselves, which is what
// lets two identically seeded traversals consume their RNG stream and
// accumulate floating-point sums in the same sequence.
func sortedActions[A cmp.Ordered](m map[A]float64) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// traverse implements the recursive descent of spec §4.3. It is grounded on
// sdk/solver/traversal.go's Trainer.traverse: the teacher's fixed-domain
// version walks a poker hand directly; this generalizes the same shape
// (query current policy, sample children, recurse, fold results back into a
// node value, push regret updates post-order) over any Node[A]. order fixes
// a canonical action sequence for this node, sourced from LegalActions for a
// player node (already an ordered slice) or derived by sorting the chance
// node's action set; every loop below walks order instead of ranging a map,
// so that two identically seeded solvers draw from the RNG and accumulate
// floating-point sums in lockstep (spec §8's bit-identical determinism
// property).
func traverse[A cmp.Ordered](node Node[A], traversalPlayer Player, r reach, samplingProb float64, table *Table[A], sampler *Sampler[A], rmPlus bool) [2]float64 {
	if node.IsTerminal() {
		return node.Payoffs()
	}

	p := node.ActivePlayer()

	var policy map[A]float64
	var order []A
	if p == Chance {
		policy = node.ChanceProbabilities()
		if len(policy) == 0 {
			misuse("traverse", "chance node returned no actions")
		}
		order = sortedActions(policy)
	} else {
		legal := node.LegalActions()
		if len(legal) == 0 {
			misuse("traverse", "non-terminal non-chance node has no legal actions")
		}
		policy = table.CurrentPolicy(node.State(), legal)
		order = legal
	}

	sampled := sampler.Select(policy, order, p == traversalPlayer)

	rewards := make(map[A][2]float64, len(sampled))
	var value [2]float64
	for _, a := range order {
		s, ok := sampled[a]
		if !ok {
			continue
		}
		var nextReach reach
		if p == Chance {
			nextReach = r.with(Chance, s.PolicyProb)
		} else {
			nextReach = r.with(p, s.PolicyProb)
		}
		child := node.Child(a)
		v := traverse(child, traversalPlayer, nextReach, samplingProb*s.SamplingProb, table, sampler, rmPlus)
		rewards[a] = v
		value[0] += s.PolicyProb * v[0]
		value[1] += s.PolicyProb * v[1]
	}

	if p != Chance {
		cfReach := r.counterfactual(p)
		for _, a := range order {
			s, ok := sampled[a]
			if !ok {
				continue
			}
			instant := (rewards[a][p] - value[p]) / samplingProb
			table.Update(node.State(), a, instant, s.PolicyProb, cfReach, rmPlus)
		}
	}

	return value
}
