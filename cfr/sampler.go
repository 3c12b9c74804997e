package cfr

import (
	"cmp"
	"math/rand/v2"
)

// SamplingMode selects how the traversal engine explores a node's children.
type SamplingMode int

const (
	// Full expands every action at every node (vanilla CFR).
	Full SamplingMode = iota
	// External expands every action for the traversal player, but samples a
	// single action at every other node (including chance).
	External
	// Outcome samples a single action at every node, traversal player
	// included, walking exactly one trajectory per iteration.
	Outcome
)

func (m SamplingMode) String() string {
	switch m {
	case Full:
		return "full"
	case External:
		return "external"
	case Outcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// Sampled is the pair of probabilities the sampler reports for each action
// it selects: the action's probability under the node's policy, and the
// probability with which the sampler itself chose to explore it.
type Sampled struct {
	PolicyProb   float64
	SamplingProb float64
}

// Sampler implements the action-selection rules of spec §4.2. It is
// grounded on sdk/solver/traversal.go's sampleStrategyIndex (single-action
// draw from a normalized distribution) and on its
// SamplingModeFullTraversal branch (expand-everything), generalized from
// the teacher's two-mode enum to the spec's three modes — OUTCOME is
// grounded on 13jqq-go-cfr/robust_sampling.go, which likewise samples every
// node type, player and chance alike, along a single trajectory.
type Sampler[A cmp.Ordered] struct {
	Mode    SamplingMode
	Epsilon float64
	RNG     *rand.Rand
}

// NewSampler returns a Sampler with the given mode, epsilon floor and RNG.
func NewSampler[A cmp.Ordered](mode SamplingMode, epsilon float64, rng *rand.Rand) *Sampler[A] {
	if epsilon <= 0 || epsilon > 1 {
		misuse("NewSampler", "epsilon must be in (0, 1]")
	}
	return &Sampler[A]{Mode: mode, Epsilon: epsilon, RNG: rng}
}

// Select returns the subset of actions to explore at a node whose policy is
// policy, given whether this node belongs to the traversal player for the
// current iteration. order fixes the canonical iteration sequence over
// policy's keys: selectOne's weighted draw consumes the RNG stream while
// walking that sequence, so two identically seeded samplers must walk it in
// the same order to produce bit-identical draws. A plain map range would not
// do that — Go randomizes map iteration order on every execution.
func (s *Sampler[A]) Select(policy map[A]float64, order []A, isTraversalPlayer bool) map[A]Sampled {
	switch s.Mode {
	case Full:
		return s.selectAll(policy, order)
	case External:
		if isTraversalPlayer {
			return s.selectAll(policy, order)
		}
		return s.selectOne(policy, order)
	case Outcome:
		return s.selectOne(policy, order)
	default:
		misuse("Select", "unsupported sampling mode")
		return nil
	}
}

func (s *Sampler[A]) selectAll(policy map[A]float64, order []A) map[A]Sampled {
	out := make(map[A]Sampled, len(order))
	for _, a := range order {
		out[a] = Sampled{PolicyProb: policy[a], SamplingProb: 1}
	}
	return out
}

// selectOne draws a single action according to q(a) = w(a)/W, where
// w(a) = max(policy(a), epsilon). Every action with policy(a) > 0 therefore
// has positive sampling probability, which is what keeps the regret
// estimate unbiased under importance-sampling correction. The weights slice
// is built by walking order rather than ranging policy directly, so the
// cumulative sum r is tested against is a deterministic function of order
// and the RNG draw alone.
func (s *Sampler[A]) selectOne(policy map[A]float64, order []A) map[A]Sampled {
	type weighted struct {
		action A
		policy float64
		weight float64
	}
	weights := make([]weighted, 0, len(order))
	total := 0.0
	for _, a := range order {
		p := policy[a]
		w := p
		if w < s.Epsilon {
			w = s.Epsilon
		}
		weights = append(weights, weighted{action: a, policy: p, weight: w})
		total += w
	}

	// Unreachable under epsilon > 0 (every weight is at least epsilon), kept
	// defensively per spec §9's note that the source does the same.
	if total <= 0 {
		n := len(weights)
		idx := s.RNG.IntN(n)
		chosen := weights[idx]
		return map[A]Sampled{chosen.action: {PolicyProb: chosen.policy, SamplingProb: 1.0 / float64(n)}}
	}

	r := s.RNG.Float64() * total
	acc := 0.0
	for _, w := range weights {
		acc += w.weight
		if r <= acc {
			return map[A]Sampled{w.action: {PolicyProb: w.policy, SamplingProb: w.weight / total}}
		}
	}
	// Floating point edge case: fall back to the last action.
	last := weights[len(weights)-1]
	return map[A]Sampled{last.action: {PolicyProb: last.policy, SamplingProb: last.weight / total}}
}
