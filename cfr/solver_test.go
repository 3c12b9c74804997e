package cfr

import (
	"math/rand/v2"
	"testing"
)

// coinAction is the action alphabet for a synthetic one-decision game: a
// chance node deals one of two cards, then player 0 chooses between two
// actions that are indistinguishable in payoff (both terminal nodes always
// pay 0-0). Regret never leaves zero for either action, so this game is the
// simplest possible fixture for asserting that regret matching's uniform
// fallback actually stays uniform under repeated play, independent of any
// domain-specific game logic.
type coinAction int

const (
	coinHeads coinAction = iota
	coinTails
	coinActA
	coinActB
)

type coinState struct {
	dealt bool
	acted bool
}

func newCoinGame() Node[coinAction] { return &coinState{} }

func (s *coinState) ActivePlayer() Player {
	if !s.dealt {
		return Chance
	}
	return Player0
}

func (s *coinState) IsTerminal() bool { return s.dealt && s.acted }

func (s *coinState) Payoffs() [2]float64 { return [2]float64{0, 0} }

func (s *coinState) LegalActions() []coinAction { return []coinAction{coinActA, coinActB} }

func (s *coinState) ChanceProbabilities() map[coinAction]float64 {
	return map[coinAction]float64{coinHeads: 0.5, coinTails: 0.5}
}

func (s *coinState) State() string { return "p0" }

func (s *coinState) Child(a coinAction) Node[coinAction] {
	next := *s
	if !s.dealt {
		next.dealt = true
	} else {
		next.acted = true
	}
	return &next
}

func TestSolveZeroIterationsLeavesPolicyEmpty(t *testing.T) {
	solver, err := NewSolver[coinAction](Config{Sampling: Full, Epsilon: 0.1, Seed: 1})
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	solver.Solve(newCoinGame, 0)
	if policy := solver.Policy(); len(policy) != 0 {
		t.Fatalf("expected empty policy after zero iterations, got %+v", policy)
	}
	if solver.Iteration() != 0 {
		t.Fatalf("expected iteration count 0, got %d", solver.Iteration())
	}
}

func TestSolveAdditionalZeroIterationsIsNoop(t *testing.T) {
	solver, err := NewSolver[coinAction](Config{Sampling: Full, Epsilon: 0.1, Seed: 1})
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	solver.Solve(newCoinGame, 50)
	before := solver.Policy()["p0"][coinActA]

	solver.Solve(newCoinGame, 0)
	after := solver.Policy()["p0"][coinActA]

	if abs(before-after) > 1e-12 {
		t.Fatalf("expected policy unchanged by a zero-iteration solve, got %v then %v", before, after)
	}
	if solver.Iteration() != 50 {
		t.Fatalf("expected iteration count unchanged at 50, got %d", solver.Iteration())
	}
}

func TestSolveDeterministicWithSameSeed(t *testing.T) {
	cfg := Config{Sampling: External, Epsilon: 0.1, Seed: 42}

	a, err := NewSolver[coinAction](cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	b, err := NewSolver[coinAction](cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}

	a.Solve(newCoinGame, 200)
	b.Solve(newCoinGame, 200)

	pa, pb := a.Policy(), b.Policy()
	if len(pa) != len(pb) {
		t.Fatalf("expected identical policy sizes, got %d vs %d", len(pa), len(pb))
	}
	for state, dist := range pa {
		for action, p := range dist {
			if q := pb[state][action]; abs(p-q) > 1e-12 {
				t.Fatalf("expected identical policy for %v/%v, got %v vs %v", state, action, p, q)
			}
		}
	}
}

// lopsidedAction backs a three-action, asymmetric-payoff fixture:
// coinAction's two symmetric actions happen to mask any bug that makes
// selection depend on map iteration order, since swapping their draw order
// can't change which action a symmetric game "prefers". This fixture's
// unequal payoffs and unequal chance split make such a bug visible.
type lopsidedAction int

const (
	lopsidedLow lopsidedAction = iota
	lopsidedHigh
	lopsidedFold
	lopsidedCall
	lopsidedRaise
)

type lopsidedState struct {
	dealt bool
	card  lopsidedAction
	acted bool
	act   lopsidedAction
}

func newLopsidedGame() Node[lopsidedAction] { return &lopsidedState{} }

func (s *lopsidedState) ActivePlayer() Player {
	if !s.dealt {
		return Chance
	}
	return Player0
}

func (s *lopsidedState) IsTerminal() bool { return s.dealt && s.acted }

func (s *lopsidedState) Payoffs() [2]float64 {
	switch {
	case s.card == lopsidedHigh && s.act == lopsidedRaise:
		return [2]float64{3, -3}
	case s.act == lopsidedFold:
		return [2]float64{-1, 1}
	default:
		return [2]float64{1, -1}
	}
}

func (s *lopsidedState) LegalActions() []lopsidedAction {
	return []lopsidedAction{lopsidedFold, lopsidedCall, lopsidedRaise}
}

func (s *lopsidedState) ChanceProbabilities() map[lopsidedAction]float64 {
	return map[lopsidedAction]float64{lopsidedLow: 0.2, lopsidedHigh: 0.8}
}

func (s *lopsidedState) State() string { return "p0" }

func (s *lopsidedState) Child(a lopsidedAction) Node[lopsidedAction] {
	next := *s
	if !s.dealt {
		next.dealt = true
		next.card = a
	} else {
		next.acted = true
		next.act = a
	}
	return &next
}

func TestSolveDeterministicWithAsymmetricActionsUnderSampling(t *testing.T) {
	for _, mode := range []SamplingMode{External, Outcome} {
		cfg := Config{Sampling: mode, Epsilon: 0.05, Seed: 99}

		a, err := NewSolver[lopsidedAction](cfg)
		if err != nil {
			t.Fatalf("NewSolver: %v", err)
		}
		b, err := NewSolver[lopsidedAction](cfg)
		if err != nil {
			t.Fatalf("NewSolver: %v", err)
		}

		a.Solve(newLopsidedGame, 500)
		b.Solve(newLopsidedGame, 500)

		pa, pb := a.Policy(), b.Policy()
		if len(pa) != len(pb) {
			t.Fatalf("%s: expected identical policy sizes, got %d vs %d", mode, len(pa), len(pb))
		}
		for state, dist := range pa {
			for action, p := range dist {
				if q := pb[state][action]; p != q {
					t.Fatalf("%s: expected bit-identical policy for %v/%v, got %v vs %v", mode, state, action, p, q)
				}
			}
		}
	}
}

func TestSolveUniformFallbackStaysUniform(t *testing.T) {
	solver, err := NewSolver[coinAction](Config{Sampling: Full, Epsilon: 0.1, RNG: rand.New(rand.NewPCG(7, 9))})
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	solver.Solve(newCoinGame, 500)

	current := solver.CurrentPolicy("p0", []coinAction{coinActA, coinActB})
	if abs(current[coinActA]-0.5) > 1e-9 || abs(current[coinActB]-0.5) > 1e-9 {
		t.Fatalf("expected current policy to remain uniform with zero regret, got %+v", current)
	}

	avg := solver.Policy()["p0"]
	if abs(avg[coinActA]-0.5) > 1e-9 || abs(avg[coinActB]-0.5) > 1e-9 {
		t.Fatalf("expected average policy to remain uniform with zero regret, got %+v", avg)
	}
}

func TestNewSolverRejectsInvalidEpsilon(t *testing.T) {
	_, err := NewSolver[coinAction](Config{Sampling: Full, Epsilon: 1.5})
	if err == nil {
		t.Fatal("expected validation error for epsilon outside (0, 1]")
	}
}

func TestDefaultConfigEpsilonAppliedWhenUnset(t *testing.T) {
	solver, err := NewSolver[coinAction](Config{Sampling: Full, Seed: 1})
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	solver.Solve(newCoinGame, 1)
	if solver.Iteration() != 1 {
		t.Fatalf("expected solver to run with defaulted epsilon, iteration=%d", solver.Iteration())
	}
}
