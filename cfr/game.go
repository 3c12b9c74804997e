// Package cfr implements Counterfactual Regret Minimization for small
// two-player zero-sum imperfect-information extensive-form games with a
// chance player. The solver is game-agnostic: callers plug in a type
// implementing Node and get back a converging average policy.
package cfr

import "cmp"

// Player identifies whose turn it is to act at a node.
type Player int

const (
	Player0 Player = 0
	Player1 Player = 1
	// Chance is a sentinel outside {Player0, Player1} representing nature's
	// moves (e.g. dealing cards).
	Chance Player = 2
)

// Opponent returns the other non-chance player. Calling it with Chance is a
// programming error.
func (p Player) Opponent() Player {
	if p != Player0 && p != Player1 {
		panic("cfr: Opponent called on a non-player (chance) identifier")
	}
	return 1 - p
}

// Node is the contract a game must satisfy to be solved by this package.
// A is the game's action type: it is required to be ordered, not merely
// comparable, so the solver can derive a canonical iteration order over any
// set of actions it is handed (a Go map's range order is randomized per
// iteration and is not a function of the RNG stream alone, which would
// silently break reproducibility between two identically seeded runs).
// Games are expected to define A as a small enum of an ordered underlying
// type such as int. Implementations must be side-effect free: Child returns
// a new node and must not mutate the receiver (functional update), since the
// solver may revisit a node's siblings after descending into it.
type Node[A cmp.Ordered] interface {
	// State returns an information-set identifier for the currently active
	// non-chance player. Two nodes that are indistinguishable to that player
	// must return equal strings. Undefined when ActivePlayer is Chance.
	State() string

	// IsTerminal reports whether this node ends the game.
	IsTerminal() bool

	// Payoffs returns the terminal payoffs for Player0 and Player1. Only
	// valid when IsTerminal is true.
	Payoffs() [2]float64

	// LegalActions returns the non-empty ordered set of actions available at
	// this node. Must not be called on terminal nodes.
	LegalActions() []A

	// ChanceProbabilities returns the probability of each action when
	// ActivePlayer is Chance. Values must be > 0 and sum to 1. Must not be
	// called when ActivePlayer is not Chance.
	ChanceProbabilities() map[A]float64

	// ActivePlayer returns the player to act at this node.
	ActivePlayer() Player

	// Child returns the successor reached by playing action a. The receiver
	// must be left unaffected.
	Child(a A) Node[A]
}

// GameError distinguishes misuse of the Node contract (programming errors in
// a game implementation) from domain errors raised by the game itself.
// Misuse is fail-fast: the solver panics rather than attempting to recover,
// since a game that violates its own contract cannot produce a meaningful
// equilibrium.
type GameError struct {
	Op  string
	Msg string
}

func (e *GameError) Error() string {
	return "cfr: " + e.Op + ": " + e.Msg
}

func misuse(op, msg string) {
	panic(&GameError{Op: op, Msg: msg})
}
