// Package kuhn implements Kuhn poker, the canonical small poker game used to
// validate CFR implementations against known closed-form equilibria. It is
// a test/example collaborator for the cfr package, not part of the solver
// core (spec.md §1 lists concrete games as deliberately out of scope for
// the core), and is grounded line-for-line on
// original_source/src/dd_cfr/games/kuhn_poker.py.
package kuhn

import (
	"fmt"
	"strings"

	"github.com/lox/cfr-solver/cfr"
)

// Action enumerates both the chance player's card deals and the two
// players' betting moves; Kuhn poker only ever needs one small action
// space, so unlike the Python original's separate Action/ChanceAction
// enums, a single Go type suffices for cfr.Node[Action]'s one type
// parameter.
type Action int

const (
	DealJack Action = iota
	DealQueen
	DealKing
	Check
	Bet
	Call
	Fold
)

func (a Action) String() string {
	switch a {
	case DealJack:
		return "JACK"
	case DealQueen:
		return "QUEEN"
	case DealKing:
		return "KING"
	case Check:
		return "CHECK"
	case Bet:
		return "BET"
	case Call:
		return "CALL"
	case Fold:
		return "FOLD"
	default:
		return "UNKNOWN"
	}
}

var deck = [3]Action{DealJack, DealQueen, DealKing}

func rank(card Action) int {
	switch card {
	case DealJack:
		return 0
	case DealQueen:
		return 1
	case DealKing:
		return 2
	default:
		panic(fmt.Sprintf("kuhn: not a card: %v", card))
	}
}

type move struct {
	player cfr.Player
	action Action
}

// State is a single Kuhn poker node: the cards dealt so far (chance's
// moves) followed by the history of player actions.
type State struct {
	cards   []Action
	history []move
}

// New returns a fresh deal-pending root node.
func New() *State {
	return &State{}
}

var _ cfr.Node[Action] = (*State)(nil)

func (s *State) ActivePlayer() cfr.Player {
	if len(s.cards) < 2 {
		return cfr.Chance
	}
	if len(s.history) == 0 {
		return cfr.Player0
	}
	return s.history[len(s.history)-1].player.Opponent()
}

func (s *State) IsTerminal() bool {
	if len(s.cards) < 2 {
		return false
	}
	n := len(s.history)
	if n == 3 {
		return true
	}
	return n == 2 && s.history[n-1].action != Bet
}

func (s *State) Payoffs() [2]float64 {
	winner := s.winner()
	amount := 1.0
	for _, m := range s.history {
		if m.action == Call {
			amount = 2
		}
	}
	payoffs := [2]float64{}
	payoffs[winner] = amount
	payoffs[winner.Opponent()] = -amount
	return payoffs
}

func (s *State) winner() cfr.Player {
	last := s.history[len(s.history)-1]
	if last.action == Fold {
		return last.player.Opponent()
	}
	if rank(s.cards[0]) > rank(s.cards[1]) {
		return cfr.Player0
	}
	return cfr.Player1
}

func (s *State) LegalActions() []Action {
	if len(s.history) == 0 || s.history[len(s.history)-1].action == Check {
		return []Action{Check, Bet}
	}
	if s.history[len(s.history)-1].action == Bet {
		return []Action{Call, Fold}
	}
	panic(fmt.Sprintf("kuhn: no legal actions after history %v", s.history))
}

func (s *State) ChanceProbabilities() map[Action]float64 {
	remaining := make(map[Action]float64)
	for _, c := range deck {
		dealt := false
		for _, held := range s.cards {
			if held == c {
				dealt = true
				break
			}
		}
		if !dealt {
			remaining[c] = 0
		}
	}
	p := 1.0 / float64(len(remaining))
	for c := range remaining {
		remaining[c] = p
	}
	return remaining
}

// State returns the active player's observation: their own card, followed
// by the betting history rendered as action names, e.g. "KING|BET".
func (s *State) State() string {
	active := s.ActivePlayer()
	if int(active) >= len(s.cards) {
		return ""
	}
	hist := make([]string, len(s.history))
	for i, m := range s.history {
		hist[i] = m.action.String()
	}
	card := s.cards[active].String()
	if len(hist) == 0 {
		return card
	}
	return card + "|" + strings.Join(hist, ", ")
}

func (s *State) Child(a Action) cfr.Node[Action] {
	next := &State{
		cards:   append([]Action(nil), s.cards...),
		history: append([]move(nil), s.history...),
	}
	if s.ActivePlayer() == cfr.Chance {
		next.cards = append(next.cards, a)
	} else {
		next.history = append(next.history, move{player: s.ActivePlayer(), action: a})
	}
	return next
}
