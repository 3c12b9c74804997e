package main

import (
	"math"

	"github.com/lox/cfr-solver/cfr"
	"github.com/lox/cfr-solver/games/kuhn"
)

// CheckResult is one canned equilibrium check's outcome: the value the
// trained policy actually produced, a human-readable description of the
// expected value or relation, and whether it fell within the configured
// delta.
type CheckResult struct {
	Name string
	Got  float64
	Want string
	Pass bool
}

func prob(policy map[string]map[string]float64, state, action string) float64 {
	dist, ok := policy[state]
	if !ok {
		return 0
	}
	return dist[action]
}

func within(got, want, delta float64) bool {
	return math.Abs(got-want) <= delta
}

// checkKuhnEquilibrium checks a trained average policy against the known
// structure of Kuhn poker's equilibrium manifold (Kuhn 1950; see also the
// Wikipedia writeup of the solved game). The manifold is parameterized by
// alpha = P(player 1 bets a Jack) in [0, 1/3], so most of the checks below
// are stated as relations that hold for every alpha rather than pinning one
// point on the manifold; only player 2's policy and a handful of "always
// fold/call/bet" corners are pinned outright.
func checkKuhnEquilibrium(policy map[string]map[string]float64, delta float64) []CheckResult {
	betJack := prob(policy, "JACK", kuhn.Bet.String())
	betQueen := prob(policy, "QUEEN", kuhn.Bet.String())
	betKing := prob(policy, "KING", kuhn.Bet.String())

	callQueenAfterBet := prob(policy, "QUEEN|"+kuhn.Bet.String(), kuhn.Call.String())
	callKingAfterCheckBet := prob(policy, "KING|"+kuhn.Check.String()+", "+kuhn.Bet.String(), kuhn.Call.String())

	betJackAfterCheck := prob(policy, "JACK|"+kuhn.Check.String(), kuhn.Bet.String())
	betKingAfterCheck := prob(policy, "KING|"+kuhn.Check.String(), kuhn.Bet.String())
	callQueenAfterCheckBet := prob(policy, "QUEEN|"+kuhn.Check.String()+", "+kuhn.Bet.String(), kuhn.Call.String())
	callJackAfterBet := prob(policy, "JACK|"+kuhn.Bet.String(), kuhn.Call.String())
	callKingAfterBet := prob(policy, "KING|"+kuhn.Bet.String(), kuhn.Call.String())

	results := []CheckResult{
		{
			Name: "player1 bets a jack within the bluffing range",
			Got:  betJack,
			Want: "in [0, 1/3]",
			Pass: betJack >= -delta && betJack <= 1.0/3.0+delta,
		},
		{
			Name: "player1 never bets a queen",
			Got:  betQueen,
			Want: "0",
			Pass: within(betQueen, 0, delta),
		},
		{
			Name: "player1 bets a king three times as often as a jack",
			Got:  betKing,
			Want: "3 * bet(jack)",
			Pass: within(betKing, 3*betJack, 5*delta),
		},
		{
			Name: "player2 always calls a bet holding a king",
			Got:  callKingAfterBet,
			Want: "1",
			Pass: within(callKingAfterBet, 1, delta),
		},
		{
			Name: "player2 never calls a bet holding a jack",
			Got:  callJackAfterBet,
			Want: "0",
			Pass: within(callJackAfterBet, 0, delta),
		},
		{
			Name: "player1 calling a check-then-bet with a queen tracks the jack bluff rate",
			Got:  callQueenAfterCheckBet,
			Want: "bet(jack) + 1/3",
			Pass: within(callQueenAfterCheckBet, betJack+1.0/3.0, delta),
		},
		{
			Name: "player1 always calls a check-then-bet holding a king",
			Got:  callKingAfterCheckBet,
			Want: "1",
			Pass: within(callKingAfterCheckBet, 1, delta),
		},
		{
			Name: "player2 bets a jack after a check one third of the time",
			Got:  betJackAfterCheck,
			Want: "1/3",
			Pass: within(betJackAfterCheck, 1.0/3.0, delta),
		},
		{
			Name: "player2 always bets a king after a check",
			Got:  betKingAfterCheck,
			Want: "1",
			Pass: within(betKingAfterCheck, 1, delta),
		},
		{
			Name: "player2 calls a bet holding a queen one third of the time",
			Got:  callQueenAfterBet,
			Want: "1/3",
			Pass: within(callQueenAfterBet, 1.0/3.0, delta),
		},
	}
	return results
}

// bestResponseValue computes the expected payoff for brPlayer when it plays
// an exact best response, chance follows the node's ChanceProbabilities, and
// the other player follows the fixed distribution recorded in policy. Any
// legal action with no recorded probability (including every action of an
// information set the trained policy never visited) is given the uniform
// probability 1/len(legal), mirroring Table.CurrentPolicy's own uniform
// fallback.
func bestResponseValue(node cfr.Node[kuhn.Action], brPlayer cfr.Player, policy map[string]map[string]float64) float64 {
	if node.IsTerminal() {
		return node.Payoffs()[brPlayer]
	}

	active := node.ActivePlayer()
	if active == cfr.Chance {
		total := 0.0
		for a, p := range node.ChanceProbabilities() {
			if p == 0 {
				continue
			}
			total += p * bestResponseValue(node.Child(a), brPlayer, policy)
		}
		return total
	}

	legal := node.LegalActions()
	if active == brPlayer {
		best := math.Inf(-1)
		for _, a := range legal {
			v := bestResponseValue(node.Child(a), brPlayer, policy)
			if v > best {
				best = v
			}
		}
		return best
	}

	dist, ok := policy[node.State()]
	uniform := 1.0 / float64(len(legal))
	total := 0.0
	for _, a := range legal {
		p := uniform
		if ok {
			if v, found := dist[a.String()]; found {
				p = v
			}
		}
		total += p * bestResponseValue(node.Child(a), brPlayer, policy)
	}
	return total
}

// bestResponseExploitability returns the standard zero-sum exploitability
// metric for a trained policy: the average of each player's best-response
// value against the other's fixed strategy, computed by exact enumeration
// of the (tiny) Kuhn poker tree. It converges to zero as the policy
// approaches a Nash equilibrium.
func bestResponseExploitability(policy map[string]map[string]float64) float64 {
	br0 := bestResponseValue(kuhn.New(), cfr.Player0, policy)
	br1 := bestResponseValue(kuhn.New(), cfr.Player1, policy)
	return (br0 + br1) / 2
}
