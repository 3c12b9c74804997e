package cfr

import (
	"cmp"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lox/cfr-solver/internal/randutil"
)

var validate = validator.New()

// Config holds the tunables of spec §4.4. Field-level constraints are
// declared with validator tags, grounded on perplext-LLMrecon's use of
// go-playground/validator for request validation; the cross-field defaults
// (seeding an RNG when none is supplied) are applied the way
// sdk/solver.NewTrainer seeds its RNG from TrainingConfig.Seed.
type Config struct {
	// Sampling selects FULL, EXTERNAL or OUTCOME traversal.
	Sampling SamplingMode
	// RegretMatchingPlus clamps cumulative regret at zero after every
	// update when true.
	RegretMatchingPlus bool
	// Epsilon is the sampler's minimum per-action sampling weight.
	Epsilon float64 `validate:"gt=0,lte=1"`
	// Seed deterministically seeds the internal RNG when RNG is nil. Zero
	// falls back to a time-derived seed, matching sdk/solver.NewTrainer.
	Seed int64
	// RNG, when set, is used instead of an internally seeded one so callers
	// can reproduce runs exactly.
	RNG *rand.Rand
}

// DefaultConfig returns the spec's defaults: full traversal, vanilla CFR,
// epsilon 0.05, internally seeded RNG.
func DefaultConfig() Config {
	return Config{
		Sampling:           Full,
		RegretMatchingPlus: false,
		Epsilon:            0.05,
	}
}

func (c Config) rng() *rand.Rand {
	if c.RNG != nil {
		return c.RNG
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return randutil.New(seed)
}

// Solver is the façade of spec §4.4: it owns the regret/strategy tables and
// the RNG, and drives iterations over a caller-supplied game factory.
// Grounded on sdk/solver.Trainer, with the teacher's ParallelTables
// goroutine fan-out removed — the spec's concurrency model (§5) is strictly
// single-threaded, and parallelism is an explicit Non-goal (§1).
type Solver[A cmp.Ordered] struct {
	cfg       Config
	table     *Table[A]
	sampler   *Sampler[A]
	rng       *rand.Rand
	iteration int
}

// NewSolver validates cfg and returns a fresh (untrained) solver.
func NewSolver[A cmp.Ordered](cfg Config) (*Solver[A], error) {
	if cfg.Epsilon == 0 {
		cfg.Epsilon = DefaultConfig().Epsilon
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	rng := cfg.rng()
	return &Solver[A]{
		cfg:     cfg,
		table:   NewTable[A](),
		sampler: NewSampler[A](cfg.Sampling, cfg.Epsilon, rng),
		rng:     rng,
	}, nil
}

// Iteration returns the number of completed solve iterations.
func (s *Solver[A]) Iteration() int {
	return s.iteration
}

// TableSize returns the number of information sets the store has seen so
// far, useful for progress reporting.
func (s *Solver[A]) TableSize() int {
	return s.table.Size()
}

// Solve runs iterations traversals, each starting from a freshly
// constructed game. Under FULL sampling the traversal player argument does
// not affect which actions are expanded (every node is expanded in full),
// so any value is passed; under EXTERNAL/OUTCOME sampling a fresh traversal
// player is drawn uniformly from {Player0, Player1} every iteration,
// matching sdk/solver.Trainer.singleIteration's per-player traversal loop
// collapsed to the single traversal player the spec's traverse signature
// takes. A game that panics with a *GameError, or returns one via a panic
// from its own domain logic, aborts the current iteration; prior iterations'
// updates are not rolled back (spec §7).
func (s *Solver[A]) Solve(factory func() Node[A], iterations int) {
	for i := 0; i < iterations; i++ {
		traversalPlayer := Player0
		if s.cfg.Sampling != Full {
			if s.rng.IntN(2) == 1 {
				traversalPlayer = Player1
			}
		}

		root := factory()
		traverse(root, traversalPlayer, reach{1, 1, 1}, 1.0, s.table, s.sampler, s.cfg.RegretMatchingPlus)
		s.iteration++
	}
}

// Policy returns the average policy over every information set visited so
// far.
func (s *Solver[A]) Policy() map[string]map[A]float64 {
	return s.table.FullPolicy()
}

// CurrentPolicy exposes the regret-matching policy for a single information
// set, primarily so callers can inspect in-progress convergence between
// Solve calls.
func (s *Solver[A]) CurrentPolicy(state string, legal []A) map[A]float64 {
	return s.table.CurrentPolicy(state, legal)
}
