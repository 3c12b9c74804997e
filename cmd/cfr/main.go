// Command cfr trains and evaluates CFR equilibria for the bundled Kuhn
// poker example game. It mirrors cmd/solver/main.go's kong/zerolog shape:
// a top-level --debug flag, one subcommand struct per verb, progress
// logged through a structured logger rather than printed directly.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfr-solver/cfr"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train TrainCmd `cmd:"" help:"run CFR training against Kuhn poker and save an average policy"`
	Eval  EvalCmd  `cmd:"" help:"evaluate a saved policy against known Kuhn poker equilibrium bounds"`
}

// TrainCmd configures a training run. Flags mirror cmd/solver.TrainCmd's
// shape (required output path, iteration count, seed, sampling mode).
type TrainCmd struct {
	Out           string `help:"path to write the trained policy" required:""`
	Iterations    int    `help:"number of CFR iterations" default:"1000"`
	Seed          int64  `help:"random seed; 0 uses a time-derived seed" default:"1"`
	Sampling      string `help:"sampling mode (full|external|outcome)" enum:"full,external,outcome" default:"full"`
	RMPlus        bool   `help:"enable regret-matching+ (clamp cumulative regret at zero)"`
	Epsilon       float64 `help:"sampler minimum per-action weight" default:"0.05"`
	ProgressEvery int    `help:"log progress every N iterations (0 logs every tenth of the run)" default:"0"`
}

// EvalCmd loads a saved policy and reports the spec's canned Kuhn checks.
type EvalCmd struct {
	Policy string `help:"path to a saved policy file" required:""`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("cfr"),
		kong.Description("Counterfactual Regret Minimization solver tooling"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	switch ctx.Command() {
	case "train":
		if err := cli.Train.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("training failed")
		}
	case "eval":
		if err := cli.Eval.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("evaluation failed")
		}
	default:
		log.Fatal().Msgf("unknown command: %s", ctx.Command())
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

func parseSamplingMode(input string) (cfr.SamplingMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "full":
		return cfr.Full, nil
	case "external":
		return cfr.External, nil
	case "outcome":
		return cfr.Outcome, nil
	default:
		return cfr.Full, fmt.Errorf("unknown sampling mode %q", input)
	}
}

func (cmd *TrainCmd) Run(ctx context.Context) error {
	mode, err := parseSamplingMode(cmd.Sampling)
	if err != nil {
		return err
	}

	cfg := cfr.Config{
		Sampling:           mode,
		RegretMatchingPlus: cmd.RMPlus,
		Epsilon:            cmd.Epsilon,
		Seed:               cmd.Seed,
	}

	solver, err := newKuhnSolver(cfg)
	if err != nil {
		return fmt.Errorf("new solver: %w", err)
	}

	log.Info().
		Int("iterations", cmd.Iterations).
		Str("sampling", mode.String()).
		Bool("rm_plus", cmd.RMPlus).
		Float64("epsilon", cmd.Epsilon).
		Msg("starting training run")

	start := time.Now()
	batch := cmd.ProgressEvery
	if batch <= 0 {
		batch = max(cmd.Iterations/10, 1)
	}

	done := 0
	for done < cmd.Iterations {
		step := min(batch, cmd.Iterations-done)
		solver.Solve(newKuhnRoot, step)
		done += step
		log.Info().Int("iteration", done).Int("infosets", solver.TableSize()).Msg("progress")
	}

	if err := savePolicy(cmd.Out, solver, cfg); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("infosets", solver.TableSize()).
		Str("path", cmd.Out).
		Msg("training completed")
	return nil
}

func (cmd *EvalCmd) Run(ctx context.Context) error {
	pf, err := loadPolicy(cmd.Policy)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	log.Info().
		Str("generated", pf.GeneratedAt.Format(time.RFC3339)).
		Int("iterations", pf.Iterations).
		Int("infosets", len(pf.Policy)).
		Msg("policy loaded")

	results := checkKuhnEquilibrium(pf.Policy, 0.05)
	failed := 0
	for _, r := range results {
		ev := log.Info()
		if !r.Pass {
			ev = log.Warn()
			failed++
		}
		ev.Str("check", r.Name).Float64("got", r.Got).Str("want", r.Want).Bool("pass", r.Pass).Msg("equilibrium check")
	}

	expl := bestResponseExploitability(pf.Policy)
	log.Info().Float64("exploitability", expl).Msg("best-response exploitability")

	if failed > 0 {
		return fmt.Errorf("%d/%d equilibrium checks failed", failed, len(results))
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
