package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/cfr-solver/cfr"
	"github.com/lox/cfr-solver/games/kuhn"
)

const policyFileVersion = 1

// policyFile is the CLI's own save format for a trained average policy. The
// core package promises no wire format (spec §6.3: "None in the core");
// this is a convenience layer on top of Solver.Policy(), grounded on
// sdk/solver/blueprint.go's Blueprint struct and on checkpoint.go's
// temp-file-then-rename save so a crash mid-write never leaves a truncated
// policy file behind.
type policyFile struct {
	Version            int                          `json:"version"`
	GeneratedAt        time.Time                    `json:"generated_at"`
	Iterations         int                          `json:"iterations"`
	Sampling           string                       `json:"sampling"`
	RegretMatchingPlus bool                          `json:"regret_matching_plus"`
	Epsilon            float64                       `json:"epsilon"`
	Policy             map[string]map[string]float64 `json:"policy"`
}

func savePolicy(path string, solver *cfr.Solver[kuhn.Action], cfg cfr.Config) error {
	policy := make(map[string]map[string]float64, solver.TableSize())
	for state, dist := range solver.Policy() {
		byName := make(map[string]float64, len(dist))
		for a, p := range dist {
			byName[a.String()] = p
		}
		policy[state] = byName
	}

	pf := policyFile{
		Version:            policyFileVersion,
		GeneratedAt:        time.Now().UTC(),
		Iterations:         solver.Iteration(),
		Sampling:           cfg.Sampling.String(),
		RegretMatchingPlus: cfg.RegretMatchingPlus,
		Epsilon:            cfg.Epsilon,
		Policy:             policy,
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create policy dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create policy temp: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode policy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close policy temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist policy: %w", err)
	}
	return nil
}

func loadPolicy(path string) (*policyFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pf policyFile
	if err := json.NewDecoder(f).Decode(&pf); err != nil {
		return nil, err
	}
	if pf.Version != policyFileVersion {
		return nil, errors.New("unsupported policy file version")
	}
	return &pf, nil
}
