package main

import (
	"github.com/lox/cfr-solver/cfr"
	"github.com/lox/cfr-solver/games/kuhn"
)

func newKuhnRoot() cfr.Node[kuhn.Action] {
	return kuhn.New()
}

func newKuhnSolver(cfg cfr.Config) (*cfr.Solver[kuhn.Action], error) {
	return cfr.NewSolver[kuhn.Action](cfg)
}
