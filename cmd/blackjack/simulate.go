package main

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/sim"
)

// SimulateCmd runs a multi-worker simulation and prints edge statistics.
type SimulateCmd struct {
	Rounds    int    `kong:"default='100000',help='Number of rounds to simulate'"`
	Workers   int    `kong:"default='4',help='Parallel workers'"`
	Seed      *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Decks     int    `kong:"default='6',help='Number of decks in the shoe'"`
	HitSoft   bool   `kong:"name='h17',help='Dealer hits soft 17'"`
	BetUnit   int64  `kong:"default='10',help='Flat wager per round in whole dollars'"`
	Count     bool   `kong:"help='Play count deviations and spread bets by true count'"`
	MaxSpread int64  `kong:"default='8',help='Maximum bet spread in units when counting'"`
	Output    string `kong:"short='o',help='Write a JSON report to this file'"`
	Verbose   bool   `kong:"help='Verbose logging'"`
}

func (c *SimulateCmd) Run() error {
	var logOut io.Writer = io.Discard
	if c.Verbose {
		logOut = os.Stderr
	}
	logger := log.NewWithOptions(logOut, log.Options{Level: log.DebugLevel})

	rules := game.DefaultRules()
	rules.NumDecks = c.Decks
	rules.DealerHitsSoft17 = c.HitSoft
	if err := rules.Validate(); err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	cfg := sim.Config{
		Rounds:    c.Rounds,
		Seed:      seed,
		Workers:   c.Workers,
		Rules:     rules,
		BetUnit:   c.BetUnit * 100,
		UseCount:  c.Count,
		MaxSpread: c.MaxSpread,
		Logger:    logger,
	}

	stats, err := sim.New(cfg).Run()
	if err != nil {
		return err
	}
	sim.PrintSummary(stats, cfg)

	if c.Output != "" {
		if err := sim.WriteReport(c.Output, stats, cfg); err != nil {
			return err
		}
		logger.Info("wrote report", "path", c.Output)
	}
	return nil
}
