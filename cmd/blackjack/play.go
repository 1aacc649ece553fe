package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs a single-seat game in the terminal.
type PlayCmd struct {
	BuyIn    int64  `kong:"default='1000',help='Buy-in in whole dollars'"`
	Decks    int    `kong:"default='6',help='Number of decks in the shoe'"`
	HitSoft  bool   `kong:"name='h17',help='Dealer hits soft 17'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	DebugLog string `kong:"help='Write debug logs to this file'"`
}

func (c *PlayCmd) Run() error {
	var logOut io.Writer = io.Discard
	if c.DebugLog != "" {
		f, err := os.OpenFile(c.DebugLog, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := log.NewWithOptions(logOut, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.DebugLevel,
	})

	rules := game.DefaultRules()
	rules.NumDecks = c.Decks
	rules.DealerHitsSoft17 = c.HitSoft
	if err := rules.Validate(); err != nil {
		return err
	}

	opts := []game.Option{}
	if c.Seed != nil {
		opts = append(opts, game.WithRNG(randutil.New(*c.Seed)))
	}
	engine, err := game.New(rules, logger, opts...)
	if err != nil {
		return err
	}
	if _, err := engine.AddPlayer("you", c.BuyIn*100); err != nil {
		return err
	}

	model := tui.NewModel(engine, "you", logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
