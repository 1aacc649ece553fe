package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/roundid"
)

// Engine owns the live round and the table roster. It is single-threaded
// by design: every operation is a short synchronous computation, and a
// concurrent host must serialise access (one writer per table).
type Engine struct {
	rules   Rules
	shoe    *deck.Shoe
	players []*Player
	round   *Round
	bus     EventBus
	logger  *log.Logger
	ids     *roundid.Generator
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithShoe supplies a prepared shoe, e.g. a stacked shoe for tests.
func WithShoe(s *deck.Shoe) Option {
	return func(e *Engine) { e.shoe = s }
}

// WithRNG seeds the shoe's shuffling for deterministic play.
func WithRNG(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.shoe = deck.NewShoe(rng, e.rules.NumDecks, e.rules.Penetration)
	}
}

// WithEventBus replaces the default event bus.
func WithEventBus(bus EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// New creates an engine for the given immutable ruleset. Changing rules
// mid-session requires a new engine.
func New(rules Rules, logger *log.Logger, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	e := &Engine{
		rules:  rules,
		bus:    NewEventBus(),
		logger: logger.WithPrefix("engine"),
		ids:    roundid.NewGenerator(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shoe == nil {
		e.shoe = deck.NewShoe(randutil.NewFromTime(), rules.NumDecks, rules.Penetration)
	}

	e.round = newRound(e.ids.New(), e.rules, e.shoe, e.players, e.bus)
	return e, nil
}

// Rules returns the engine's immutable ruleset.
func (e *Engine) Rules() Rules {
	return e.rules
}

// EventBus returns the bus hosts and counters subscribe to.
func (e *Engine) EventBus() EventBus {
	return e.bus
}

// Snapshot returns a read-only view of the current round.
func (e *Engine) Snapshot() Snapshot {
	return e.round.snapshot()
}

// AddPlayer seats a player. Only permitted between rounds.
func (e *Engine) AddPlayer(id string, balance int64) (Snapshot, error) {
	if e.round.Phase != Betting {
		return e.Snapshot(), fmt.Errorf("%w: players join during betting", ErrWrongPhase)
	}
	if id == "dealer" {
		return e.Snapshot(), fmt.Errorf("reserved player ID %q", id)
	}
	if balance <= 0 {
		return e.Snapshot(), fmt.Errorf("starting balance must be positive, got %d", balance)
	}
	for _, p := range e.players {
		if p.ID == id {
			return e.Snapshot(), fmt.Errorf("player %q already seated", id)
		}
	}

	e.players = append(e.players, NewPlayer(id, balance))
	e.round.players = e.players
	e.logger.Debug("player seated", "player", id, "balance", balance)
	return e.Snapshot(), nil
}

// PlaceBet declares a player's wager for the round.
func (e *Engine) PlaceBet(playerID string, bet Bet) (Snapshot, error) {
	p, err := e.player(playerID)
	if err != nil {
		return e.Snapshot(), err
	}
	if err := e.round.placeBet(p, bet); err != nil {
		return e.Snapshot(), err
	}
	e.logger.Debug("bet placed", "player", playerID, "main", bet.Main, "total", bet.Total())
	return e.Snapshot(), nil
}

// Deal starts the round: initial cards, side-bet evaluation, and either
// the insurance window, an immediate settlement on a dealer natural, or
// the first player turn.
func (e *Engine) Deal() (Snapshot, error) {
	if err := e.round.deal(); err != nil {
		return e.Snapshot(), err
	}
	e.logger.Debug("dealt", "round", e.round.ID, "phase", e.round.Phase)
	return e.Snapshot(), nil
}

// Action applies hit, stand, double, split or surrender for the player's
// active hand.
func (e *Engine) Action(playerID string, act Action) (Snapshot, error) {
	p, err := e.player(playerID)
	if err != nil {
		return e.Snapshot(), err
	}
	if err := e.round.action(p, act); err != nil {
		return e.Snapshot(), err
	}
	e.logger.Debug("action applied", "player", playerID, "action", act, "phase", e.round.Phase)
	return e.Snapshot(), nil
}

// TakeInsurance places an insurance wager of half the main bet.
func (e *Engine) TakeInsurance(playerID string) (Snapshot, error) {
	p, err := e.player(playerID)
	if err != nil {
		return e.Snapshot(), err
	}
	if err := e.round.takeInsurance(p); err != nil {
		return e.Snapshot(), err
	}
	return e.Snapshot(), nil
}

// DeclineInsurance records a player passing on insurance.
func (e *Engine) DeclineInsurance(playerID string) (Snapshot, error) {
	p, err := e.player(playerID)
	if err != nil {
		return e.Snapshot(), err
	}
	if err := e.round.declineInsurance(p); err != nil {
		return e.Snapshot(), err
	}
	return e.Snapshot(), nil
}

// FinishInsurance force-closes the insurance window, treating undecided
// players as declined. Hosts call this when their decision timer fires.
func (e *Engine) FinishInsurance() (Snapshot, error) {
	if err := e.round.finishInsurance(); err != nil {
		return e.Snapshot(), err
	}
	return e.Snapshot(), nil
}

// Result returns the settlement report for a settled round.
func (e *Engine) Result() (*SettlementReport, error) {
	if e.round.result == nil {
		return nil, fmt.Errorf("%w: round not settled", ErrWrongPhase)
	}
	return e.round.result, nil
}

// NextRound retires a settled round and opens betting on a fresh one.
// Balances and the shoe carry over; hands and wagers are cleared.
func (e *Engine) NextRound() (Snapshot, error) {
	if e.round.Phase != Settlement {
		return e.Snapshot(), fmt.Errorf("%w: round not settled", ErrWrongPhase)
	}

	e.round.setPhase(Cleanup)
	for _, p := range e.players {
		p.resetForRound()
	}

	e.round = newRound(e.ids.New(), e.rules, e.shoe, e.players, e.bus)
	e.logger.Debug("new round", "round", e.round.ID)
	return e.Snapshot(), nil
}

func (e *Engine) player(id string) (*Player, error) {
	for _, p := range e.players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
}
