package server

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// Table runs one blackjack table. The engine is single-threaded, so the
// table funnels every mutation through one goroutine: handlers enqueue
// closures and the run loop applies them in order. Act timeouts are
// scheduled on an injectable clock so tests can advance time by hand.
type Table struct {
	name       string
	engine     *game.Engine
	advisor    *strategy.Advisor
	counter    *strategy.Counter
	buyIn      int64
	maxSeats   int
	actTimeout time.Duration
	clock      quartz.Clock
	logger     *log.Logger

	commands chan func()
	conns    map[string]*Connection

	// timerGen invalidates pending timeouts from a superseded state.
	timer    *quartz.Timer
	timerGen int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewTable creates a table from its configuration.
func NewTable(cfg TableConfig, settings ServerSettings, logger *log.Logger, clock quartz.Clock) (*Table, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	engine, err := game.New(rules, logger)
	if err != nil {
		return nil, err
	}

	counter := strategy.NewCounter(rules.NumDecks)
	engine.EventBus().Subscribe(counter)

	ctx, cancel := context.WithCancel(context.Background())
	t := &Table{
		name:       cfg.Name,
		engine:     engine,
		advisor:    strategy.NewAdvisor(rules, strategy.DefaultDeviations()),
		counter:    counter,
		buyIn:      cfg.BuyIn,
		maxSeats:   cfg.MaxSeats,
		actTimeout: time.Duration(settings.ActTimeoutSeconds) * time.Second,
		clock:      clock,
		logger:     logger.WithPrefix("table").With("table", cfg.Name),
		commands:   make(chan func(), 64),
		conns:      make(map[string]*Connection),
		ctx:        ctx,
		cancel:     cancel,
	}
	return t, nil
}

// Start runs the table's command loop.
func (t *Table) Start() {
	go t.run()
}

// Stop shuts the table down.
func (t *Table) Stop() {
	t.cancel()
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// do enqueues fn for the run loop. Returns false once the table is
// stopped.
func (t *Table) do(fn func()) bool {
	select {
	case t.commands <- fn:
		return true
	case <-t.ctx.Done():
		return false
	}
}

func (t *Table) run() {
	for {
		select {
		case fn := <-t.commands:
			fn()
		case <-t.ctx.Done():
			return
		}
	}
}

// Join seats a connection's player with the table buy-in.
func (t *Table) Join(conn *Connection, name string) {
	t.do(func() {
		if len(t.conns) >= t.maxSeats {
			conn.sendError("table_full", fmt.Sprintf("table %s is full", t.name))
			return
		}
		snap, err := t.engine.AddPlayer(name, t.buyIn)
		if err != nil {
			conn.sendError("join_failed", err.Error())
			return
		}
		t.conns[name] = conn
		conn.SetPlayer(name)
		conn.send(MessageTypeJoined, JoinedData{PlayerID: name, Table: t.name, Balance: t.buyIn})
		t.logger.Info("player joined", "player", name)
		t.broadcast(snap)
	})
}

// Leave removes a player's connection. Their seat persists for the
// round; the engine settles them normally.
func (t *Table) Leave(name string) {
	t.do(func() {
		delete(t.conns, name)
		t.logger.Info("player left", "player", name)
	})
}

// PlaceBet applies a bet intent from a connection.
func (t *Table) PlaceBet(conn *Connection, data BetData) {
	t.do(func() {
		bet := game.Bet{Main: data.Amount}
		for name, amount := range data.SideBets {
			kind, ok := game.ParseSideBetKind(name)
			if !ok {
				conn.sendError("invalid_bet", fmt.Sprintf("unknown side bet %q", name))
				return
			}
			if bet.SideBets == nil {
				bet.SideBets = make(map[game.SideBetKind]int64)
			}
			bet.SideBets[kind] = amount
		}

		snap, err := t.engine.PlaceBet(conn.GetPlayer(), bet)
		if err != nil {
			conn.sendError("invalid_bet", err.Error())
			return
		}
		t.afterChange(snap)
	})
}

// Deal starts the round.
func (t *Table) Deal(conn *Connection) {
	t.do(func() {
		snap, err := t.engine.Deal()
		if err != nil {
			conn.sendError("deal_failed", err.Error())
			return
		}
		t.afterChange(snap)
	})
}

// Action applies a player action.
func (t *Table) Action(conn *Connection, data ActionData) {
	t.do(func() {
		act, ok := game.ParseAction(data.Action)
		if !ok {
			conn.sendError("invalid_action", fmt.Sprintf("unknown action %q", data.Action))
			return
		}
		snap, err := t.engine.Action(conn.GetPlayer(), act)
		if err != nil {
			conn.sendError("illegal_action", err.Error())
			return
		}
		t.afterChange(snap)
	})
}

// Insurance applies a take/decline insurance intent.
func (t *Table) Insurance(conn *Connection, data InsuranceData) {
	t.do(func() {
		var snap game.Snapshot
		var err error
		if data.Take {
			snap, err = t.engine.TakeInsurance(conn.GetPlayer())
		} else {
			snap, err = t.engine.DeclineInsurance(conn.GetPlayer())
		}
		if err != nil {
			conn.sendError("insurance_failed", err.Error())
			return
		}
		t.afterChange(snap)
	})
}

// NextRound retires a settled round.
func (t *Table) NextRound(conn *Connection) {
	t.do(func() {
		snap, err := t.engine.NextRound()
		if err != nil {
			conn.sendError("next_round_failed", err.Error())
			return
		}
		t.afterChange(snap)
	})
}

// Advise answers an advice request from the player's current hand.
func (t *Table) Advise(conn *Connection) {
	t.do(func() {
		snap := t.engine.Snapshot()
		pv := snap.Player(conn.GetPlayer())
		if pv == nil || len(pv.Hands) == 0 {
			conn.sendError("no_advice", "no hand in play")
			return
		}
		hand := pv.Hands[pv.ActiveHand]
		trueCount := t.counter.TrueCount()
		advice, ok := t.advisor.Recommend(hand.Cards, snap.Dealer.Upcard(), hand.Actions, trueCount)
		if !ok {
			conn.sendError("no_advice", "not enough information to advise")
			return
		}
		conn.send(MessageTypeAdviceGiven, AdviceData{
			Action:     advice.Action.String(),
			Rationale:  advice.Rationale,
			Confidence: advice.Confidence,
			Deviation:  advice.Deviation,
			TrueCount:  trueCount,
		})
	})
}

// afterChange broadcasts the new state and manages the act timer. Runs
// on the table loop.
func (t *Table) afterChange(snap game.Snapshot) {
	t.broadcast(snap)

	t.timerGen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	switch snap.Phase {
	case game.PlayerTurn, game.InsuranceDecision:
		gen := t.timerGen
		t.timer = t.clock.AfterFunc(t.actTimeout, func() {
			t.do(func() { t.onTimeout(gen) })
		})
	case game.Settlement:
		if report, err := t.engine.Result(); err == nil {
			t.broadcastMessage(MessageTypeSettlement, SettlementData{Table: t.name, Report: report})
		}
	}
}

// onTimeout resolves an expired decision window: insurance closes with
// undecided players declined, and a stalled hand stands. Runs on the
// table loop.
func (t *Table) onTimeout(gen int) {
	if gen != t.timerGen {
		return
	}

	snap := t.engine.Snapshot()
	switch snap.Phase {
	case game.InsuranceDecision:
		t.logger.Info("insurance window timed out")
		t.broadcastMessage(MessageTypeTimeout, TimeoutData{Phase: snap.Phase.String()})
		if next, err := t.engine.FinishInsurance(); err == nil {
			t.afterChange(next)
		}

	case game.PlayerTurn:
		actor := t.activePlayer(snap)
		if actor == "" {
			return
		}
		t.logger.Info("act timeout, standing", "player", actor)
		t.broadcastMessage(MessageTypeTimeout, TimeoutData{PlayerID: actor, Phase: snap.Phase.String()})
		if next, err := t.engine.Action(actor, game.Stand); err == nil {
			t.afterChange(next)
		}
	}
}

// activePlayer finds the player whose hand carries a legal-action set.
func (t *Table) activePlayer(snap game.Snapshot) string {
	for _, pv := range snap.Players {
		for _, h := range pv.Hands {
			if len(h.Actions) > 0 {
				return pv.ID
			}
		}
	}
	return ""
}

func (t *Table) broadcast(snap game.Snapshot) {
	t.broadcastMessage(MessageTypeState, StateData{Table: t.name, Snapshot: snap})
}

func (t *Table) broadcastMessage(mt MessageType, data interface{}) {
	for _, conn := range t.conns {
		conn.send(mt, data)
	}
}
