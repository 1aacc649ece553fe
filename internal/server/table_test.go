package server

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// inertConn builds a connection whose pumps never run; messages pile up
// in the outbound buffer where tests can inspect them.
func inertConn(t *testing.T) *Connection {
	t.Helper()
	return NewConnection(nil, nil, log.New(io.Discard))
}

// newTestTable builds a started table on a mock clock with the engine
// replaced by one dealing the given cards in order.
func newTestTable(t *testing.T, clock quartz.Clock, cardStrs ...string) *Table {
	t.Helper()
	logger := log.New(io.Discard)

	cfg := DefaultConfig()
	cfg.Server.ActTimeoutSeconds = 10
	tbl, err := NewTable(cfg.Tables[0], *cfg.Server, logger, clock)
	require.NoError(t, err)

	if len(cardStrs) > 0 {
		cards := make([]deck.Card, 0, len(cardStrs))
		for _, s := range cardStrs {
			c, err := deck.ParseCard(s)
			require.NoError(t, err)
			cards = append(cards, c)
		}
		rules, err := cfg.Tables[0].Rules()
		require.NoError(t, err)
		engine, err := game.New(rules, logger, game.WithShoe(deck.NewStackedShoe(cards...)))
		require.NoError(t, err)
		tbl.engine = engine
	}

	tbl.Start()
	t.Cleanup(tbl.Stop)
	return tbl
}

// barrier waits until every previously enqueued command has run.
func barrier(t *testing.T, tbl *Table) {
	t.Helper()
	done := make(chan struct{})
	require.True(t, tbl.do(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("table loop stalled")
	}
}

// phase reads the engine phase through the table loop.
func phase(t *testing.T, tbl *Table) game.Phase {
	t.Helper()
	var p game.Phase
	done := make(chan struct{})
	require.True(t, tbl.do(func() {
		p = tbl.engine.Snapshot().Phase
		close(done)
	}))
	<-done
	return p
}

// drain empties a connection's outbound buffer.
func drain(c *Connection) []*Message {
	var out []*Message
	for {
		select {
		case msg := <-c.outbound:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func messageTypes(msgs []*Message) []MessageType {
	out := make([]MessageType, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Type)
	}
	return out
}

func TestTableRoundOverMessages(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, quartz.NewMock(t), "Ts", "9h", "7h", "7d", "5c")
	conn := inertConn(t)

	tbl.Join(conn, "alice")
	barrier(t, tbl)
	msgs := drain(conn)
	require.NotEmpty(t, msgs)
	assert.Equal(t, MessageTypeJoined, msgs[0].Type)

	var joined JoinedData
	require.NoError(t, json.Unmarshal(msgs[0].Data, &joined))
	assert.Equal(t, "alice", joined.PlayerID)
	assert.Equal(t, int64(100000), joined.Balance)

	tbl.PlaceBet(conn, BetData{Amount: 1000})
	tbl.Deal(conn)
	barrier(t, tbl)
	assert.Equal(t, game.PlayerTurn, phase(t, tbl))

	tbl.Action(conn, ActionData{Action: "stand"})
	barrier(t, tbl)
	assert.Equal(t, game.Settlement, phase(t, tbl))

	types := messageTypes(drain(conn))
	assert.Contains(t, types, MessageTypeState)
	assert.Contains(t, types, MessageTypeSettlement)

	tbl.NextRound(conn)
	barrier(t, tbl)
	assert.Equal(t, game.Betting, phase(t, tbl))
}

func TestTableRejectsBadIntents(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, quartz.NewMock(t), "Ts", "9h", "7h", "7d", "5c")
	conn := inertConn(t)

	tbl.Join(conn, "alice")
	tbl.PlaceBet(conn, BetData{Amount: 1000, SideBets: map[string]int64{"lucky_ladies": 50}})
	barrier(t, tbl)

	types := messageTypes(drain(conn))
	assert.Contains(t, types, MessageTypeError)

	tbl.Action(conn, ActionData{Action: "yolo"})
	barrier(t, tbl)
	msgs := drain(conn)
	require.NotEmpty(t, msgs)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Data, &errData))
	assert.Equal(t, "invalid_action", errData.Code)
}

func TestActTimeoutStandsStalledHand(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	tbl := newTestTable(t, mClock, "Ts", "9h", "7h", "7d", "5c")
	conn := inertConn(t)

	tbl.Join(conn, "alice")
	tbl.PlaceBet(conn, BetData{Amount: 1000})
	tbl.Deal(conn)
	barrier(t, tbl)
	require.Equal(t, game.PlayerTurn, phase(t, tbl))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mClock.Advance(10 * time.Second).MustWait(ctx)
	barrier(t, tbl)

	assert.Equal(t, game.Settlement, phase(t, tbl))
	types := messageTypes(drain(conn))
	assert.Contains(t, types, MessageTypeTimeout)
	assert.Contains(t, types, MessageTypeSettlement)
}

func TestInsuranceTimeoutClosesWindow(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	tbl := newTestTable(t, mClock, "Ts", "As", "9h", "7d")
	conn := inertConn(t)

	tbl.Join(conn, "alice")
	tbl.PlaceBet(conn, BetData{Amount: 1000})
	tbl.Deal(conn)
	barrier(t, tbl)
	require.Equal(t, game.InsuranceDecision, phase(t, tbl))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mClock.Advance(10 * time.Second).MustWait(ctx)
	barrier(t, tbl)

	// Undecided players are declined and play proceeds.
	assert.Equal(t, game.PlayerTurn, phase(t, tbl))
}

func TestActionCancelsTimer(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	tbl := newTestTable(t, mClock, "8s", "9h", "8h", "7d", "2c", "3c", "Tc", "Td")
	conn := inertConn(t)

	tbl.Join(conn, "alice")
	tbl.PlaceBet(conn, BetData{Amount: 1000})
	tbl.Deal(conn)
	barrier(t, tbl)
	require.Equal(t, game.PlayerTurn, phase(t, tbl))

	// Acting reschedules the timer; the old deadline passing must not
	// stand the fresh hand.
	tbl.Action(conn, ActionData{Action: "hit"})
	barrier(t, tbl)
	require.Equal(t, game.PlayerTurn, phase(t, tbl))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mClock.Advance(10 * time.Second).MustWait(ctx)
	barrier(t, tbl)
	assert.Equal(t, game.Settlement, phase(t, tbl))
}

func TestAdviceFromTable(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, quartz.NewMock(t), "Ts", "8d", "6h", "7d", "2c")
	conn := inertConn(t)

	tbl.Join(conn, "alice")
	tbl.PlaceBet(conn, BetData{Amount: 1000})
	tbl.Deal(conn)
	tbl.Advise(conn)
	barrier(t, tbl)

	msgs := drain(conn)
	var advice *AdviceData
	for _, m := range msgs {
		if m.Type == MessageTypeAdviceGiven {
			advice = &AdviceData{}
			require.NoError(t, json.Unmarshal(m.Data, advice))
		}
	}
	require.NotNil(t, advice, "expected advice for hard 16 vs 8")
	assert.Equal(t, "hit", advice.Action)
	assert.NotEmpty(t, advice.Rationale)
}
