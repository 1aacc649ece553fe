package game

import (
	"errors"
	"testing"

	"github.com/lox/blackjack/internal/deck"
)

type recordingSubscriber struct {
	events []Event
}

func (r *recordingSubscriber) OnEvent(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recordingSubscriber) ofType(et EventType) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.EventType() == et {
			out = append(out, ev)
		}
	}
	return out
}

func TestHoleCardHiddenFromEvents(t *testing.T) {
	t.Parallel()
	e := stackedEngine(t, DefaultRules(), "Ts", "9h", "7h", "7d", "5c")
	rec := &recordingSubscriber{}
	e.EventBus().Subscribe(rec)

	mustBet(t, e, "alice", 1000)
	mustDeal(t, e)

	// The initial deal publishes only the visible cards: two to the
	// player, one to the dealer. A counter watching the bus never sees
	// the hole card early.
	dealt := rec.ofType(EventTypeCardDealt)
	if len(dealt) != 3 {
		t.Fatalf("visible cards dealt = %d, want 3", len(dealt))
	}
	for _, ev := range dealt {
		if ev.(CardDealtEvent).Card.String() == "7♦" {
			t.Fatal("hole card published during the deal")
		}
	}
	if len(rec.ofType(EventTypeHoleCardRevealed)) != 0 {
		t.Fatal("hole card revealed before the dealer turn")
	}

	mustAct(t, e, "alice", Stand)

	revealed := rec.ofType(EventTypeHoleCardRevealed)
	if len(revealed) != 1 {
		t.Fatalf("hole reveals = %d, want 1", len(revealed))
	}
	if got := revealed[0].(HoleCardRevealedEvent).Card.String(); got != "7♦" {
		t.Errorf("revealed card = %s, want 7♦", got)
	}

	// Dealer 16 draws once; that draw is a visible card event.
	if got := len(rec.ofType(EventTypeCardDealt)); got != 4 {
		t.Errorf("visible cards after dealer turn = %d, want 4", got)
	}
	if len(rec.ofType(EventTypeRoundSettled)) != 1 {
		t.Error("settlement event missing")
	}
}

func TestPhaseChangeEvents(t *testing.T) {
	t.Parallel()
	e := stackedEngine(t, DefaultRules(), "Ts", "9h", "7h", "7d", "5c")
	rec := &recordingSubscriber{}
	e.EventBus().Subscribe(rec)

	mustBet(t, e, "alice", 1000)
	mustDeal(t, e)
	mustAct(t, e, "alice", Stand)

	var phases []Phase
	for _, ev := range rec.ofType(EventTypePhaseChanged) {
		phases = append(phases, ev.(PhaseChangedEvent).To)
	}
	want := []Phase{Dealing, PlayerTurn, DealerTurn, Settlement}
	if len(phases) != len(want) {
		t.Fatalf("phase transitions = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phase transitions = %v, want %v", phases, want)
		}
	}
}

func TestShoeExhaustionVoidsRound(t *testing.T) {
	t.Parallel()
	// Exactly the four cards for the initial deal; the first hit runs
	// the shoe dry mid-hand.
	e, err := New(DefaultRules(), testLogger(), WithShoe(deck.NewStackedShoe(cards("Ts", "9h", "6h", "7d")...)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.AddPlayer("alice", 10000); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	mustBet(t, e, "alice", 1000)
	mustDeal(t, e)

	snap, err := e.Action("alice", Hit)
	if !errors.Is(err, ErrShoeExhausted) {
		t.Fatalf("hit on a dry shoe = %v, want ErrShoeExhausted", err)
	}

	// The round voids back to betting with the declared wager intact
	// and riding for the re-deal.
	if snap.Phase != Betting {
		t.Fatalf("phase = %s, want %s", snap.Phase, Betting)
	}
	pv := snap.Player("alice")
	if pv.Balance != 9000 || pv.Bet.Main != 1000 {
		t.Errorf("balance/bet = %d/%d, want 9000/1000", pv.Balance, pv.Bet.Main)
	}
	if len(pv.Hands) != 0 {
		t.Error("voided hands should be cleared")
	}
	if snap.CardsRemaining == 0 {
		t.Error("shoe should have been reshuffled after the fault")
	}

	// The same round replays off the fresh shoe.
	snap = mustDeal(t, e)
	if snap.Phase == Betting {
		t.Fatalf("re-deal failed, phase = %s", snap.Phase)
	}
}

func TestShoeExhaustionRefundsExtraStakes(t *testing.T) {
	t.Parallel()
	// The deal and split succeed; the split hands' draw cards run out.
	e, err := New(DefaultRules(), testLogger(), WithShoe(deck.NewStackedShoe(cards("8s", "9h", "8h", "7d", "2c")...)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.AddPlayer("alice", 10000); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	mustBet(t, e, "alice", 1000)
	mustDeal(t, e)

	snap, err := e.Action("alice", Split)
	if !errors.Is(err, ErrShoeExhausted) {
		t.Fatalf("split on a near-dry shoe = %v, want ErrShoeExhausted", err)
	}

	// The matched split stake comes back; the declared bet stays down.
	pv := snap.Player("alice")
	if pv.Balance != 9000 {
		t.Errorf("balance = %d, want 9000 (split stake refunded)", pv.Balance)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()
	e := stackedEngine(t, DefaultRules(), "Ts", "9h", "7h", "7d", "5c")
	mustBet(t, e, "alice", 1000)
	snap := mustDeal(t, e)

	// Mutating the snapshot must not leak into the round.
	snap.Player("alice").Hands[0].Cards[0] = cards("2c")[0]
	snap.Player("alice").Balance = 0
	snap.Dealer.Cards[0] = cards("2c")[0]

	fresh := e.Snapshot()
	if got := fresh.Player("alice").Hands[0].Cards[0].String(); got != "T♠" {
		t.Errorf("round state mutated through snapshot: %s", got)
	}
	if fresh.Player("alice").Balance != 9000 {
		t.Error("balance mutated through snapshot")
	}
	if got := fresh.Dealer.Cards[0].String(); got != "9♥" {
		t.Errorf("dealer state mutated through snapshot: %s", got)
	}
}

func TestAddPlayerGuards(t *testing.T) {
	t.Parallel()
	e := stackedEngine(t, DefaultRules(), "Ts", "9h", "7h", "7d")

	if _, err := e.AddPlayer("alice", 1000); err == nil {
		t.Error("duplicate seat should fail")
	}
	if _, err := e.AddPlayer("dealer", 1000); err == nil {
		t.Error("the dealer seat is reserved")
	}
	if _, err := e.AddPlayer("bob", 0); err == nil {
		t.Error("zero starting balance should fail")
	}

	mustBet(t, e, "alice", 1000)
	mustDeal(t, e)
	if _, err := e.AddPlayer("carol", 1000); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("mid-round join = %v, want ErrWrongPhase", err)
	}
}

func TestDealRequiresABet(t *testing.T) {
	t.Parallel()
	e := stackedEngine(t, DefaultRules(), "Ts", "9h", "7h", "7d")
	if _, err := e.Deal(); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("deal with no wagers = %v, want ErrInvalidBet", err)
	}
}
