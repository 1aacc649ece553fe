// Package game implements the core blackjack engine: the phase state
// machine for a round, hand evaluation, bet validation, settlement
// arithmetic and side-bet resolution.
//
// The main type is Engine, which owns exactly one live Round and the
// table roster. Hosts drive it through commands and receive an immutable
// Snapshot after every operation:
//
//	eng, _ := game.New(game.DefaultRules(), logger)
//	eng.AddPlayer("alice", 10_000)
//	eng.PlaceBet("alice", game.Bet{Main: 500})
//	snap, _ := eng.Deal()
//	if snap.Phase == game.PlayerTurn {
//	    snap, _ = eng.Action("alice", game.Hit)
//	}
//
// # Round lifecycle
//
// Betting → Dealing → InsuranceDecision (optional) → PlayerTurn →
// DealerTurn → Settlement → Cleanup, with Cleanup wrapping back to
// Betting via NextRound. The dealer turn and settlement run
// automatically once the last player hand finishes.
//
// # Determinism
//
// All randomness flows through the shoe. Inject a seeded RNG with
// WithRNG, or a stacked shoe with WithShoe, for reproducible rounds:
//
//	eng, _ := game.New(rules, logger, game.WithRNG(randutil.New(42)))
//
// # Concurrency
//
// The engine is deliberately single-threaded: a blackjack round is
// strictly sequential. Embedding hosts must serialise access with a
// single-writer discipline; see internal/server for an example.
package game
