package game

import "errors"

// User errors: non-fatal, returned to the caller, round state unchanged.
var (
	// ErrIllegalAction is returned when an action is not in the legal set
	// for the current phase and active hand.
	ErrIllegalAction = errors.New("illegal action")

	// ErrInvalidBet is the base class for bet validation failures.
	ErrInvalidBet = errors.New("invalid bet")

	// ErrInsufficientFunds means the player's balance cannot cover the bet.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBelowTableMinimum means the bet is under the table minimum.
	ErrBelowTableMinimum = errors.New("bet below table minimum")

	// ErrAboveTableMaximum means the bet is over the table maximum.
	ErrAboveTableMaximum = errors.New("bet above table maximum")

	// ErrNoActiveHand means the player has no hand awaiting action.
	ErrNoActiveHand = errors.New("no active hand")

	// ErrNotYourTurn means another player's hand is awaiting action.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrUnknownPlayer means the player ID is not seated at this table.
	ErrUnknownPlayer = errors.New("unknown player")
)

// Resource errors: fatal to the current round, recoverable by re-dealing.
var (
	// ErrShoeExhausted means the shoe ran out of cards mid-deal. The round
	// is voided, stakes are refunded and the shoe reshuffled; the caller
	// decides whether to deal again.
	ErrShoeExhausted = errors.New("shoe exhausted")
)

// ErrWrongPhase is returned when an operation is invoked outside the
// phase it belongs to.
var ErrWrongPhase = errors.New("operation not valid in current phase")
