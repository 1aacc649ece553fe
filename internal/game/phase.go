package game

// Phase represents the stage of a blackjack round. The round moves
// strictly forward through these phases; Cleanup wraps back to Betting
// when a new round starts.
type Phase int

const (
	Betting Phase = iota
	Dealing
	InsuranceDecision
	PlayerTurn
	DealerTurn
	Settlement
	Cleanup
)

func (p Phase) String() string {
	return [...]string{"betting", "dealing", "insurance", "player_turn", "dealer_turn", "settlement", "cleanup"}[p]
}

// Action represents a player action during their turn
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
	Surrender
)

func (a Action) String() string {
	return [...]string{"hit", "stand", "double", "split", "surrender"}[a]
}

// ParseAction parses an action name as used by hosts (CLI, server messages).
func ParseAction(s string) (Action, bool) {
	switch s {
	case "hit":
		return Hit, true
	case "stand":
		return Stand, true
	case "double":
		return Double, true
	case "split":
		return Split, true
	case "surrender":
		return Surrender, true
	default:
		return 0, false
	}
}
