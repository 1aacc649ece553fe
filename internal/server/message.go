package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeJoin      MessageType = "join"
	MessageTypeBet       MessageType = "bet"
	MessageTypeDeal      MessageType = "deal"
	MessageTypeAction    MessageType = "action"
	MessageTypeInsurance MessageType = "insurance"
	MessageTypeNextRound MessageType = "next_round"
	MessageTypeAdvice    MessageType = "advice"

	// Server to client messages
	MessageTypeJoined     MessageType = "joined"
	MessageTypeState      MessageType = "state"
	MessageTypeSettlement MessageType = "settlement"
	MessageTypeAdviceGiven MessageType = "advice_given"
	MessageTypeTimeout    MessageType = "timeout"
	MessageTypeError      MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type JoinData struct {
	PlayerName string `json:"playerName"`
	Table      string `json:"table,omitempty"`
}

type BetData struct {
	Amount   int64            `json:"amount"`
	SideBets map[string]int64 `json:"sideBets,omitempty"`
}

type ActionData struct {
	Action string `json:"action"`
}

type InsuranceData struct {
	Take bool `json:"take"`
}

// Server → Client Messages

type JoinedData struct {
	PlayerID string `json:"playerId"`
	Table    string `json:"table"`
	Balance  int64  `json:"balance"`
}

type StateData struct {
	Table    string        `json:"table"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type SettlementData struct {
	Table  string                 `json:"table"`
	Report *game.SettlementReport `json:"report"`
}

type AdviceData struct {
	Action     string  `json:"action"`
	Rationale  string  `json:"rationale"`
	Confidence float64 `json:"confidence"`
	Deviation  bool    `json:"deviation"`
	TrueCount  float64 `json:"trueCount"`
}

type TimeoutData struct {
	PlayerID string `json:"playerId"`
	Phase    string `json:"phase"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
