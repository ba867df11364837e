package server

import (
	"encoding/json"
	"time"

	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/game"
)

// Message is the base WebSocket message envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
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

type CreateGameData struct {
	PlayerName string      `json:"playerName"`
	Rules      *game.Rules `json:"rules,omitempty"`
}

type JoinGameData struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

type RejoinGameData struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

type AddBotData struct {
	GameID string `json:"gameId"`
}

type GameRefData struct {
	GameID string `json:"gameId"`
}

type DrawCardData struct {
	GameID      string `json:"gameId"`
	FromDiscard bool   `json:"fromDiscard"`
}

type DiscardCardData struct {
	GameID string    `json:"gameId"`
	Card   deck.Card `json:"card"`
}

type AddToMeldData struct {
	GameID    string      `json:"gameId"`
	MeldIndex int         `json:"meldIndex"`
	Cards     []deck.Card `json:"cards"`
}

type DraftCardsData struct {
	GameID string      `json:"gameId"`
	Cards  []deck.Card `json:"cards"`
}

type DraftCardData struct {
	GameID     string    `json:"gameId"`
	DraftIndex int       `json:"draftIndex"`
	Card       deck.Card `json:"card"`
}

type DraftIndexCardsData struct {
	GameID     string      `json:"gameId"`
	DraftIndex int         `json:"draftIndex"`
	Cards      []deck.Card `json:"cards"`
}

type ReorderHandData struct {
	GameID string      `json:"gameId"`
	Cards  []deck.Card `json:"cards"`
}

type RespondToCallData struct {
	GameID string `json:"gameId"`
	Allow  bool   `json:"allow"`
}

// Server → Client Messages

type GameJoinedData struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type PlayerJoinedData struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
	IsBot      bool   `json:"isBot"`
}

type CallEventData struct {
	GameID     string `json:"gameId"`
	CallerID   string `json:"callerId"`
	CallerName string `json:"callerName"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
