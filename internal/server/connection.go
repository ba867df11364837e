package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/kalooki/internal/game"
)

// Connection represents a WebSocket connection to a client.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	gameID    string
	logger    *log.Logger
	registry  *Registry
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper.
func NewConnection(conn *websocket.Conn, logger *log.Logger, registry *Registry) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		logger:   logger.WithPrefix("conn"),
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown.
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player identity.
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID.
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetGame associates this connection with a game.
func (c *Connection) SetGame(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

// GetGame returns the associated game ID.
func (c *Connection) GetGame() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 65536
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches one client command.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeCreateGame:
		withData(c, msg, func(data CreateGameData) { c.handleCreateGame(data) })
	case MessageTypeJoinGame:
		withData(c, msg, func(data JoinGameData) { c.handleJoinGame(data) })
	case MessageTypeRejoinGame:
		withData(c, msg, func(data RejoinGameData) { c.handleRejoinGame(data) })
	case MessageTypeAddBot:
		withData(c, msg, func(data AddBotData) { c.handleAddBot(data) })

	case MessageTypeStartGame:
		withData(c, msg, func(data GameRefData) {
			c.applyCommand(data.GameID, func(g *game.Game, _ string) error { return g.Start() })
		})
	case MessageTypeResetGame:
		withData(c, msg, func(data GameRefData) {
			c.applyCommand(data.GameID, func(g *game.Game, _ string) error { return g.Reset() })
		})

	case MessageTypeDrawCard:
		withData(c, msg, func(data DrawCardData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.Draw(pid, data.FromDiscard)
			})
		})
	case MessageTypeReadyToDiscard:
		withData(c, msg, func(data GameRefData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.ReadyToDiscard(pid)
			})
		})
	case MessageTypeDiscardCard:
		withData(c, msg, func(data DiscardCardData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.Discard(pid, data.Card)
			})
		})
	case MessageTypeLayDownDraftMelds:
		withData(c, msg, func(data GameRefData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.LayDownDrafts(pid)
			})
		})
	case MessageTypeAddToMeld:
		withData(c, msg, func(data AddToMeldData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.AddToTableMeld(pid, data.MeldIndex, data.Cards)
			})
		})

	case MessageTypeAddDraftMeld:
		withData(c, msg, func(data DraftCardsData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.AddDraftMeld(pid, data.Cards)
			})
		})
	case MessageTypeRemoveDraftMeld:
		withData(c, msg, func(data DraftCardsData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.RemoveDraftMeld(pid, data.Cards)
			})
		})
	case MessageTypeRemoveCardFromDraft:
		withData(c, msg, func(data DraftCardData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.RemoveCardFromDraft(pid, data.DraftIndex, data.Card)
			})
		})
	case MessageTypeReorderDraftMeld:
		withData(c, msg, func(data DraftIndexCardsData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.ReorderDraftMeld(pid, data.DraftIndex, data.Cards)
			})
		})
	case MessageTypeAddCardsToDraft:
		withData(c, msg, func(data DraftIndexCardsData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.AddCardsToDraft(pid, data.DraftIndex, data.Cards)
			})
		})
	case MessageTypeReorderHand:
		withData(c, msg, func(data ReorderHandData) {
			c.applyCommand(data.GameID, func(g *game.Game, pid string) error {
				return g.ReorderHand(pid, data.Cards)
			})
		})

	case MessageTypeCall:
		withData(c, msg, func(data GameRefData) { c.handleCall(data) })
	case MessageTypeRespondToCall:
		withData(c, msg, func(data RespondToCallData) { c.handleRespondToCall(data) })

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// withData decodes the message payload and runs the handler, reporting a
// parse failure to the client.
func withData[T any](c *Connection, msg *Message, handle func(T)) {
	var data T
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "Failed to parse message data")
		return
	}
	handle(data)
}

func (c *Connection) handleCreateGame(data CreateGameData) {
	if data.PlayerName == "" {
		c.sendError("invalid_message", "Player name required")
		return
	}

	rules := game.DefaultRules()
	if data.Rules != nil {
		rules = *data.Rules
	}

	session := c.registry.Create(rules)
	playerID, err := session.Join(data.PlayerName)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	c.bindSeat(session.ID(), playerID, data.PlayerName)
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	if data.PlayerName == "" {
		c.sendError("invalid_message", "Player name required")
		return
	}

	session, ok := c.registry.Get(data.GameID)
	if !ok {
		c.sendError("game_not_found", "No such game: "+data.GameID)
		return
	}

	playerID, err := session.Join(data.PlayerName)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	c.bindSeat(data.GameID, playerID, data.PlayerName)
}

func (c *Connection) handleRejoinGame(data RejoinGameData) {
	session, ok := c.registry.Get(data.GameID)
	if !ok {
		c.sendError("game_not_found", "No such game: "+data.GameID)
		return
	}

	playerID, err := session.Rejoin(data.PlayerName)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	c.bindSeat(data.GameID, playerID, data.PlayerName)
}

func (c *Connection) handleAddBot(data AddBotData) {
	session, ok := c.registry.Get(data.GameID)
	if !ok {
		c.sendError("game_not_found", "No such game: "+data.GameID)
		return
	}

	if _, err := session.AddBot(); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Connection) handleCall(data GameRefData) {
	session, ok := c.registry.Get(data.GameID)
	if !ok {
		c.sendError("game_not_found", "No such game: "+data.GameID)
		return
	}

	if err := session.Call(c.GetPlayer()); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Connection) handleRespondToCall(data RespondToCallData) {
	session, ok := c.registry.Get(data.GameID)
	if !ok {
		c.sendError("game_not_found", "No such game: "+data.GameID)
		return
	}

	if err := session.RespondToCall(c.GetPlayer(), data.Allow); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

// applyCommand routes a per-player game command through the session.
func (c *Connection) applyCommand(gameID string, cmd func(g *game.Game, playerID string) error) {
	session, ok := c.registry.Get(gameID)
	if !ok {
		c.sendError("game_not_found", "No such game: "+gameID)
		return
	}

	playerID := c.GetPlayer()
	if err := session.Apply(func(g *game.Game) error { return cmd(g, playerID) }); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

// bindSeat records the seat identity and confirms it to the client along
// with the current game state.
func (c *Connection) bindSeat(gameID, playerID, playerName string) {
	c.SetPlayer(playerID)
	c.SetGame(gameID)

	joined, _ := NewMessage(MessageTypeGameJoined, GameJoinedData{
		GameID:     gameID,
		PlayerID:   playerID,
		PlayerName: playerName,
	})
	_ = c.SendMessage(joined)

	if session, ok := c.registry.Get(gameID); ok {
		if state, err := session.State(); err == nil {
			_ = c.SendMessage(state)
		}
	}
}

// sendError sends an error message to the client.
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// errorCode maps game errors onto stable wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrWrongTurn):
		return "wrong_turn"
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrCardNotInHand):
		return "card_not_in_hand"
	case errors.Is(err, game.ErrInvalidMeld):
		return "invalid_meld"
	case errors.Is(err, game.ErrMeldRequirements):
		return "meld_requirements_not_met"
	case errors.Is(err, game.ErrNoSuchMeld), errors.Is(err, game.ErrNoSuchDraft):
		return "no_such_meld"
	case errors.Is(err, game.ErrEmptyPile):
		return "empty_pile"
	case errors.Is(err, game.ErrCallNotAvailable), errors.Is(err, game.ErrCallIneligible),
		errors.Is(err, game.ErrCallPending), errors.Is(err, game.ErrNoCallPending):
		return "call_rejected"
	case errors.Is(err, game.ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, game.ErrPlayerNameTaken):
		return "name_taken"
	case errors.Is(err, game.ErrInvalidHandOrder), errors.Is(err, game.ErrInvalidDraftOrder):
		return "invalid_order"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, game.ErrGameStarted):
		return "game_already_started"
	default:
		return "command_failed"
	}
}
