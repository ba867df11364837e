package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFreePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func startTestServer(t *testing.T) (port int) {
	t.Helper()
	port = findFreePort(t)
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	srv := NewServer(fmt.Sprintf("127.0.0.1:%d", port), logger)
	registry := NewRegistry(logger, quartz.NewReal(), nil, srv.BroadcastToGame)
	srv.SetRegistry(registry)

	go func() { _ = srv.Start() }()
	t.Cleanup(func() { _ = srv.Stop() })

	// Wait for the listener to come up.
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
	return port
}

func dialTestClient(t *testing.T, port int) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", port)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, mt MessageType, data interface{}) {
	t.Helper()
	msg, err := NewMessage(mt, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// waitForMessage reads until a message of the wanted type arrives, skipping
// interleaved updates.
func waitForMessage(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == want {
			return &msg
		}
	}
}

func TestServerCreateAndJoinGame(t *testing.T) {
	port := startTestServer(t)

	alice := dialTestClient(t, port)
	sendMessage(t, alice, MessageTypeCreateGame, CreateGameData{PlayerName: "alice"})

	joined := waitForMessage(t, alice, MessageTypeGameJoined)
	var aliceSeat GameJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &aliceSeat))
	require.NotEmpty(t, aliceSeat.GameID)
	require.NotEmpty(t, aliceSeat.PlayerID)
	assert.Equal(t, "alice", aliceSeat.PlayerName)

	// The creator also receives the initial state.
	waitForMessage(t, alice, MessageTypeGameUpdate)

	bob := dialTestClient(t, port)
	sendMessage(t, bob, MessageTypeJoinGame, JoinGameData{GameID: aliceSeat.GameID, PlayerName: "bob"})

	joined = waitForMessage(t, bob, MessageTypeGameJoined)
	var bobSeat GameJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &bobSeat))
	assert.Equal(t, aliceSeat.GameID, bobSeat.GameID)
	assert.NotEqual(t, aliceSeat.PlayerID, bobSeat.PlayerID)

	// Alice sees bob's arrival.
	evt := waitForMessage(t, alice, MessageTypePlayerJoined)
	var playerJoined PlayerJoinedData
	require.NoError(t, json.Unmarshal(evt.Data, &playerJoined))
	assert.Equal(t, "bob", playerJoined.PlayerName)
	assert.False(t, playerJoined.IsBot)

	// Starting the game reaches both clients as a state update.
	sendMessage(t, alice, MessageTypeStartGame, GameRefData{GameID: aliceSeat.GameID})
	for {
		update := waitForMessage(t, bob, MessageTypeGameUpdate)
		var state struct {
			Phase string `json:"phase"`
		}
		require.NoError(t, json.Unmarshal(update.Data, &state))
		if state.Phase == "drawing" {
			break
		}
	}
}

func TestServerJoinUnknownGame(t *testing.T) {
	port := startTestServer(t)

	conn := dialTestClient(t, port)
	sendMessage(t, conn, MessageTypeJoinGame, JoinGameData{GameID: "nope", PlayerName: "alice"})

	msg := waitForMessage(t, conn, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "game_not_found", errData.Code)
}

func TestServerRejectsDuplicateName(t *testing.T) {
	port := startTestServer(t)

	alice := dialTestClient(t, port)
	sendMessage(t, alice, MessageTypeCreateGame, CreateGameData{PlayerName: "alice"})
	joined := waitForMessage(t, alice, MessageTypeGameJoined)
	var seat GameJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &seat))

	imposter := dialTestClient(t, port)
	sendMessage(t, imposter, MessageTypeJoinGame, JoinGameData{GameID: seat.GameID, PlayerName: "alice"})

	msg := waitForMessage(t, imposter, MessageTypeError)
	var errData ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	assert.Equal(t, "name_taken", errData.Code)
}
