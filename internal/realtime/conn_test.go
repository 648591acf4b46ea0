package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startWSServer(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewConn(ws, hub, uuid.New(), DefaultConnConfig(), zap.NewNop()).Serve()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConn_JoinReceivesEventsAndLeaveStops(t *testing.T) {
	hub, _ := newTestHub()
	board := uuid.New()
	client := startWSServer(t, hub)

	require.NoError(t, client.WriteJSON(ClientMessage{Type: MessageJoin, BoardID: board}))
	require.Eventually(t, func() bool { return hub.SubscriberCount(board) == 1 }, 5*time.Second, 10*time.Millisecond)

	msg, err := Encode(board, "listCreated", map[string]string{"title": "Doing"})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Broadcast(board, msg))

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env Envelope
	require.NoError(t, client.ReadJSON(&env))
	assert.Equal(t, "listCreated", env.Event)
	assert.Equal(t, board, env.BoardID)

	require.NoError(t, client.WriteJSON(ClientMessage{Type: MessageLeave, BoardID: board}))
	assert.Eventually(t, func() bool { return hub.SubscriberCount(board) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestConn_DisconnectUnsubscribesEverywhere(t *testing.T) {
	hub, _ := newTestHub()
	boardA, boardB := uuid.New(), uuid.New()
	client := startWSServer(t, hub)

	require.NoError(t, client.WriteJSON(ClientMessage{Type: MessageJoin, BoardID: boardA}))
	require.NoError(t, client.WriteJSON(ClientMessage{Type: MessageJoin, BoardID: boardB}))
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(boardA) == 1 && hub.SubscriberCount(boardB) == 1
	}, 5*time.Second, 10*time.Millisecond)

	client.Close()

	assert.Eventually(t, func() bool {
		return hub.SubscriberCount(boardA) == 0 && hub.SubscriberCount(boardB) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestConn_IgnoresMalformedMessages(t *testing.T) {
	hub, _ := newTestHub()
	board := uuid.New()
	client := startWSServer(t, hub)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, client.WriteJSON(map[string]string{"type": "join"}))
	require.NoError(t, client.WriteJSON(ClientMessage{Type: "shout", BoardID: board}))
	require.NoError(t, client.WriteJSON(ClientMessage{Type: MessageJoin, BoardID: board}))

	assert.Eventually(t, func() bool { return hub.SubscriberCount(board) == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestConn_DeliverAfterShutdownDrops(t *testing.T) {
	hub, _ := newTestHub()
	c := &Conn{id: "c1", hub: hub, send: make(chan []byte, 1), logger: zap.NewNop()}

	assert.True(t, c.Deliver([]byte("a")))
	assert.False(t, c.Deliver([]byte("b")))

	c.shutdown()
	c.shutdown()
	assert.False(t, c.Deliver([]byte("c")))
}
