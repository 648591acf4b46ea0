package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-board-api/internal/realtime"
)

type streamServer struct {
	hub    *realtime.Hub
	srv    *httptest.Server
	tokens chan string

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newStreamServer(t *testing.T) *streamServer {
	t.Helper()
	s := &streamServer{
		hub:    realtime.NewHub(nil, zap.NewNop()),
		tokens: make(chan string, 8),
	}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.tokens <- r.URL.Query().Get("token")
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, ws)
		s.mu.Unlock()
		realtime.NewConn(ws, s.hub, uuid.New(), realtime.DefaultConnConfig(), zap.NewNop()).Serve()
	}))
	t.Cleanup(s.srv.Close)
	return s
}

// dropAll closes every server-side socket
func (s *streamServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ws := range s.conns {
		ws.Close()
	}
	s.conns = nil
}

func (s *streamServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func startStream(t *testing.T, cfg StreamConfig) (*StreamClient, context.CancelFunc, <-chan error) {
	t.Helper()
	sc := NewStreamClient(cfg, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sc.Run(ctx) }()
	t.Cleanup(cancel)
	return sc, cancel, done
}

func TestStreamClient_JoinAndReceive(t *testing.T) {
	server := newStreamServer(t)
	board := uuid.New()

	sc, _, _ := startStream(t, StreamConfig{URL: server.wsURL(), Token: "abc"})
	require.NoError(t, sc.Join(board))

	select {
	case <-sc.Connected():
	case <-time.After(5 * time.Second):
		t.Fatal("stream never connected")
	}
	assert.Equal(t, "abc", <-server.tokens)
	require.Eventually(t, func() bool { return server.hub.SubscriberCount(board) == 1 }, 5*time.Second, 10*time.Millisecond)

	msg, err := realtime.Encode(board, "taskDeleted", map[string]string{"taskId": uuid.NewString()})
	require.NoError(t, err)
	server.hub.Broadcast(board, msg)

	select {
	case env := <-sc.Events():
		assert.Equal(t, "taskDeleted", env.Event)
		assert.Equal(t, board, env.BoardID)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	require.NoError(t, sc.Leave(board))
	assert.Eventually(t, func() bool { return server.hub.SubscriberCount(board) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestStreamClient_RejoinsAfterReconnect(t *testing.T) {
	server := newStreamServer(t)
	board := uuid.New()

	sc, _, _ := startStream(t, StreamConfig{URL: server.wsURL(), ReconnectDelay: 20 * time.Millisecond})
	require.NoError(t, sc.Join(board))
	<-sc.Connected()
	require.Eventually(t, func() bool { return server.hub.SubscriberCount(board) == 1 }, 5*time.Second, 10*time.Millisecond)

	server.dropAll()

	select {
	case <-sc.Connected():
	case <-time.After(5 * time.Second):
		t.Fatal("stream never reconnected")
	}
	assert.Eventually(t, func() bool { return server.hub.SubscriberCount(board) == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestStreamClient_StopsOnCancel(t *testing.T) {
	server := newStreamServer(t)

	sc, cancel, done := startStream(t, StreamConfig{URL: server.wsURL()})
	<-sc.Connected()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	_, open := <-sc.Events()
	assert.False(t, open)
}

func TestStreamClient_RetriesWhenServerDown(t *testing.T) {
	server := newStreamServer(t)
	url := server.wsURL()
	server.srv.Close()

	sc, cancel, done := startStream(t, StreamConfig{URL: url, ReconnectDelay: 10 * time.Millisecond})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
	select {
	case <-sc.Connected():
		t.Fatal("should never have connected")
	default:
	}
}
