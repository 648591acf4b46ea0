package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ConnConfig tunes the websocket pumps
type ConnConfig struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

// DefaultConnConfig mirrors the server defaults
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		SendBuffer:     256,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 8192,
	}
}

// ClientMessage is a subscription control frame sent by the browser
type ClientMessage struct {
	Type    string    `json:"type"`
	BoardID uuid.UUID `json:"boardId"`
}

const (
	MessageJoin  = "join"
	MessageLeave = "leave"
)

// Conn is one websocket observer. It implements Subscriber.
type Conn struct {
	id     string
	userID uuid.UUID
	ws     *websocket.Conn
	hub    *Hub
	cfg    ConnConfig
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewConn wraps an upgraded websocket for the given user
func NewConn(ws *websocket.Conn, hub *Hub, userID uuid.UUID, cfg ConnConfig, logger *zap.Logger) *Conn {
	if cfg.SendBuffer <= 0 {
		cfg = DefaultConnConfig()
	}
	return &Conn{
		id:     uuid.NewString(),
		userID: userID,
		ws:     ws,
		hub:    hub,
		cfg:    cfg,
		logger: logger,
		send:   make(chan []byte, cfg.SendBuffer),
	}
}

func (c *Conn) ID() string {
	return c.id
}

// Deliver queues msg without blocking. A full buffer or closed connection drops it.
func (c *Conn) Deliver(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Serve runs the pumps and returns once the peer has gone away
func (c *Conn) Serve() {
	go c.writePump()
	c.readPump()
}

func (c *Conn) shutdown() {
	c.logger.Debug("Connection closed",
		zap.String("conn_id", c.id),
		zap.Int("boards", len(c.hub.BoardsOf(c.id))),
	)
	c.hub.UnsubscribeAll(c.id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Conn) readPump() {
	defer func() {
		c.shutdown()
		c.ws.Close()
	}()

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Conn) handleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.BoardID == uuid.Nil {
		c.logger.Debug("Ignoring malformed client message", zap.String("conn_id", c.id))
		return
	}

	switch msg.Type {
	case MessageJoin:
		c.hub.Subscribe(c, msg.BoardID)
		c.logger.Debug("Joined board",
			zap.String("conn_id", c.id),
			zap.String("user_id", c.userID.String()),
			zap.String("board_id", msg.BoardID.String()),
		)
	case MessageLeave:
		c.hub.Unsubscribe(c.id, msg.BoardID)
	default:
		c.logger.Debug("Ignoring unknown client message", zap.String("type", msg.Type))
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
