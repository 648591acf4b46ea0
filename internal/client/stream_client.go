package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskflow-board-api/internal/realtime"
)

// StreamConfig configures a StreamClient
type StreamConfig struct {
	// URL of the websocket endpoint, for example ws://localhost:8000/api/ws
	URL              string
	Token            string
	ReconnectDelay   time.Duration
	HandshakeTimeout time.Duration
	EventBuffer      int
}

// StreamClient keeps a websocket open to the board service, re-joining its
// boards after every reconnect
type StreamClient struct {
	cfg    StreamConfig
	dialer *websocket.Dialer
	logger *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	boards map[uuid.UUID]struct{}

	events     chan realtime.Envelope
	reconnects chan struct{}
}

// NewStreamClient creates a stream client. Nothing is dialed until Run.
func NewStreamClient(cfg StreamConfig, logger *zap.Logger) *StreamClient {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 2 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	return &StreamClient{
		cfg:        cfg,
		dialer:     &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		logger:     logger,
		boards:     make(map[uuid.UUID]struct{}),
		events:     make(chan realtime.Envelope, cfg.EventBuffer),
		reconnects: make(chan struct{}, 1),
	}
}

// Events delivers decoded envelopes. It is closed when Run returns.
func (s *StreamClient) Events() <-chan realtime.Envelope {
	return s.events
}

// Connected receives a value after every successful (re)connect. Events sent
// while the stream was down are lost, so consumers should refetch.
func (s *StreamClient) Connected() <-chan struct{} {
	return s.reconnects
}

// Join subscribes to a board now if connected and after every reconnect
func (s *StreamClient) Join(boardID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[boardID] = struct{}{}
	return s.sendLocked(realtime.MessageJoin, boardID)
}

// Leave stops the subscription to a board
func (s *StreamClient) Leave(boardID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, boardID)
	return s.sendLocked(realtime.MessageLeave, boardID)
}

func (s *StreamClient) sendLocked(msgType string, boardID uuid.UUID) error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.WriteJSON(realtime.ClientMessage{Type: msgType, BoardID: boardID}); err != nil {
		return fmt.Errorf("failed to send %s: %w", msgType, err)
	}
	return nil
}

// Run dials, reads and reconnects until ctx is cancelled
func (s *StreamClient) Run(ctx context.Context) error {
	defer close(s.events)

	for {
		conn, err := s.dial(ctx)
		if err != nil {
			s.logger.Warn("Stream dial failed",
				zap.String("url", s.cfg.URL),
				zap.Error(err),
			)
		} else {
			s.serve(ctx, conn)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
}

func (s *StreamClient) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid stream url: %w", err)
	}
	if s.cfg.Token != "" {
		q := u.Query()
		q.Set("token", s.cfg.Token)
		u.RawQuery = q.Encode()
	}

	conn, _, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// serve registers the connection, re-joins boards and reads until the
// connection fails or ctx ends
func (s *StreamClient) serve(ctx context.Context, conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	for boardID := range s.boards {
		if err := s.sendLocked(realtime.MessageJoin, boardID); err != nil {
			s.logger.Warn("Failed to re-join board", zap.String("board_id", boardID.String()), zap.Error(err))
		}
	}
	s.mu.Unlock()

	select {
	case s.reconnects <- struct{}{}:
	default:
	}
	s.logger.Info("Stream connected", zap.String("url", s.cfg.URL))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("Stream disconnected", zap.Error(err))
			}
			return
		}

		env, err := realtime.Decode(msg)
		if err != nil {
			s.logger.Debug("Ignoring undecodable frame", zap.Error(err))
			continue
		}

		select {
		case s.events <- env:
		case <-ctx.Done():
			return
		}
	}
}
