// Package realtime scopes mutation events to the connections watching a board.
//
// A Hub is a process-local registry of board rooms. Delivery is best-effort:
// each publish is handed to every current subscriber of the board at most
// once, with no retry and no persistence. Messages published in sequence for
// one board reach each subscriber in that sequence.
package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"taskflow-board-api/internal/metrics"
)

// Subscriber is a connection that can receive encoded envelopes.
// Deliver must not block; it returns false when the message was dropped.
type Subscriber interface {
	ID() string
	Deliver(msg []byte) bool
}

// Publisher is used by services to announce committed mutations
type Publisher interface {
	Publish(ctx context.Context, boardID uuid.UUID, event string, payload interface{}) error
}

// Hub is a concurrent-safe multimap from board to subscribed connections
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[string]Subscriber
	subs  map[string]map[uuid.UUID]struct{}

	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHub creates an empty hub. m may be nil.
func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:   make(map[uuid.UUID]map[string]Subscriber),
		subs:    make(map[string]map[uuid.UUID]struct{}),
		metrics: m,
		logger:  logger,
	}
}

// Subscribe adds sub to the board's room. Subscribing twice is a no-op.
func (h *Hub) Subscribe(sub Subscriber, boardID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[boardID]
	if !ok {
		room = make(map[string]Subscriber)
		h.rooms[boardID] = room
	}
	room[sub.ID()] = sub

	boards, ok := h.subs[sub.ID()]
	if !ok {
		boards = make(map[uuid.UUID]struct{})
		h.subs[sub.ID()] = boards
	}
	boards[boardID] = struct{}{}
}

// Unsubscribe removes the connection from the board's room. Unknown pairs are ignored.
func (h *Hub) Unsubscribe(connID string, boardID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(connID, boardID)
}

// UnsubscribeAll removes the connection from every room it joined.
// After it returns no further Deliver calls reach that connection.
func (h *Hub) UnsubscribeAll(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for boardID := range h.subs[connID] {
		h.removeLocked(connID, boardID)
	}
}

func (h *Hub) removeLocked(connID string, boardID uuid.UUID) {
	if room, ok := h.rooms[boardID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(h.rooms, boardID)
		}
	}
	if boards, ok := h.subs[connID]; ok {
		delete(boards, boardID)
		if len(boards) == 0 {
			delete(h.subs, connID)
		}
	}
}

// Broadcast hands msg to every subscriber of boardID and returns how many accepted it
func (h *Hub) Broadcast(boardID uuid.UUID, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for connID, sub := range h.rooms[boardID] {
		if sub.Deliver(msg) {
			delivered++
			continue
		}
		if h.metrics != nil {
			h.metrics.IncrementEventDropped()
		}
		h.logger.Warn("Dropped realtime event for slow subscriber",
			zap.String("board_id", boardID.String()),
			zap.String("conn_id", connID),
		)
	}
	return delivered
}

// Publish encodes the event and broadcasts it to the board's local subscribers
func (h *Hub) Publish(ctx context.Context, boardID uuid.UUID, event string, payload interface{}) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "realtime.Publish")
	defer span.End()
	span.SetAttributes(attribute.String("board.id", boardID.String()), attribute.String("event", event))

	msg, err := Encode(boardID, event, payload)
	if err != nil {
		return err
	}
	n := h.Broadcast(boardID, msg)
	if h.metrics != nil {
		h.metrics.IncrementEventPublished(event)
	}
	span.SetAttributes(attribute.Int("subscribers", n))
	return nil
}

// SubscriberCount returns the number of connections in the board's room
func (h *Hub) SubscriberCount(boardID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}

// BoardsOf returns the boards a connection is subscribed to
func (h *Hub) BoardsOf(connID string) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	boards := make([]uuid.UUID, 0, len(h.subs[connID]))
	for id := range h.subs[connID] {
		boards = append(boards, id)
	}
	return boards
}

const tracerName = "taskflow-board-api/internal/realtime"
