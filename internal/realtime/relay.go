package realtime

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"taskflow-board-api/internal/metrics"
)

// RelayConfig configures the redis relay
type RelayConfig struct {
	ChannelPrefix  string
	MaxFailures    int
	OpenTimeout    time.Duration
	ReconnectDelay time.Duration
}

// RedisRelay fans events out across instances through redis pub/sub.
// Publish writes to redis only; every instance, this one included, delivers
// to its local hub from the subscription loop started by Run. When redis is
// unreachable or the breaker is open, events are delivered to the local hub
// directly so watchers on this instance still see them.
//
// Ordering holds per path only. If the breaker trips between two publishes
// of one operation (taskMoved then activity:new), the second is delivered
// locally at once while the first may still be in flight through redis, so
// local watchers can see them swapped. Clients reconcile each event on its
// own and resync from a snapshot when one cannot be applied.
type RedisRelay struct {
	client  *redis.Client
	hub     *Hub
	cfg     RelayConfig
	breaker *gobreaker.CircuitBreaker[struct{}]

	ready     chan struct{}
	readyOnce sync.Once

	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRedisRelay creates a relay delivering into hub. m may be nil.
func NewRedisRelay(client *redis.Client, hub *Hub, cfg RelayConfig, m *metrics.Metrics, logger *zap.Logger) *RedisRelay {
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = "taskflow:board:"
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 2 * time.Second
	}

	maxFailures := uint32(cfg.MaxFailures)
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "redis-relay",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &RedisRelay{
		client:  client,
		hub:     hub,
		cfg:     cfg,
		breaker: cb,
		ready:   make(chan struct{}),
		metrics: m,
		logger:  logger,
	}
}

func (r *RedisRelay) channel(boardID uuid.UUID) string {
	return r.cfg.ChannelPrefix + boardID.String()
}

// Publish sends the event through redis, falling back to local delivery
func (r *RedisRelay) Publish(ctx context.Context, boardID uuid.UUID, event string, payload interface{}) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "realtime.RedisRelay.Publish")
	defer span.End()
	span.SetAttributes(attribute.String("board.id", boardID.String()), attribute.String("event", event))

	msg, err := Encode(boardID, event, payload)
	if err != nil {
		return err
	}

	_, err = r.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, r.client.Publish(ctx, r.channel(boardID), msg).Err()
	})
	if err != nil {
		r.logger.Warn("Redis relay unavailable, delivering locally",
			zap.String("board_id", boardID.String()),
			zap.String("event", event),
			zap.Bool("breaker_open", errors.Is(err, gobreaker.ErrOpenState)),
			zap.Error(err),
		)
		if r.metrics != nil {
			r.metrics.IncrementRelayFallback()
		}
		r.hub.Broadcast(boardID, msg)
	}

	if r.metrics != nil {
		r.metrics.IncrementEventPublished(event)
	}
	return nil
}

// Ready is closed once the first subscription has been confirmed by redis
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// State reports the breaker state for health output
func (r *RedisRelay) State() string {
	return r.breaker.State().String()
}

// Run consumes the board channels until ctx is cancelled, resubscribing after errors
func (r *RedisRelay) Run(ctx context.Context) {
	for {
		err := r.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("Redis relay subscription lost",
			zap.Error(err),
			zap.Duration("retry_in", r.cfg.ReconnectDelay),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.cfg.ReconnectDelay):
		}
	}
}

func (r *RedisRelay) consume(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, r.cfg.ChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	r.readyOnce.Do(func() { close(r.ready) })
	r.logger.Info("Redis relay subscribed", zap.String("pattern", r.cfg.ChannelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return errors.New("redis relay channel closed")
			}
			r.deliver(m)
		}
	}
}

func (r *RedisRelay) deliver(m *redis.Message) {
	boardID, err := uuid.Parse(strings.TrimPrefix(m.Channel, r.cfg.ChannelPrefix))
	if err != nil {
		r.logger.Warn("Ignoring relay message on unexpected channel", zap.String("channel", m.Channel))
		return
	}
	r.hub.Broadcast(boardID, []byte(m.Payload))
}
