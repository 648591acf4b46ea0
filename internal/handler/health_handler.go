package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	serviceName  = "taskflow-board-api"
	readyTimeout = 2 * time.Second
)

// RelayStatus reports the state of the cross-instance relay
type RelayStatus interface {
	State() string
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	relay RelayStatus
}

// NewHealthHandler creates a health handler. redis and relay may be nil.
func NewHealthHandler(db *gorm.DB, redis *redis.Client, relay RelayStatus) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
		relay: relay,
	}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Fails only when the database is unreachable; Redis and relay state are reported
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.pingDatabase(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}

	body := gin.H{"status": "ready"}
	if h.redis != nil {
		body["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			body["redis"] = "unreachable"
		}
	}
	if h.relay != nil {
		body["relay"] = h.relay.State()
	}
	c.JSON(http.StatusOK, body)
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return errors.New("database error")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.New("database not reachable")
	}
	return nil
}
