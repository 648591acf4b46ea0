package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/middleware"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/response"
)

type WebSocketHandler struct {
	hub       *realtime.Hub
	validator middleware.TokenValidator
	cfg       realtime.ConnConfig
	upgrader  websocket.Upgrader
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, validator middleware.TokenValidator, cfg realtime.ConnConfig, m *metrics.Metrics, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		validator: validator,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		metrics: m,
		logger:  logger,
	}
}

// Connect godoc
// @Summary      Open the board event stream
// @Description  Upgrades to a websocket. Send {"type":"join","boardId":...} or {"type":"leave","boardId":...} to control subscriptions; events arrive as {"event","boardId","payload","sentAt"}.
// @Tags         realtime
// @Param        token query string false "JWT, when the Authorization header cannot be set"
// @Success      101
// @Failure      401 {object} response.ErrorResponse
// @Router       /ws [get]
func (h *WebSocketHandler) Connect(c *gin.Context) {
	// browsers cannot set headers on a websocket handshake
	token := c.Query("token")
	if token == "" {
		var err error
		if token, err = middleware.BearerToken(c.GetHeader("Authorization")); err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Token is required")
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	userID, err := h.validator.ValidateToken(ctx, token)
	cancel()
	if err != nil {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	conn := realtime.NewConn(ws, h.hub, userID, h.cfg, h.logger)
	h.logger.Info("WebSocket connected",
		zap.String("conn_id", conn.ID()),
		zap.String("user_id", userID.String()),
	)
	if h.metrics != nil {
		h.metrics.WSConnected()
		defer h.metrics.WSDisconnected()
	}

	conn.Serve()

	h.logger.Info("WebSocket disconnected",
		zap.String("conn_id", conn.ID()),
		zap.String("user_id", userID.String()),
	)
}
