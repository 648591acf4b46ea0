package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/response"
)

// BoardClient talks to the board HTTP API on behalf of a single user
type BoardClient interface {
	// FetchSnapshot loads the full board state
	FetchSnapshot(ctx context.Context, boardID uuid.UUID) (*dto.BoardSnapshotResponse, error)
	// MoveTask asks the server to move a task
	MoveTask(ctx context.Context, taskID, targetListID uuid.UUID, newPosition int) (*dto.MoveTaskResponse, error)
}

// boardClient implements BoardClient
type boardClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewBoardClient creates a client for the API rooted at baseURL (for example http://localhost:8000/api)
func NewBoardClient(baseURL, token string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) BoardClient {
	return &boardClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

// FetchSnapshot calls GET /boards/:boardId/snapshot
func (c *boardClient) FetchSnapshot(ctx context.Context, boardID uuid.UUID) (*dto.BoardSnapshotResponse, error) {
	url := fmt.Sprintf("%s/boards/%s/snapshot", c.baseURL, boardID)

	var snap dto.BoardSnapshotResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// MoveTask calls PUT /tasks/:taskId/move
func (c *boardClient) MoveTask(ctx context.Context, taskID, targetListID uuid.UUID, newPosition int) (*dto.MoveTaskResponse, error) {
	url := fmt.Sprintf("%s/tasks/%s/move", c.baseURL, taskID)
	body := dto.MoveTaskRequest{TargetListID: &targetListID, NewPosition: &newPosition}

	var res dto.MoveTaskResponse
	if err := c.do(ctx, http.MethodPut, url, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// do sends one request and unwraps the {"data": ...} envelope into out.
// Non-2xx responses come back as *response.AppError carrying the server's code.
func (c *boardClient) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall(url, method, statusCode, duration, err)
	}

	if err != nil {
		c.logger.Warn("Board API request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return response.NewUnavailableError("Board API unreachable", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := decodeError(resp.StatusCode, raw)
		c.logger.Debug("Board API returned error",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
			zap.String("code", appErr.Code),
		)
		return appErr
	}

	if out == nil {
		return nil
	}
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) *response.AppError {
	var body struct {
		Error response.ErrorDetail `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Code != "" {
		return response.NewAppError(body.Error.Code, body.Error.Message, "")
	}

	code := response.ErrCodeInternal
	switch {
	case status == http.StatusNotFound:
		code = response.ErrCodeNotFound
	case status == http.StatusUnauthorized:
		code = response.ErrCodeUnauthorized
	case status == http.StatusForbidden:
		code = response.ErrCodeForbidden
	case status == http.StatusServiceUnavailable:
		code = response.ErrCodeUnavailable
	}
	return response.NewAppError(code, http.StatusText(status), "")
}
