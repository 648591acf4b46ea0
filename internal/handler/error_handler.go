package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow-board-api/internal/response"
)

var statusByCode = map[string]int{
	response.ErrCodeNotFound:      http.StatusNotFound,
	response.ErrCodeAlreadyExists: http.StatusConflict,
	response.ErrCodeConflict:      http.StatusConflict,
	response.ErrCodeAborted:       http.StatusConflict,
	response.ErrCodeValidation:    http.StatusBadRequest,
	response.ErrCodeUnauthorized:  http.StatusUnauthorized,
	response.ErrCodeForbidden:     http.StatusForbidden,
	response.ErrCodeUnavailable:   http.StatusServiceUnavailable,
}

// handleServiceError writes the error response for err. Only 5xx outcomes
// are logged above debug; details never reach the client.
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *response.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, gorm.ErrRecordNotFound):
		appErr = response.NewNotFoundError("Resource not found", "")
	default:
		appErr = response.NewAppError(response.ErrCodeInternal, "Internal server error", err.Error())
	}

	status := mapErrorCodeToHTTPStatus(appErr.Code)
	fields := []zap.Field{
		zap.String("code", appErr.Code),
		zap.String("message", appErr.Message),
		zap.String("route", c.FullPath()),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Service error", append(fields, zap.String("details", appErr.Details))...)
	} else {
		logger.Debug("Request rejected", fields...)
	}
	response.SendError(c, status, appErr.Code, appErr.Message)
}

func mapErrorCodeToHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
