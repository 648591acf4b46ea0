package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskflow-board-api/internal/response"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{response.ErrCodeNotFound, http.StatusNotFound},
		{response.ErrCodeForbidden, http.StatusForbidden},
		{response.ErrCodeValidation, http.StatusBadRequest},
		{response.ErrCodeConflict, http.StatusConflict},
		{response.ErrCodeAborted, http.StatusConflict},
		{response.ErrCodeAlreadyExists, http.StatusConflict},
		{response.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{response.ErrCodeUnauthorized, http.StatusUnauthorized},
		{response.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapErrorCodeToHTTPStatus(tt.code))
		})
	}
}
