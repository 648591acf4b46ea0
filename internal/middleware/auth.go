package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskflow-board-api/internal/response"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "user_id"
	ContextToken  = "jwtToken"
)

var (
	errMissingUserID = errors.New("user id not found in token")
	errInvalidUserID = errors.New("invalid user id format")
	errMissingHeader = errors.New("authorization header is required")
	errBadScheme     = errors.New("invalid authorization header format")
)

// TokenValidator resolves a bearer token to a user id
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error)
}

// JWTValidator validates HMAC-signed JWTs locally
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for tokens signed with secret
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// userIDClaims are tried in order; tokens from the account service carry
// user_id, third-party issuers use sub
var userIDClaims = []string{"user_id", "sub", "uid"}

// ValidateToken verifies an HMAC signature and expiry and returns the user id claim
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return uuid.Nil, err
	}

	for _, name := range userIDClaims {
		raw, ok := claims[name].(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errInvalidUserID
		}
		return userID, nil
	}
	return uuid.Nil, errMissingUserID
}

// AuthWithValidator rejects requests without a valid bearer token and stores
// the caller's id under ContextUserID
func AuthWithValidator(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if errors.Is(err, errMissingHeader) {
			unauthorized(c, "Authorization header is required")
			return
		}
		if err != nil {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		userID, err := validator.ValidateToken(ctx, token)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errBadScheme
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(c *gin.Context, message string) {
	response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, message)
	c.Abort()
}
