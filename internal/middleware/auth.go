package middleware

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey contextKey = "user_id"
	// AuthTokenIDKey is the context key for the bearer token ID
	AuthTokenIDKey contextKey = "auth_token_id"
)

// tokenPrefix is the required prefix of every bearer token
const tokenPrefix = "expt_"

// TokenValidator provides bearer token validation
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.AuthToken, error)
}

// AuthMiddleware provides bearer token authentication middleware
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate returns an Echo middleware that validates bearer tokens
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			token := parts[1]

			// Validate token format - must start with "expt_"
			if !strings.HasPrefix(token, tokenPrefix) {
				return unauthorizedError(c, "Invalid token format")
			}

			authToken, err := m.validator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				if err == domain.ErrAuthTokenNotFound {
					log.Debug().Msg("Bearer token not found or revoked")
					return unauthorizedError(c, "Invalid or expired token")
				}
				log.Error().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Token validation failed")
			}

			// Set context values
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, authToken.UserID)
			ctx = context.WithValue(ctx, AuthTokenIDKey, authToken.ID)

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user ID from the context
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetAuthTokenID extracts the bearer token ID from the context
func GetAuthTokenID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(AuthTokenIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
