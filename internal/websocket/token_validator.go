package websocket

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned when bearer token validation fails
var ErrInvalidToken = errors.New("invalid token")

// TokenValidator resolves a bearer token to the user it belongs to.
// The auth service implements this against the auth_tokens table.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID uuid.UUID, err error)
}
