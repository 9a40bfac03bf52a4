package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthToken represents an opaque bearer token issued at login
type AuthToken struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	TokenHash   string     `json:"-"` // Never expose hash
	TokenPrefix string     `json:"tokenPrefix"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
}

// AuthTokenRepository defines the interface for auth token persistence
type AuthTokenRepository interface {
	Create(ctx context.Context, token *AuthToken) error
	GetByHash(ctx context.Context, hash string) (*AuthToken, error)
	Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}
