package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
)

// AuthTokenRepository implements domain.AuthTokenRepository using PostgreSQL
type AuthTokenRepository struct {
	pool *pgxpool.Pool
}

// NewAuthTokenRepository creates a new AuthTokenRepository
func NewAuthTokenRepository(pool *pgxpool.Pool) *AuthTokenRepository {
	return &AuthTokenRepository{pool: pool}
}

// Create inserts a new auth token
func (r *AuthTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	query := `
		INSERT INTO auth_tokens (id, user_id, token_hash, token_prefix)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	q := queryerFrom(ctx, r.pool)
	if err := q.QueryRow(ctx, query, token.ID, token.UserID, token.TokenHash, token.TokenPrefix).Scan(&token.CreatedAt); err != nil {
		return fmt.Errorf("create auth token: %w", err)
	}
	return nil
}

// GetByHash retrieves an active (non-revoked) token by its hash
func (r *AuthTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.AuthToken, error) {
	query := `
		SELECT id, user_id, token_hash, token_prefix, last_used_at, created_at, revoked_at
		FROM auth_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL`

	var t domain.AuthToken
	var lastUsedAt, revokedAt pgtype.Timestamptz

	q := queryerFrom(ctx, r.pool)
	err := q.QueryRow(ctx, query, hash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.TokenPrefix,
		&lastUsedAt,
		&t.CreatedAt,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuthTokenNotFound
		}
		return nil, fmt.Errorf("get auth token: %w", err)
	}

	t.LastUsedAt = pgTimestampToPtr(lastUsedAt)
	t.RevokedAt = pgTimestampToPtr(revokedAt)
	return &t, nil
}

// Revoke marks one token revoked
func (r *AuthTokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	query := `
		UPDATE auth_tokens
		SET revoked_at = now()
		WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL`

	q := queryerFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("revoke auth token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuthTokenNotFound
	}
	return nil
}

// RevokeAllForUser revokes every active token for a user
func (r *AuthTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE auth_tokens
		SET revoked_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL`

	q := queryerFrom(ctx, r.pool)
	if _, err := q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke auth tokens: %w", err)
	}
	return nil
}

// UpdateLastUsed records when the token last authenticated a request
func (r *AuthTokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	q := queryerFrom(ctx, r.pool)
	if _, err := q.Exec(ctx, `UPDATE auth_tokens SET last_used_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("update auth token last used: %w", err)
	}
	return nil
}
