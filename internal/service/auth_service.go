package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	// tokenPrefix is the prefix for all bearer tokens
	tokenPrefix = "expt_"
	// tokenRandomBytes is the number of random bytes for the token (32 bytes = 256 bits)
	tokenRandomBytes = 32
	// tokenPrefixLength is the length of the displayable prefix (e.g., "expt_abc...")
	tokenPrefixLength = 8
)

// AuthService handles registration, login, and bearer token validation
type AuthService struct {
	userRepo  domain.UserRepository
	tokenRepo domain.AuthTokenRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, tokenRepo domain.AuthTokenRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// LoginResult holds the outcome of a successful registration or login.
// Token carries the raw bearer token; it is shown to the client once and
// only its hash is stored.
type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new user and logs them in
func (s *AuthService) Register(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	if len(username) > domain.MaxUsernameLength {
		return nil, domain.ErrUsernameTooLong
	}
	if len(password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("User registered")

	return s.issueToken(ctx, user)
}

// Login verifies credentials and issues a new bearer token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		// Same error for unknown user and bad password
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueToken(ctx, user)
}

// Logout revokes the bearer token used for the current session
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, tokenID uuid.UUID) error {
	if err := s.tokenRepo.Revoke(ctx, userID, tokenID); err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("token_id", tokenID.String()).
			Msg("Failed to revoke auth token")
		return err
	}
	return nil
}

// GetProfile returns the user's profile
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdatePassword changes the user's password and revokes all other sessions
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	if len(newPassword) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	if _, err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// A changed password invalidates every existing session
	if err := s.tokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Msg("Failed to revoke sessions after password change")
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Msg("Password updated, sessions revoked")

	return nil
}

// ValidateToken resolves a bearer token to its auth token record
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthToken, error) {
	// Validate token format - must start with expt_ prefix
	if len(token) < len(tokenPrefix) || token[:len(tokenPrefix)] != tokenPrefix {
		return nil, domain.ErrAuthTokenNotFound
	}

	authToken, err := s.tokenRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}

	// Update last used timestamp asynchronously
	go func() {
		if updateErr := s.tokenRepo.UpdateLastUsed(context.Background(), authToken.ID); updateErr != nil {
			log.Error().Err(updateErr).Str("token_id", authToken.ID.String()).Msg("Failed to update last_used_at")
		}
	}()

	return authToken, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *domain.User) (*LoginResult, error) {
	rawToken, err := generateSecureToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate secure token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	fullToken := tokenPrefix + rawToken

	token := &domain.AuthToken{
		UserID:      user.ID,
		TokenHash:   hashToken(fullToken),
		TokenPrefix: tokenPrefix + rawToken[:tokenPrefixLength] + "...",
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create auth token")
		return nil, err
	}

	return &LoginResult{
		User:  user,
		Token: fullToken,
	}, nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken() (string, error) {
	bytes := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use URL-safe base64 encoding without padding
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", hash)
}
