package handler

import (
	"errors"
	"net/http"

	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/middleware"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdatePasswordRequest represents the password change request body
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

// AuthResponse represents a successful register or login
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create a user account and issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "username", Message: "Username is required"},
			})
		}
		if errors.Is(err, domain.ErrUsernameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "username", Message: "Username must be 100 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrPasswordTooShort) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "password", Message: "Password must be at least 8 characters"},
			})
		}
		if errors.Is(err, domain.ErrUsernameTaken) {
			return NewConflictError(c, "Username is already taken")
		}
		log.Error().Err(err).Msg("Failed to register user")
		return NewInternalError(c, "Failed to register user")
	}

	log.Info().Str("user_id", result.User.ID.String()).Str("username", result.User.Username).Msg("User registered")

	return c.JSON(http.StatusCreated, AuthResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid username or password")
		}
		log.Error().Err(err).Msg("Failed to log in user")
		return NewInternalError(c, "Failed to log in")
	}

	log.Info().Str("user_id", result.User.ID.String()).Msg("User logged in")

	return c.JSON(http.StatusOK, AuthResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Logout godoc
// @Summary Log out
// @Description Revoke the bearer token used for this request
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)
	tokenID := middleware.GetAuthTokenID(c)

	if err := h.authService.Logout(c.Request().Context(), userID, tokenID); err != nil {
		if errors.Is(err, domain.ErrAuthTokenNotFound) {
			return NewUnauthorizedError(c, "Invalid or expired token")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to log out")
		return NewInternalError(c, "Failed to log out")
	}

	log.Info().Str("user_id", userID.String()).Msg("User logged out")
	return c.NoContent(http.StatusNoContent)
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ProblemDetails
// @Router /profile [get]
func (h *AuthHandler) GetProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)

	user, err := h.authService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get profile")
		return NewInternalError(c, "Failed to get profile")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdatePassword godoc
// @Summary Change the authenticated user's password
// @Description Change the password and revoke all existing tokens
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /profile/password [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	err := h.authService.UpdatePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Current password is incorrect")
		}
		if errors.Is(err, domain.ErrPasswordTooShort) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "newPassword", Message: "Password must be at least 8 characters"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to update password")
		return NewInternalError(c, "Failed to update password")
	}

	log.Info().Str("user_id", userID.String()).Msg("Password updated, sessions revoked")
	return c.NoContent(http.StatusNoContent)
}
