package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInternalError      = errors.New("internal error")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("username or password is invalid")
	ErrAuthTokenNotFound  = errors.New("auth token not found or revoked")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrIncomeNotFound     = errors.New("income not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrSummaryNotFound    = errors.New("summary not found")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidEntryKind   = errors.New("invalid ledger entry kind")
	ErrUsernameRequired   = errors.New("username is required")
	ErrUsernameTooLong    = errors.New("username exceeds maximum length")
	ErrPasswordTooShort   = errors.New("password is too short")
)

// Validation constants
const (
	MaxEntryNameLength    = 255
	MaxCategoryNameLength = 100
	MaxUsernameLength     = 100
	MinPasswordLength     = 8
)
