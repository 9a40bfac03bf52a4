package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single expense ledger entry owned by one user
type Expense struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	OccurredOn     time.Time       `json:"occurredOn"`
	CategoryID     *uuid.UUID      `json:"categoryId,omitempty"`
	ReceiptImageID *string         `json:"receiptImageId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// LedgerEntry returns the aggregator view of this expense
func (e *Expense) LedgerEntry() *LedgerEntry {
	return &LedgerEntry{
		ID:     e.ID,
		UserID: e.UserID,
		Kind:   EntryKindExpense,
		Amount: e.Amount,
	}
}

// UpdateExpenseData holds the updatable fields of an expense
type UpdateExpenseData struct {
	Name       string
	Amount     decimal.Decimal
	OccurredOn time.Time
	CategoryID *uuid.UUID
}

// PaginatedExpenses holds a page of expenses plus paging metadata
type PaginatedExpenses struct {
	Data       []*Expense `json:"data"`
	Page       int32      `json:"page"`
	PageSize   int32      `json:"pageSize"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int32      `json:"totalPages"`
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) (*Expense, error)
	GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Expense, error)
	GetByUser(ctx context.Context, userID uuid.UUID, filters *ListFilters) (*PaginatedExpenses, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, data *UpdateExpenseData) (*Expense, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	SetReceiptImageID(ctx context.Context, userID uuid.UUID, id uuid.UUID, imageID *string) (*Expense, error)
}
