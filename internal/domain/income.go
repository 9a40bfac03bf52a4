package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Income is a single income ledger entry owned by one user
type Income struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredOn time.Time       `json:"occurredOn"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// LedgerEntry returns the aggregator view of this income
func (i *Income) LedgerEntry() *LedgerEntry {
	return &LedgerEntry{
		ID:     i.ID,
		UserID: i.UserID,
		Kind:   EntryKindIncome,
		Amount: i.Amount,
	}
}

// UpdateIncomeData holds the updatable fields of an income
type UpdateIncomeData struct {
	Name       string
	Amount     decimal.Decimal
	OccurredOn time.Time
}

// PaginatedIncomes holds a page of incomes plus paging metadata
type PaginatedIncomes struct {
	Data       []*Income `json:"data"`
	Page       int32     `json:"page"`
	PageSize   int32     `json:"pageSize"`
	TotalItems int64     `json:"totalItems"`
	TotalPages int32     `json:"totalPages"`
}

// IncomeRepository defines the interface for income persistence
type IncomeRepository interface {
	Create(ctx context.Context, income *Income) (*Income, error)
	GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Income, error)
	GetByUser(ctx context.Context, userID uuid.UUID, filters *ListFilters) (*PaginatedIncomes, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, data *UpdateIncomeData) (*Income, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}
