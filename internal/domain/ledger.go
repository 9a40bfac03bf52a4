package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind distinguishes the two ledger entry variants
type EntryKind string

const (
	EntryKindIncome  EntryKind = "income"
	EntryKindExpense EntryKind = "expense"
)

// Valid reports whether the kind is one of the known variants
func (k EntryKind) Valid() bool {
	return k == EntryKindIncome || k == EntryKindExpense
}

// LedgerEntry is the snapshot of an income or expense handed to the
// aggregator. Mutation paths build it from the persisted row, not from
// request input, so the aggregated amount always matches what is stored.
type LedgerEntry struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Kind   EntryKind
	Amount decimal.Decimal
}

// Pagination defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListFilters holds pagination parameters for list queries
type ListFilters struct {
	Page     int32
	PageSize int32
}

// Normalize clamps filters to valid pagination bounds
func (f *ListFilters) Normalize() (page, pageSize int32) {
	page = 1
	pageSize = DefaultPageSize
	if f == nil {
		return page, pageSize
	}
	if f.Page > 0 {
		page = f.Page
	}
	if f.PageSize > 0 {
		pageSize = f.PageSize
		if pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}
	}
	return page, pageSize
}

// TotalPages computes the page count for the given total and page size
func TotalPages(totalItems int64, pageSize int32) int32 {
	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}
	return totalPages
}
