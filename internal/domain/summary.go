package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary is the per-user rollup of ledger activity. Exactly zero or one
// row exists per user: none until the user's first entry is recorded, then
// one for the life of the user. Totals are carried forward incrementally;
// they are never recomputed by scanning the ledger.
type Summary struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	IncomesTotal  decimal.Decimal `json:"incomesTotal"`
	IncomesCount  int64           `json:"incomesCount"`
	ExpensesTotal decimal.Decimal `json:"expensesTotal"`
	ExpensesCount int64           `json:"expensesCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewSummary returns the empty rollup for a user who has no ledger activity
// yet. Creating an entry against it is the single NoSummary -> HasSummary
// transition; every later mutation updates the same row in place.
func NewSummary(userID uuid.UUID) *Summary {
	return &Summary{
		UserID:        userID,
		IncomesTotal:  decimal.Zero,
		ExpensesTotal: decimal.Zero,
	}
}

// AccumulateTotal applies the delta-accumulation rule shared by entry
// creation and update:
//
//	newTotal = priorTotal + (newAmount - referenceAmount)
//
// Creation is the reference=0 case (and prior=0 for a user's first entry),
// update passes the entry's pre-update amount, deletion passes newAmount=0.
func AccumulateTotal(prior, newAmount, reference decimal.Decimal) decimal.Decimal {
	return prior.Add(newAmount.Sub(reference))
}

// TotalFor returns the running total for the given entry kind
func (s *Summary) TotalFor(kind EntryKind) decimal.Decimal {
	if kind == EntryKindIncome {
		return s.IncomesTotal
	}
	return s.ExpensesTotal
}

// CountFor returns the live entry count for the given entry kind
func (s *Summary) CountFor(kind EntryKind) int64 {
	if kind == EntryKindIncome {
		return s.IncomesCount
	}
	return s.ExpensesCount
}

// SetTotal replaces the running total for the given entry kind
func (s *Summary) SetTotal(kind EntryKind, total decimal.Decimal) {
	if kind == EntryKindIncome {
		s.IncomesTotal = total
		return
	}
	s.ExpensesTotal = total
}

// BumpCount adjusts the live entry count for the given entry kind
func (s *Summary) BumpCount(kind EntryKind, delta int64) {
	if kind == EntryKindIncome {
		s.IncomesCount += delta
		return
	}
	s.ExpensesCount += delta
}

// SummaryRepository defines the interface for summary persistence. The
// count adjustment in UpdateTotalWithCount is an in-database atomic
// increment, not a read back of the count field; both update methods report
// ErrSummaryNotFound when no row exists for the user, which callers must
// treat as a hard failure of the enclosing unit of work.
type SummaryRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*Summary, error)
	Create(ctx context.Context, summary *Summary) (*Summary, error)
	UpdateTotal(ctx context.Context, userID uuid.UUID, kind EntryKind, total decimal.Decimal) (*Summary, error)
	UpdateTotalWithCount(ctx context.Context, userID uuid.UUID, kind EntryKind, total decimal.Decimal, countDelta int64) (*Summary, error)
}
