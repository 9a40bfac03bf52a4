package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
)

// SummaryRepository implements domain.SummaryRepository using PostgreSQL
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new SummaryRepository
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

const summaryColumns = `id, user_id, incomes_total, incomes_count, expenses_total, expenses_count, created_at, updated_at`

// GetByUser retrieves the summary row for a user
func (r *SummaryRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Summary, error) {
	query := `SELECT ` + summaryColumns + ` FROM summaries WHERE user_id = $1`

	q := queryerFrom(ctx, r.pool)
	summary, err := scanSummary(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return summary, nil
}

// Create inserts the summary row for a user's first ledger entry. The
// unique index on user_id backs the one-row-per-user invariant.
func (r *SummaryRepository) Create(ctx context.Context, summary *domain.Summary) (*domain.Summary, error) {
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}

	incomesTotal, err := decimalToPgNumeric(summary.IncomesTotal)
	if err != nil {
		return nil, fmt.Errorf("invalid incomes total: %w", err)
	}
	expensesTotal, err := decimalToPgNumeric(summary.ExpensesTotal)
	if err != nil {
		return nil, fmt.Errorf("invalid expenses total: %w", err)
	}

	query := `
		INSERT INTO summaries (id, user_id, incomes_total, incomes_count, expenses_total, expenses_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + summaryColumns

	q := queryerFrom(ctx, r.pool)
	created, err := scanSummary(q.QueryRow(ctx, query,
		summary.ID,
		summary.UserID,
		incomesTotal,
		summary.IncomesCount,
		expensesTotal,
		summary.ExpensesCount,
	))
	if err != nil {
		return nil, fmt.Errorf("create summary: %w", err)
	}
	return created, nil
}

// UpdateTotal writes the new running total for one entry kind, leaving the
// count untouched (entry updates do not change cardinality).
func (r *SummaryRepository) UpdateTotal(ctx context.Context, userID uuid.UUID, kind domain.EntryKind, total decimal.Decimal) (*domain.Summary, error) {
	totalCol, _, err := summaryColumnsFor(kind)
	if err != nil {
		return nil, err
	}

	pgTotal, err := decimalToPgNumeric(total)
	if err != nil {
		return nil, fmt.Errorf("invalid total: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE summaries
		SET %s = $2, updated_at = now()
		WHERE user_id = $1
		RETURNING `+summaryColumns, totalCol)

	q := queryerFrom(ctx, r.pool)
	updated, err := scanSummary(q.QueryRow(ctx, query, userID, pgTotal))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("update summary total: %w", err)
	}
	return updated, nil
}

// UpdateTotalWithCount writes the new running total and bumps the matching
// count in the same statement; the count change is an atomic in-database
// increment, never a value read back and written by the caller.
func (r *SummaryRepository) UpdateTotalWithCount(ctx context.Context, userID uuid.UUID, kind domain.EntryKind, total decimal.Decimal, countDelta int64) (*domain.Summary, error) {
	totalCol, countCol, err := summaryColumnsFor(kind)
	if err != nil {
		return nil, err
	}

	pgTotal, err := decimalToPgNumeric(total)
	if err != nil {
		return nil, fmt.Errorf("invalid total: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE summaries
		SET %s = $2, %s = %s + $3, updated_at = now()
		WHERE user_id = $1
		RETURNING `+summaryColumns, totalCol, countCol, countCol)

	q := queryerFrom(ctx, r.pool)
	updated, err := scanSummary(q.QueryRow(ctx, query, userID, pgTotal, countDelta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("update summary total and count: %w", err)
	}
	return updated, nil
}

func summaryColumnsFor(kind domain.EntryKind) (totalCol, countCol string, err error) {
	switch kind {
	case domain.EntryKindIncome:
		return "incomes_total", "incomes_count", nil
	case domain.EntryKindExpense:
		return "expenses_total", "expenses_count", nil
	default:
		return "", "", domain.ErrInvalidEntryKind
	}
}

func scanSummary(row pgx.Row) (*domain.Summary, error) {
	var s domain.Summary
	var incomesTotal, expensesTotal pgtype.Numeric

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&incomesTotal,
		&s.IncomesCount,
		&expensesTotal,
		&s.ExpensesCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.IncomesTotal = pgNumericToDecimal(incomesTotal)
	s.ExpensesTotal = pgNumericToDecimal(expensesTotal)
	return &s, nil
}
