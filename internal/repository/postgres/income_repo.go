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

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

const incomeColumns = `id, user_id, name, amount, occurred_on, created_at, updated_at`

// Create inserts a new income
func (r *IncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	if income.ID == uuid.Nil {
		income.ID = uuid.New()
	}

	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	query := `
		INSERT INTO incomes (id, user_id, name, amount, occurred_on)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + incomeColumns

	q := queryerFrom(ctx, r.pool)
	created, err := scanIncome(q.QueryRow(ctx, query,
		income.ID,
		income.UserID,
		income.Name,
		amount,
		timeToPgDate(income.OccurredOn),
	))
	if err != nil {
		return nil, fmt.Errorf("create income: %w", err)
	}
	return created, nil
}

// GetByID retrieves an income by ID for a user
func (r *IncomeRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Income, error) {
	query := `SELECT ` + incomeColumns + ` FROM incomes WHERE id = $1 AND user_id = $2`

	q := queryerFrom(ctx, r.pool)
	income, err := scanIncome(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, fmt.Errorf("get income: %w", err)
	}
	return income, nil
}

// GetByUser retrieves a page of incomes for a user, newest first
func (r *IncomeRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedIncomes, error) {
	page, pageSize := filters.Normalize()
	offset := (page - 1) * pageSize

	q := queryerFrom(ctx, r.pool)

	var totalItems int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM incomes WHERE user_id = $1`, userID).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("count incomes: %w", err)
	}

	query := `
		SELECT ` + incomeColumns + `
		FROM incomes
		WHERE user_id = $1
		ORDER BY occurred_on DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := q.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []*domain.Income
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}

	return &domain.PaginatedIncomes{
		Data:       incomes,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: domain.TotalPages(totalItems, pageSize),
	}, nil
}

// Update updates an existing income
func (r *IncomeRepository) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, data *domain.UpdateIncomeData) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	query := `
		UPDATE incomes
		SET name = $3, amount = $4, occurred_on = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + incomeColumns

	q := queryerFrom(ctx, r.pool)
	updated, err := scanIncome(q.QueryRow(ctx, query, id, userID, data.Name, amount, timeToPgDate(data.OccurredOn)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, fmt.Errorf("update income: %w", err)
	}
	return updated, nil
}

// Delete removes an income
func (r *IncomeRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	q := queryerFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM incomes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var i domain.Income
	var amount pgtype.Numeric
	var occurredOn pgtype.Date

	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&amount,
		&occurredOn,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.Amount = pgNumericToDecimal(amount)
	i.OccurredOn = occurredOn.Time
	return &i, nil
}
