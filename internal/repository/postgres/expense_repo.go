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

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, user_id, name, amount, occurred_on, category_id, receipt_image_id, created_at, updated_at`

// Create inserts a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}

	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	query := `
		INSERT INTO expenses (id, user_id, name, amount, occurred_on, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + expenseColumns

	q := queryerFrom(ctx, r.pool)
	created, err := scanExpense(q.QueryRow(ctx, query,
		expense.ID,
		expense.UserID,
		expense.Name,
		amount,
		timeToPgDate(expense.OccurredOn),
		uuidPtrToPgUUID(expense.CategoryID),
	))
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

// GetByID retrieves an expense by ID for a user
func (r *ExpenseRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`

	q := queryerFrom(ctx, r.pool)
	expense, err := scanExpense(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

// GetByUser retrieves a page of expenses for a user, newest first
func (r *ExpenseRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedExpenses, error) {
	page, pageSize := filters.Normalize()
	offset := (page - 1) * pageSize

	q := queryerFrom(ctx, r.pool)

	var totalItems int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM expenses WHERE user_id = $1`, userID).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("count expenses: %w", err)
	}

	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id = $1
		ORDER BY occurred_on DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := q.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return &domain.PaginatedExpenses{
		Data:       expenses,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: domain.TotalPages(totalItems, pageSize),
	}, nil
}

// Update updates an existing expense
func (r *ExpenseRepository) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, data *domain.UpdateExpenseData) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	query := `
		UPDATE expenses
		SET name = $3, amount = $4, occurred_on = $5, category_id = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + expenseColumns

	q := queryerFrom(ctx, r.pool)
	updated, err := scanExpense(q.QueryRow(ctx, query,
		id,
		userID,
		data.Name,
		amount,
		timeToPgDate(data.OccurredOn),
		uuidPtrToPgUUID(data.CategoryID),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	q := queryerFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// SetReceiptImageID attaches or clears the receipt image reference
func (r *ExpenseRepository) SetReceiptImageID(ctx context.Context, userID uuid.UUID, id uuid.UUID, imageID *string) (*domain.Expense, error) {
	query := `
		UPDATE expenses
		SET receipt_image_id = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + expenseColumns

	q := queryerFrom(ctx, r.pool)
	updated, err := scanExpense(q.QueryRow(ctx, query, id, userID, stringPtrToPgText(imageID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("set receipt image: %w", err)
	}
	return updated, nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	var amount pgtype.Numeric
	var occurredOn pgtype.Date
	var categoryID pgtype.UUID
	var receiptImageID pgtype.Text

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Name,
		&amount,
		&occurredOn,
		&categoryID,
		&receiptImageID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Amount = pgNumericToDecimal(amount)
	e.OccurredOn = occurredOn.Time
	e.CategoryID = pgUUIDToPtr(categoryID)
	e.ReceiptImageID = pgTextToPtr(receiptImageID)
	return &e, nil
}
