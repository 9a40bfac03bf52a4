package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, name, created_at, updated_at`

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	query := `
		INSERT INTO categories (id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING ` + categoryColumns

	q := queryerFrom(ctx, r.pool)
	created, err := scanCategory(q.QueryRow(ctx, query, category.ID, category.UserID, category.Name))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// GetByID retrieves a category by ID for a user
func (r *CategoryRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND user_id = $2`

	q := queryerFrom(ctx, r.pool)
	category, err := scanCategory(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// GetByUser retrieves a page of categories for a user
func (r *CategoryRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedCategories, error) {
	page, pageSize := filters.Normalize()
	offset := (page - 1) * pageSize

	q := queryerFrom(ctx, r.pool)

	var totalItems int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM categories WHERE user_id = $1`, userID).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE user_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`

	rows, err := q.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return &domain.PaginatedCategories{
		Data:       categories,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: domain.TotalPages(totalItems, pageSize),
	}, nil
}

// Update renames a category
func (r *CategoryRepository) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (*domain.Category, error) {
	query := `
		UPDATE categories
		SET name = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + categoryColumns

	q := queryerFrom(ctx, r.pool)
	updated, err := scanCategory(q.QueryRow(ctx, query, id, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete removes a category; expenses referencing it keep a NULL category
// via the schema's ON DELETE SET NULL.
func (r *CategoryRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	q := queryerFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
