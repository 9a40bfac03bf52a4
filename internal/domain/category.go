package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a user-defined expense category
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Category, error)
	GetByUser(ctx context.Context, userID uuid.UUID, filters *ListFilters) (*PaginatedCategories, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (*Category, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

// PaginatedCategories holds a page of categories plus paging metadata
type PaginatedCategories struct {
	Data       []*Category `json:"data"`
	Page       int32       `json:"page"`
	PageSize   int32       `json:"pageSize"`
	TotalItems int64       `json:"totalItems"`
	TotalPages int32       `json:"totalPages"`
}
