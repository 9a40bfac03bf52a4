package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/websocket"
)

// CategoryService handles expense category business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *CategoryService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateCategory creates a new category with validation
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	category, err := s.categoryRepo.Create(ctx, &domain.Category{
		UserID: userID,
		Name:   name,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryCreated(category))
	return category, nil
}

// GetCategories retrieves categories for a user with pagination
func (s *CategoryService) GetCategories(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedCategories, error) {
	return s.categoryRepo.GetByUser(ctx, userID, filters)
}

// GetCategoryByID retrieves a single category owned by the user
func (s *CategoryService) GetCategoryByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, userID, id)
}

// UpdateCategory renames a category with validation
func (s *CategoryService) UpdateCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	category, err := s.categoryRepo.Update(ctx, userID, id, name)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryUpdated(category))
	return category, nil
}

// DeleteCategory deletes a category. Expenses keep existing; their
// category link is cleared by the database.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.CategoryDeleted(map[string]interface{}{"id": id}))
	return nil
}
