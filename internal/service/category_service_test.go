package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/testutil"
)

func TestCategoryService_CreateCategory_Success(t *testing.T) {
	svc := NewCategoryService(testutil.NewMockCategoryRepository())
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)

	userID := uuid.New()

	category, err := svc.CreateCategory(context.Background(), userID, "  Food  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if category.Name != "Food" {
		t.Errorf("expected trimmed name Food, got %q", category.Name)
	}

	events := publisher.EventsFor(userID)
	if len(events) != 1 || events[0].Type != "category.created" {
		t.Errorf("expected one category.created event, got %v", events)
	}
}

func TestCategoryService_CreateCategory_Validation(t *testing.T) {
	svc := NewCategoryService(testutil.NewMockCategoryRepository())
	userID := uuid.New()

	if _, err := svc.CreateCategory(context.Background(), userID, "   "); !errors.Is(err, domain.ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.CreateCategory(context.Background(), userID, strings.Repeat("a", 101)); !errors.Is(err, domain.ErrNameTooLong) {
		t.Errorf("expected ErrNameTooLong, got %v", err)
	}
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	svc := NewCategoryService(testutil.NewMockCategoryRepository())
	userID := uuid.New()

	category, err := svc.CreateCategory(context.Background(), userID, "Food")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, err := svc.UpdateCategory(context.Background(), userID, category.ID, "Dining")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Name != "Dining" {
		t.Errorf("expected name Dining, got %s", updated.Name)
	}
}

func TestCategoryService_UpdateCategory_NotFound(t *testing.T) {
	svc := NewCategoryService(testutil.NewMockCategoryRepository())

	_, err := svc.UpdateCategory(context.Background(), uuid.New(), uuid.New(), "Dining")
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(repo)
	userID := uuid.New()

	category, err := svc.CreateCategory(context.Background(), userID, "Food")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.DeleteCategory(context.Background(), userID, category.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := repo.GetByID(context.Background(), userID, category.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("expected category to be deleted, got %v", err)
	}
}

func TestCategoryService_Isolation(t *testing.T) {
	svc := NewCategoryService(testutil.NewMockCategoryRepository())
	owner := uuid.New()

	category, err := svc.CreateCategory(context.Background(), owner, "Food")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.GetCategoryByID(context.Background(), uuid.New(), category.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound for foreign category, got %v", err)
	}
}

func TestCategoryService_GetCategories_Pagination(t *testing.T) {
	svc := NewCategoryService(testutil.NewMockCategoryRepository())
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateCategory(context.Background(), userID, "Category"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	page, err := svc.GetCategories(context.Background(), userID, &domain.ListFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page.Data) != 2 {
		t.Errorf("expected 2 categories on page 1, got %d", len(page.Data))
	}
	if page.TotalItems != 3 {
		t.Errorf("expected 3 total items, got %d", page.TotalItems)
	}
}
