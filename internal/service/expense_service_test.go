package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newExpenseServiceForTest() (*ExpenseService, *testutil.MockExpenseRepository, *testutil.MockCategoryRepository, *testutil.MockSummaryRepository, *testutil.MockReceiptRepository) {
	expenseRepo := testutil.NewMockExpenseRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	summaryRepo := testutil.NewMockSummaryRepository()
	receiptStorage := testutil.NewMockReceiptRepository()

	receipts := NewReceiptService(receiptStorage, expenseRepo)
	svc := NewExpenseService(expenseRepo, categoryRepo, NewSummaryService(summaryRepo), receipts, testutil.NewMockTxRunner())

	return svc, expenseRepo, categoryRepo, summaryRepo, receiptStorage
}

func TestExpenseService_CreateExpense_Success(t *testing.T) {
	svc, _, _, summaryRepo, _ := newExpenseServiceForTest()
	userID := uuid.New()

	expense, err := svc.CreateExpense(context.Background(), userID, CreateExpenseInput{
		Name:   "Groceries",
		Amount: decimal.NewFromInt(300000),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if expense.Name != "Groceries" {
		t.Errorf("expected name Groceries, got %s", expense.Name)
	}
	if expense.CategoryID != nil {
		t.Error("expected no category")
	}

	summary, err := summaryRepo.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected summary, got %v", err)
	}
	if !summary.ExpensesTotal.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("expected expenses total 300000, got %s", summary.ExpensesTotal)
	}
	if summary.ExpensesCount != 1 {
		t.Errorf("expected expenses count 1, got %d", summary.ExpensesCount)
	}
}

func TestExpenseService_CreateExpense_WithCategory(t *testing.T) {
	svc, _, categoryRepo, _, _ := newExpenseServiceForTest()
	userID := uuid.New()

	category, err := categoryRepo.Create(context.Background(), &domain.Category{
		UserID: userID,
		Name:   "Food",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expense, err := svc.CreateExpense(context.Background(), userID, CreateExpenseInput{
		Name:       "Groceries",
		Amount:     decimal.NewFromInt(300000),
		CategoryID: &category.ID,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if expense.CategoryID == nil || *expense.CategoryID != category.ID {
		t.Error("expected expense linked to category")
	}
}

func TestExpenseService_CreateExpense_UnknownCategory(t *testing.T) {
	svc, _, _, _, _ := newExpenseServiceForTest()
	unknown := uuid.New()

	_, err := svc.CreateExpense(context.Background(), uuid.New(), CreateExpenseInput{
		Name:       "Groceries",
		Amount:     decimal.NewFromInt(100),
		CategoryID: &unknown,
	})
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestExpenseService_CreateExpense_ForeignCategory(t *testing.T) {
	svc, _, categoryRepo, _, _ := newExpenseServiceForTest()
	owner := uuid.New()

	category, err := categoryRepo.Create(context.Background(), &domain.Category{
		UserID: owner,
		Name:   "Food",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Another user cannot attach someone else's category
	_, err = svc.CreateExpense(context.Background(), uuid.New(), CreateExpenseInput{
		Name:       "Groceries",
		Amount:     decimal.NewFromInt(100),
		CategoryID: &category.ID,
	})
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestExpenseService_CreateExpense_Validation(t *testing.T) {
	svc, _, _, _, _ := newExpenseServiceForTest()
	userID := uuid.New()

	tests := []struct {
		name    string
		input   CreateExpenseInput
		wantErr error
	}{
		{"empty name", CreateExpenseInput{Name: "", Amount: decimal.NewFromInt(100)}, domain.ErrNameRequired},
		{"name too long", CreateExpenseInput{Name: strings.Repeat("a", 256), Amount: decimal.NewFromInt(100)}, domain.ErrNameTooLong},
		{"zero amount", CreateExpenseInput{Name: "Groceries", Amount: decimal.Zero}, domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(context.Background(), userID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpenseService_UpdateExpense_AdjustsSummaryByDelta(t *testing.T) {
	svc, _, _, summaryRepo, _ := newExpenseServiceForTest()
	userID := uuid.New()

	created, err := svc.CreateExpense(context.Background(), userID, CreateExpenseInput{
		Name:   "Rent",
		Amount: decimal.NewFromInt(3000000),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	occurredOn := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.UpdateExpense(context.Background(), userID, created.ID, UpdateExpenseInput{
		Name:       "Rent",
		Amount:     decimal.NewFromInt(4000000),
		OccurredOn: &occurredOn,
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	summary, err := summaryRepo.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected summary, got %v", err)
	}
	if !summary.ExpensesTotal.Equal(decimal.NewFromInt(4000000)) {
		t.Errorf("expected expenses total 4000000, got %s", summary.ExpensesTotal)
	}
	if summary.ExpensesCount != 1 {
		t.Errorf("expected expenses count 1, got %d", summary.ExpensesCount)
	}
}

func TestExpenseService_UpdateExpense_MissingSummaryIsHardError(t *testing.T) {
	expenseRepo := testutil.NewMockExpenseRepository()
	summaryRepo := testutil.NewMockSummaryRepository()
	svc := NewExpenseService(expenseRepo, testutil.NewMockCategoryRepository(), NewSummaryService(summaryRepo), nil, testutil.NewMockTxRunner())

	userID := uuid.New()

	expense, err := expenseRepo.Create(context.Background(), &domain.Expense{
		UserID:     userID,
		Name:       "Rent",
		Amount:     decimal.NewFromInt(3000000),
		OccurredOn: time.Now(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = svc.UpdateExpense(context.Background(), userID, expense.ID, UpdateExpenseInput{
		Name:   "Rent",
		Amount: decimal.NewFromInt(100000),
	})
	if !errors.Is(err, domain.ErrSummaryNotFound) {
		t.Errorf("expected ErrSummaryNotFound, got %v", err)
	}
}

func TestExpenseService_DeleteExpense_Success(t *testing.T) {
	svc, expenseRepo, _, summaryRepo, _ := newExpenseServiceForTest()
	userID := uuid.New()

	first, err := svc.CreateExpense(context.Background(), userID, CreateExpenseInput{
		Name:   "Groceries",
		Amount: decimal.NewFromInt(300000),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.CreateExpense(context.Background(), userID, CreateExpenseInput{
		Name:   "Coffee",
		Amount: decimal.NewFromInt(50000),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.DeleteExpense(context.Background(), userID, second.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := expenseRepo.GetByID(context.Background(), userID, second.ID); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("expected expense to be deleted, got %v", err)
	}
	if _, err := expenseRepo.GetByID(context.Background(), userID, first.ID); err != nil {
		t.Errorf("expected first expense to survive, got %v", err)
	}

	summary, err := summaryRepo.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected summary, got %v", err)
	}
	if !summary.ExpensesTotal.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("expected expenses total 300000, got %s", summary.ExpensesTotal)
	}
	if summary.ExpensesCount != 1 {
		t.Errorf("expected expenses count 1, got %d", summary.ExpensesCount)
	}
}

func TestExpenseService_DeleteExpense_CleansUpReceipt(t *testing.T) {
	svc, expenseRepo, _, _, receiptStorage := newExpenseServiceForTest()
	userID := uuid.New()

	created, err := svc.CreateExpense(context.Background(), userID, CreateExpenseInput{
		Name:   "Dinner",
		Amount: decimal.NewFromInt(200000),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Simulate an attached receipt
	imageID := uuid.New().String()
	if _, err := expenseRepo.SetReceiptImageID(context.Background(), userID, created.ID, &imageID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	objectPath := receiptObjectPath(userID, created.ID, imageID, "original")
	if _, err := receiptStorage.Upload(context.Background(), objectPath, strings.NewReader("receipt"), "image/jpeg", 7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.DeleteExpense(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if receiptStorage.HasObject(objectPath) {
		t.Error("expected receipt object to be removed after expense delete")
	}
}

func TestExpenseService_DeleteExpense_NotFound(t *testing.T) {
	svc, _, _, _, _ := newExpenseServiceForTest()

	err := svc.DeleteExpense(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestExpenseService_GetExpenses_Pagination(t *testing.T) {
	svc, _, _, _, _ := newExpenseServiceForTest()
	userID := uuid.New()

	for i := 0; i < 7; i++ {
		if _, err := svc.CreateExpense(context.Background(), userID, CreateExpenseInput{
			Name:   "Expense",
			Amount: decimal.NewFromInt(1000),
		}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	page, err := svc.GetExpenses(context.Background(), userID, &domain.ListFilters{Page: 2, PageSize: 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page.Data) != 2 {
		t.Errorf("expected 2 expenses on page 2, got %d", len(page.Data))
	}
	if page.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", page.TotalPages)
	}
}
