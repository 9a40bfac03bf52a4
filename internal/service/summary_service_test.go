package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestSummaryService_OnEntryCreated_FirstEntry(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.EntryKindIncome,
		Amount: decimal.NewFromInt(10000000),
	}

	summary, err := service.OnEntryCreated(context.Background(), entry)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !summary.IncomesTotal.Equal(decimal.NewFromInt(10000000)) {
		t.Errorf("expected incomes total 10000000, got %s", summary.IncomesTotal)
	}
	if summary.IncomesCount != 1 {
		t.Errorf("expected incomes count 1, got %d", summary.IncomesCount)
	}
	if !summary.ExpensesTotal.Equal(decimal.Zero) {
		t.Errorf("expected expenses total 0, got %s", summary.ExpensesTotal)
	}
	if summary.ExpensesCount != 0 {
		t.Errorf("expected expenses count 0, got %d", summary.ExpensesCount)
	}

	// The summary row must now exist
	stored, err := summaryRepo.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected stored summary, got %v", err)
	}
	if !stored.IncomesTotal.Equal(decimal.NewFromInt(10000000)) {
		t.Errorf("expected stored incomes total 10000000, got %s", stored.IncomesTotal)
	}
}

func TestSummaryService_OnEntryCreated_ExistingSummary(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	seedSummary(t, summaryRepo, userID, decimal.NewFromInt(10000000), 1, decimal.Zero, 0)

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.EntryKindIncome,
		Amount: decimal.NewFromInt(300000),
	}

	summary, err := service.OnEntryCreated(context.Background(), entry)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !summary.IncomesTotal.Equal(decimal.NewFromInt(10300000)) {
		t.Errorf("expected incomes total 10300000, got %s", summary.IncomesTotal)
	}
	if summary.IncomesCount != 2 {
		t.Errorf("expected incomes count 2, got %d", summary.IncomesCount)
	}
}

func TestSummaryService_OnEntryCreated_KindsAreIndependent(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	income := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.EntryKindIncome,
		Amount: decimal.NewFromInt(10000000),
	}
	if _, err := service.OnEntryCreated(context.Background(), income); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expense := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.EntryKindExpense,
		Amount: decimal.NewFromInt(300000),
	}
	summary, err := service.OnEntryCreated(context.Background(), expense)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !summary.IncomesTotal.Equal(decimal.NewFromInt(10000000)) {
		t.Errorf("expected incomes total unchanged at 10000000, got %s", summary.IncomesTotal)
	}
	if summary.IncomesCount != 1 {
		t.Errorf("expected incomes count 1, got %d", summary.IncomesCount)
	}
	if !summary.ExpensesTotal.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("expected expenses total 300000, got %s", summary.ExpensesTotal)
	}
	if summary.ExpensesCount != 1 {
		t.Errorf("expected expenses count 1, got %d", summary.ExpensesCount)
	}
}

func TestSummaryService_OnEntryCreated_InvalidKind(t *testing.T) {
	service := NewSummaryService(testutil.NewMockSummaryRepository())

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Kind:   domain.EntryKind("transfer"),
		Amount: decimal.NewFromInt(100),
	}

	_, err := service.OnEntryCreated(context.Background(), entry)
	if !errors.Is(err, domain.ErrInvalidEntryKind) {
		t.Errorf("expected ErrInvalidEntryKind, got %v", err)
	}
}

func TestSummaryService_OnEntryUpdated_AmountLowered(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	seedSummary(t, summaryRepo, userID, decimal.Zero, 0, decimal.NewFromInt(3000000), 3)

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.EntryKindExpense,
		Amount: decimal.NewFromInt(100000),
	}

	summary, err := service.OnEntryUpdated(context.Background(), entry, decimal.NewFromInt(3000000))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !summary.ExpensesTotal.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected expenses total 100000, got %s", summary.ExpensesTotal)
	}
	// Updates never change the count
	if summary.ExpensesCount != 3 {
		t.Errorf("expected expenses count 3, got %d", summary.ExpensesCount)
	}
}

func TestSummaryService_OnEntryUpdated_AmountRaised(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	seedSummary(t, summaryRepo, userID, decimal.Zero, 0, decimal.NewFromInt(3000000), 2)

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.EntryKindExpense,
		Amount: decimal.NewFromInt(4000000),
	}

	summary, err := service.OnEntryUpdated(context.Background(), entry, decimal.NewFromInt(3000000))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !summary.ExpensesTotal.Equal(decimal.NewFromInt(4000000)) {
		t.Errorf("expected expenses total 4000000, got %s", summary.ExpensesTotal)
	}
}

func TestSummaryService_OnEntryUpdated_MissingSummary(t *testing.T) {
	service := NewSummaryService(testutil.NewMockSummaryRepository())

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Kind:   domain.EntryKindIncome,
		Amount: decimal.NewFromInt(500000),
	}

	_, err := service.OnEntryUpdated(context.Background(), entry, decimal.NewFromInt(300000))
	if !errors.Is(err, domain.ErrSummaryNotFound) {
		t.Errorf("expected ErrSummaryNotFound, got %v", err)
	}
}

func TestSummaryService_OnEntryDeleted(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	seedSummary(t, summaryRepo, userID, decimal.NewFromInt(10000000), 5, decimal.Zero, 0)

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.EntryKindIncome,
		Amount: decimal.NewFromInt(400000),
	}

	summary, err := service.OnEntryDeleted(context.Background(), entry)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !summary.IncomesTotal.Equal(decimal.NewFromInt(9600000)) {
		t.Errorf("expected incomes total 9600000, got %s", summary.IncomesTotal)
	}
	if summary.IncomesCount != 4 {
		t.Errorf("expected incomes count 4, got %d", summary.IncomesCount)
	}
}

func TestSummaryService_OnEntryDeleted_MissingSummary(t *testing.T) {
	service := NewSummaryService(testutil.NewMockSummaryRepository())

	entry := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Kind:   domain.EntryKindExpense,
		Amount: decimal.NewFromInt(100),
	}

	_, err := service.OnEntryDeleted(context.Background(), entry)
	if !errors.Is(err, domain.ErrSummaryNotFound) {
		t.Errorf("expected ErrSummaryNotFound, got %v", err)
	}
}

func TestSummaryService_GetSummary_NoActivity(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	summary, err := service.GetSummary(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.UserID != userID {
		t.Errorf("expected user ID %s, got %s", userID, summary.UserID)
	}
	if !summary.IncomesTotal.Equal(decimal.Zero) || !summary.ExpensesTotal.Equal(decimal.Zero) {
		t.Errorf("expected zero totals, got incomes=%s expenses=%s", summary.IncomesTotal, summary.ExpensesTotal)
	}
	if summary.IncomesCount != 0 || summary.ExpensesCount != 0 {
		t.Errorf("expected zero counts, got incomes=%d expenses=%d", summary.IncomesCount, summary.ExpensesCount)
	}

	// Reads must not create state
	if _, err := summaryRepo.GetByUser(context.Background(), userID); !errors.Is(err, domain.ErrSummaryNotFound) {
		t.Errorf("expected no persisted summary after read, got %v", err)
	}
}

func TestSummaryService_GetSummary_Existing(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	seedSummary(t, summaryRepo, userID, decimal.NewFromInt(10300000), 2, decimal.NewFromInt(300000), 1)

	summary, err := service.GetSummary(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !summary.IncomesTotal.Equal(decimal.NewFromInt(10300000)) {
		t.Errorf("expected incomes total 10300000, got %s", summary.IncomesTotal)
	}
	if !summary.ExpensesTotal.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("expected expenses total 300000, got %s", summary.ExpensesTotal)
	}
}

func TestSummaryService_ConcurrentSameUserMutations(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)
	userID := uuid.New()

	const workers = 50
	amount := decimal.NewFromInt(1000)

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := service.WithUserLock(userID, func() error {
				entry := &domain.LedgerEntry{
					ID:     uuid.New(),
					UserID: userID,
					Kind:   domain.EntryKindIncome,
					Amount: amount,
				}
				_, err := service.OnEntryCreated(context.Background(), entry)
				return err
			})
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent create failed: %v", err)
	}

	// Every increment must survive: no lost updates
	summary, err := summaryRepo.GetByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected summary, got %v", err)
	}
	expectedTotal := amount.Mul(decimal.NewFromInt(workers))
	if !summary.IncomesTotal.Equal(expectedTotal) {
		t.Errorf("expected incomes total %s, got %s", expectedTotal, summary.IncomesTotal)
	}
	if summary.IncomesCount != workers {
		t.Errorf("expected incomes count %d, got %d", workers, summary.IncomesCount)
	}
}

func TestSummaryService_ConcurrentDifferentUsers(t *testing.T) {
	summaryRepo := testutil.NewMockSummaryRepository()
	service := NewSummaryService(summaryRepo)

	const users = 10
	userIDs := make([]uuid.UUID, users)
	for i := range userIDs {
		userIDs[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_ = service.WithUserLock(userID, func() error {
				entry := &domain.LedgerEntry{
					ID:     uuid.New(),
					UserID: userID,
					Kind:   domain.EntryKindExpense,
					Amount: decimal.NewFromInt(500),
				}
				_, err := service.OnEntryCreated(context.Background(), entry)
				return err
			})
		}(userID)
	}
	wg.Wait()

	for _, userID := range userIDs {
		summary, err := summaryRepo.GetByUser(context.Background(), userID)
		if err != nil {
			t.Fatalf("expected summary for user %s, got %v", userID, err)
		}
		if !summary.ExpensesTotal.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected expenses total 500 for user %s, got %s", userID, summary.ExpensesTotal)
		}
	}
}

// seedSummary installs a summary row via the repository's create path
func seedSummary(t *testing.T, repo *testutil.MockSummaryRepository, userID uuid.UUID, incomesTotal decimal.Decimal, incomesCount int64, expensesTotal decimal.Decimal, expensesCount int64) {
	t.Helper()

	summary := domain.NewSummary(userID)
	summary.IncomesTotal = incomesTotal
	summary.IncomesCount = incomesCount
	summary.ExpensesTotal = expensesTotal
	summary.ExpensesCount = expensesCount

	if _, err := repo.Create(context.Background(), summary); err != nil {
		t.Fatalf("failed to seed summary: %v", err)
	}
}
