package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseService handles expense-related business logic. Mutations follow
// the same discipline as incomes: row change and summary aggregation in one
// transaction, under the owning user's aggregation lock.
type ExpenseService struct {
	expenseRepo    domain.ExpenseRepository
	categoryRepo   domain.CategoryRepository
	summaries      *SummaryService
	receipts       *ReceiptService
	tx             domain.TxRunner
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, categoryRepo domain.CategoryRepository, summaries *SummaryService, receipts *ReceiptService, tx domain.TxRunner) *ExpenseService {
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		summaries:    summaries,
		receipts:     receipts,
		tx:           tx,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *ExpenseService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateExpenseInput holds the input for creating an expense
type CreateExpenseInput struct {
	Name       string
	Amount     decimal.Decimal
	OccurredOn *time.Time
	CategoryID *uuid.UUID
}

// CreateExpense creates a new expense and folds it into the user's summary
func (s *ExpenseService) CreateExpense(ctx context.Context, userID uuid.UUID, input CreateExpenseInput) (*domain.Expense, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxEntryNameLength {
		return nil, domain.ErrNameTooLong
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	// Default occurred_on to today if not provided
	occurredOn := time.Now().UTC().Truncate(24 * time.Hour)
	if input.OccurredOn != nil {
		occurredOn = *input.OccurredOn
	}

	// Validate category exists and belongs to the user if provided
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, userID, *input.CategoryID); err != nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	var created *domain.Expense
	var summary *domain.Summary
	err := s.summaries.WithUserLock(userID, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			created, err = s.expenseRepo.Create(ctx, &domain.Expense{
				UserID:     userID,
				Name:       name,
				Amount:     input.Amount,
				OccurredOn: occurredOn,
				CategoryID: input.CategoryID,
			})
			if err != nil {
				return err
			}

			summary, err = s.summaries.OnEntryCreated(ctx, created.LedgerEntry())
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ExpenseCreated(created))
	s.publishEvent(userID, websocket.SummaryUpdated(summary))

	return created, nil
}

// GetExpenses retrieves expenses for a user with pagination
func (s *ExpenseService) GetExpenses(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedExpenses, error) {
	return s.expenseRepo.GetByUser(ctx, userID, filters)
}

// GetExpenseByID retrieves a single expense owned by the user
func (s *ExpenseService) GetExpenseByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(ctx, userID, id)
}

// UpdateExpenseInput holds the input for updating an expense. A nil
// OccurredOn keeps the stored date.
type UpdateExpenseInput struct {
	Name       string
	Amount     decimal.Decimal
	OccurredOn *time.Time
	CategoryID *uuid.UUID
}

// UpdateExpense updates an expense and folds the amount delta into the
// user's summary
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateExpenseInput) (*domain.Expense, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxEntryNameLength {
		return nil, domain.ErrNameTooLong
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	// Validate category exists and belongs to the user if provided
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, userID, *input.CategoryID); err != nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	var updated *domain.Expense
	var summary *domain.Summary
	err := s.summaries.WithUserLock(userID, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			// The stored amount is the aggregation reference, not the
			// request's idea of it
			existing, err := s.expenseRepo.GetByID(ctx, userID, id)
			if err != nil {
				return err
			}

			occurredOn := existing.OccurredOn
			if input.OccurredOn != nil {
				occurredOn = *input.OccurredOn
			}

			updated, err = s.expenseRepo.Update(ctx, userID, id, &domain.UpdateExpenseData{
				Name:       name,
				Amount:     input.Amount,
				OccurredOn: occurredOn,
				CategoryID: input.CategoryID,
			})
			if err != nil {
				return err
			}

			summary, err = s.summaries.OnEntryUpdated(ctx, updated.LedgerEntry(), existing.Amount)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ExpenseUpdated(updated))
	s.publishEvent(userID, websocket.SummaryUpdated(summary))

	return updated, nil
}

// DeleteExpense deletes an expense and removes its contribution from the
// user's summary. The receipt object, if any, is cleaned up best effort
// after the transaction commits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	var deleted *domain.Expense
	var summary *domain.Summary
	err := s.summaries.WithUserLock(userID, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			existing, err := s.expenseRepo.GetByID(ctx, userID, id)
			if err != nil {
				return err
			}

			if err := s.expenseRepo.Delete(ctx, userID, id); err != nil {
				return err
			}

			deleted = existing
			summary, err = s.summaries.OnEntryDeleted(ctx, existing.LedgerEntry())
			return err
		})
	})
	if err != nil {
		return err
	}

	if deleted.ReceiptImageID != nil && s.receipts.IsEnabled() {
		if err := s.receipts.DeleteReceipt(ctx, userID, id, *deleted.ReceiptImageID); err != nil {
			log.Warn().Err(err).
				Str("expense_id", id.String()).
				Msg("Failed to clean up receipt after expense delete")
		}
	}

	s.publishEvent(userID, websocket.ExpenseDeleted(deleted))
	s.publishEvent(userID, websocket.SummaryUpdated(summary))

	return nil
}
