package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// IncomeService handles income-related business logic. Every mutation runs
// the row change and the summary aggregation in one transaction, under the
// owning user's aggregation lock.
type IncomeService struct {
	incomeRepo     domain.IncomeRepository
	summaries      *SummaryService
	tx             domain.TxRunner
	eventPublisher websocket.EventPublisher
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(incomeRepo domain.IncomeRepository, summaries *SummaryService, tx domain.TxRunner) *IncomeService {
	return &IncomeService{
		incomeRepo: incomeRepo,
		summaries:  summaries,
		tx:         tx,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *IncomeService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *IncomeService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateIncomeInput holds the input for creating an income
type CreateIncomeInput struct {
	Name       string
	Amount     decimal.Decimal
	OccurredOn *time.Time
}

// CreateIncome creates a new income and folds it into the user's summary
func (s *IncomeService) CreateIncome(ctx context.Context, userID uuid.UUID, input CreateIncomeInput) (*domain.Income, error) {
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

	var created *domain.Income
	var summary *domain.Summary
	err := s.summaries.WithUserLock(userID, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			created, err = s.incomeRepo.Create(ctx, &domain.Income{
				UserID:     userID,
				Name:       name,
				Amount:     input.Amount,
				OccurredOn: occurredOn,
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

	s.publishEvent(userID, websocket.IncomeCreated(created))
	s.publishEvent(userID, websocket.SummaryUpdated(summary))

	return created, nil
}

// GetIncomes retrieves incomes for a user with pagination
func (s *IncomeService) GetIncomes(ctx context.Context, userID uuid.UUID, filters *domain.ListFilters) (*domain.PaginatedIncomes, error) {
	return s.incomeRepo.GetByUser(ctx, userID, filters)
}

// GetIncomeByID retrieves a single income owned by the user
func (s *IncomeService) GetIncomeByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Income, error) {
	return s.incomeRepo.GetByID(ctx, userID, id)
}

// UpdateIncomeInput holds the input for updating an income. A nil
// OccurredOn keeps the stored date.
type UpdateIncomeInput struct {
	Name       string
	Amount     decimal.Decimal
	OccurredOn *time.Time
}

// UpdateIncome updates an income and folds the amount delta into the
// user's summary
func (s *IncomeService) UpdateIncome(ctx context.Context, userID uuid.UUID, id uuid.UUID, input UpdateIncomeInput) (*domain.Income, error) {
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

	var updated *domain.Income
	var summary *domain.Summary
	err := s.summaries.WithUserLock(userID, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			// The stored amount is the aggregation reference, not the
			// request's idea of it
			existing, err := s.incomeRepo.GetByID(ctx, userID, id)
			if err != nil {
				return err
			}

			occurredOn := existing.OccurredOn
			if input.OccurredOn != nil {
				occurredOn = *input.OccurredOn
			}

			updated, err = s.incomeRepo.Update(ctx, userID, id, &domain.UpdateIncomeData{
				Name:       name,
				Amount:     input.Amount,
				OccurredOn: occurredOn,
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

	s.publishEvent(userID, websocket.IncomeUpdated(updated))
	s.publishEvent(userID, websocket.SummaryUpdated(summary))

	return updated, nil
}

// DeleteIncome deletes an income and removes its contribution from the
// user's summary
func (s *IncomeService) DeleteIncome(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	var deleted *domain.Income
	var summary *domain.Summary
	err := s.summaries.WithUserLock(userID, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			existing, err := s.incomeRepo.GetByID(ctx, userID, id)
			if err != nil {
				return err
			}

			if err := s.incomeRepo.Delete(ctx, userID, id); err != nil {
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

	s.publishEvent(userID, websocket.IncomeDeleted(deleted))
	s.publishEvent(userID, websocket.SummaryUpdated(summary))

	return nil
}
