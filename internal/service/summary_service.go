package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SummaryService maintains the per-user summary incrementally. Ledger
// services call the OnEntry hooks from inside the transaction that mutates
// the income or expense row, so the row change and the summary change
// commit together. Callers must wrap the whole transaction in WithUserLock
// so same-user mutations cannot interleave their fetch-compute-write
// cycles.
type SummaryService struct {
	summaryRepo domain.SummaryRepository
	locks       *userLocks
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(summaryRepo domain.SummaryRepository) *SummaryService {
	return &SummaryService{
		summaryRepo: summaryRepo,
		locks:       newUserLocks(),
	}
}

// WithUserLock runs fn while holding the given user's aggregation lock.
// The lock must cover the full transaction, including commit; releasing it
// before commit would let a concurrent mutation read a total the database
// has not made visible yet.
func (s *SummaryService) WithUserLock(userID uuid.UUID, fn func() error) error {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return fn()
}

// GetSummary returns the user's summary. A user with no ledger activity has
// no summary row; they get the zero-value summary without one being
// persisted, so reads never create state.
func (s *SummaryService) GetSummary(ctx context.Context, userID uuid.UUID) (*domain.Summary, error) {
	summary, err := s.summaryRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSummaryNotFound) {
			return domain.NewSummary(userID), nil
		}
		return nil, err
	}
	return summary, nil
}

// OnEntryCreated folds a newly created ledger entry into the user's
// summary, creating the summary row if this is the user's first entry.
func (s *SummaryService) OnEntryCreated(ctx context.Context, entry *domain.LedgerEntry) (*domain.Summary, error) {
	if !entry.Kind.Valid() {
		return nil, domain.ErrInvalidEntryKind
	}

	summary, err := s.summaryRepo.GetByUser(ctx, entry.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrSummaryNotFound) {
			return nil, err
		}

		// First entry for this user: seed the summary with it
		summary = domain.NewSummary(entry.UserID)
		summary.SetTotal(entry.Kind, entry.Amount)
		summary.BumpCount(entry.Kind, 1)

		created, err := s.summaryRepo.Create(ctx, summary)
		if err != nil {
			return nil, err
		}

		log.Info().
			Str("user_id", entry.UserID.String()).
			Str("kind", string(entry.Kind)).
			Msg("Summary created for first ledger entry")

		return created, nil
	}

	total := domain.AccumulateTotal(summary.TotalFor(entry.Kind), entry.Amount, decimal.Zero)
	return s.summaryRepo.UpdateTotalWithCount(ctx, entry.UserID, entry.Kind, total, 1)
}

// OnEntryUpdated folds an amount change into the user's summary. The
// reference amount is the entry's amount before the update, read from the
// row being replaced. A missing summary here means an entry existed without
// one, which the caller must treat as a failure of the whole transaction.
func (s *SummaryService) OnEntryUpdated(ctx context.Context, entry *domain.LedgerEntry, referenceAmount decimal.Decimal) (*domain.Summary, error) {
	if !entry.Kind.Valid() {
		return nil, domain.ErrInvalidEntryKind
	}

	summary, err := s.summaryRepo.GetByUser(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}

	total := domain.AccumulateTotal(summary.TotalFor(entry.Kind), entry.Amount, referenceAmount)
	return s.summaryRepo.UpdateTotal(ctx, entry.UserID, entry.Kind, total)
}

// OnEntryDeleted removes a deleted ledger entry's contribution from the
// user's summary. Like updates, a missing summary is a hard error.
func (s *SummaryService) OnEntryDeleted(ctx context.Context, entry *domain.LedgerEntry) (*domain.Summary, error) {
	if !entry.Kind.Valid() {
		return nil, domain.ErrInvalidEntryKind
	}

	summary, err := s.summaryRepo.GetByUser(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}

	total := domain.AccumulateTotal(summary.TotalFor(entry.Kind), decimal.Zero, entry.Amount)
	return s.summaryRepo.UpdateTotalWithCount(ctx, entry.UserID, entry.Kind, total, -1)
}
