package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAccumulateTotal_Create(t *testing.T) {
	// Creation is the reference=0 case
	total := AccumulateTotal(decimal.NewFromInt(10000000), decimal.NewFromInt(300000), decimal.Zero)
	if !total.Equal(decimal.NewFromInt(10300000)) {
		t.Errorf("Expected 10300000, got %s", total)
	}
}

func TestAccumulateTotal_FirstEntry(t *testing.T) {
	total := AccumulateTotal(decimal.Zero, decimal.NewFromInt(300000), decimal.Zero)
	if !total.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("Expected 300000, got %s", total)
	}
}

func TestAccumulateTotal_UpdateDecrease(t *testing.T) {
	total := AccumulateTotal(decimal.NewFromInt(3000000), decimal.NewFromInt(100000), decimal.NewFromInt(3000000))
	if !total.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("Expected 100000, got %s", total)
	}
}

func TestAccumulateTotal_UpdateIncrease(t *testing.T) {
	total := AccumulateTotal(decimal.NewFromInt(3000000), decimal.NewFromInt(4000000), decimal.NewFromInt(3000000))
	if !total.Equal(decimal.NewFromInt(4000000)) {
		t.Errorf("Expected 4000000, got %s", total)
	}
}

func TestAccumulateTotal_Delete(t *testing.T) {
	// Deletion passes newAmount=0 with the entry amount as reference
	total := AccumulateTotal(decimal.NewFromInt(10000000), decimal.Zero, decimal.NewFromInt(400000))
	if !total.Equal(decimal.NewFromInt(9600000)) {
		t.Errorf("Expected 9600000, got %s", total)
	}
}

func TestNewSummary_Empty(t *testing.T) {
	userID := uuid.New()
	s := NewSummary(userID)

	if s.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, s.UserID)
	}
	if !s.IncomesTotal.IsZero() || !s.ExpensesTotal.IsZero() {
		t.Error("Expected zero totals on a fresh summary")
	}
	if s.IncomesCount != 0 || s.ExpensesCount != 0 {
		t.Error("Expected zero counts on a fresh summary")
	}
}

func TestSummary_TotalForAndSetTotal(t *testing.T) {
	s := NewSummary(uuid.New())

	s.SetTotal(EntryKindIncome, decimal.NewFromInt(500))
	s.SetTotal(EntryKindExpense, decimal.NewFromInt(200))

	if !s.TotalFor(EntryKindIncome).Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected income total 500, got %s", s.TotalFor(EntryKindIncome))
	}
	if !s.TotalFor(EntryKindExpense).Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected expense total 200, got %s", s.TotalFor(EntryKindExpense))
	}
}

func TestSummary_BumpCount(t *testing.T) {
	s := NewSummary(uuid.New())

	s.BumpCount(EntryKindIncome, 1)
	s.BumpCount(EntryKindIncome, 1)
	s.BumpCount(EntryKindExpense, 1)
	s.BumpCount(EntryKindExpense, -1)

	if s.CountFor(EntryKindIncome) != 2 {
		t.Errorf("Expected income count 2, got %d", s.CountFor(EntryKindIncome))
	}
	if s.CountFor(EntryKindExpense) != 0 {
		t.Errorf("Expected expense count 0, got %d", s.CountFor(EntryKindExpense))
	}
}

func TestEntryKind_Valid(t *testing.T) {
	if !EntryKindIncome.Valid() || !EntryKindExpense.Valid() {
		t.Error("Expected known kinds to be valid")
	}
	if EntryKind("transfer").Valid() {
		t.Error("Expected unknown kind to be invalid")
	}
}
