package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

// makeJPEG produces an encoded JPEG of the given dimensions
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func newReceiptServiceForTest(t *testing.T) (*ReceiptService, *testutil.MockExpenseRepository, *testutil.MockReceiptRepository, uuid.UUID, *domain.Expense) {
	t.Helper()

	expenseRepo := testutil.NewMockExpenseRepository()
	receiptStorage := testutil.NewMockReceiptRepository()
	svc := NewReceiptService(receiptStorage, expenseRepo)

	userID := uuid.New()
	expense, err := expenseRepo.Create(context.Background(), &domain.Expense{
		UserID: userID,
		Name:   "Dinner",
		Amount: decimal.NewFromInt(200000),
	})
	if err != nil {
		t.Fatalf("failed to seed expense: %v", err)
	}

	return svc, expenseRepo, receiptStorage, userID, expense
}

func TestReceiptService_AttachReceipt_Success(t *testing.T) {
	svc, expenseRepo, receiptStorage, userID, expense := newReceiptServiceForTest(t)

	meta, err := svc.AttachReceipt(context.Background(), userID, expense.ID, makeJPEG(t, 400, 300), "receipt.jpg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if meta.ID == "" {
		t.Error("expected receipt ID")
	}
	if meta.ThumbnailURL == "" || meta.DisplayURL == "" || meta.OriginalURL == "" {
		t.Error("expected URLs for all renditions")
	}

	// Expense row carries the receipt link
	stored, err := expenseRepo.GetByID(context.Background(), userID, expense.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stored.ReceiptImageID == nil || *stored.ReceiptImageID != meta.ID {
		t.Error("expected expense linked to receipt")
	}

	// All renditions are stored
	for _, variant := range []string{"thumb", "display", "original"} {
		if !receiptStorage.HasObject(receiptObjectPath(userID, expense.ID, meta.ID, variant)) {
			t.Errorf("expected %s rendition in storage", variant)
		}
	}
}

func TestReceiptService_AttachReceipt_ReplacesPrevious(t *testing.T) {
	svc, _, receiptStorage, userID, expense := newReceiptServiceForTest(t)

	first, err := svc.AttachReceipt(context.Background(), userID, expense.ID, makeJPEG(t, 400, 300), "first.jpg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := svc.AttachReceipt(context.Background(), userID, expense.ID, makeJPEG(t, 400, 300), "second.jpg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if receiptStorage.HasObject(receiptObjectPath(userID, expense.ID, first.ID, "original")) {
		t.Error("expected replaced receipt objects to be removed")
	}
	if !receiptStorage.HasObject(receiptObjectPath(userID, expense.ID, second.ID, "original")) {
		t.Error("expected new receipt objects to be stored")
	}
}

func TestReceiptService_AttachReceipt_Validation(t *testing.T) {
	svc, _, _, userID, expense := newReceiptServiceForTest(t)
	ctx := context.Background()

	t.Run("too large", func(t *testing.T) {
		data := make([]byte, MaxReceiptSize+1)
		_, err := svc.AttachReceipt(ctx, userID, expense.ID, data, "receipt.jpg")
		if !errors.Is(err, ErrReceiptTooLarge) {
			t.Errorf("expected ErrReceiptTooLarge, got %v", err)
		}
	})

	t.Run("bad extension", func(t *testing.T) {
		_, err := svc.AttachReceipt(ctx, userID, expense.ID, makeJPEG(t, 400, 300), "receipt.pdf")
		if !errors.Is(err, ErrInvalidReceiptFormat) {
			t.Errorf("expected ErrInvalidReceiptFormat, got %v", err)
		}
	})

	t.Run("garbage data", func(t *testing.T) {
		_, err := svc.AttachReceipt(ctx, userID, expense.ID, []byte("not an image"), "receipt.jpg")
		if !errors.Is(err, ErrInvalidReceiptData) {
			t.Errorf("expected ErrInvalidReceiptData, got %v", err)
		}
	})

	t.Run("too small", func(t *testing.T) {
		_, err := svc.AttachReceipt(ctx, userID, expense.ID, makeJPEG(t, 10, 10), "receipt.jpg")
		if !errors.Is(err, ErrReceiptTooSmall) {
			t.Errorf("expected ErrReceiptTooSmall, got %v", err)
		}
	})
}

func TestReceiptService_AttachReceipt_ExpenseNotFound(t *testing.T) {
	svc, _, _, userID, _ := newReceiptServiceForTest(t)

	_, err := svc.AttachReceipt(context.Background(), userID, uuid.New(), makeJPEG(t, 400, 300), "receipt.jpg")
	if !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestReceiptService_GetReceiptURLs(t *testing.T) {
	svc, _, _, userID, expense := newReceiptServiceForTest(t)

	meta, err := svc.AttachReceipt(context.Background(), userID, expense.ID, makeJPEG(t, 400, 300), "receipt.jpg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	urls, err := svc.GetReceiptURLs(context.Background(), userID, expense.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if urls.ID != meta.ID {
		t.Errorf("expected receipt %s, got %s", meta.ID, urls.ID)
	}
}

func TestReceiptService_GetReceiptURLs_NoReceipt(t *testing.T) {
	svc, _, _, userID, expense := newReceiptServiceForTest(t)

	_, err := svc.GetReceiptURLs(context.Background(), userID, expense.ID)
	if !errors.Is(err, ErrReceiptNotFound) {
		t.Errorf("expected ErrReceiptNotFound, got %v", err)
	}
}

func TestReceiptService_RemoveReceipt(t *testing.T) {
	svc, expenseRepo, receiptStorage, userID, expense := newReceiptServiceForTest(t)

	meta, err := svc.AttachReceipt(context.Background(), userID, expense.ID, makeJPEG(t, 400, 300), "receipt.jpg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.RemoveReceipt(context.Background(), userID, expense.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stored, err := expenseRepo.GetByID(context.Background(), userID, expense.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stored.ReceiptImageID != nil {
		t.Error("expected receipt link cleared")
	}
	if receiptStorage.HasObject(receiptObjectPath(userID, expense.ID, meta.ID, "original")) {
		t.Error("expected receipt objects removed")
	}
}

func TestReceiptService_Disabled(t *testing.T) {
	var svc *ReceiptService

	if svc.IsEnabled() {
		t.Error("expected nil service to be disabled")
	}

	svc = NewReceiptService(nil, testutil.NewMockExpenseRepository())
	if svc.IsEnabled() {
		t.Error("expected service without storage to be disabled")
	}

	_, err := svc.AttachReceipt(context.Background(), uuid.New(), uuid.New(), nil, "receipt.jpg")
	if !errors.Is(err, ErrReceiptStorageNotConfigured) {
		t.Errorf("expected ErrReceiptStorageNotConfigured, got %v", err)
	}
}
