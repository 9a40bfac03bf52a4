package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/repository/storage"
	"github.com/rs/zerolog/log"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	DisplayWidth     = 800
	JPEGQuality      = 85

	// presignedURLExpiry bounds how long receipt links stay valid
	presignedURLExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat        = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData          = errors.New("invalid image data")
	ErrReceiptNotFound             = errors.New("receipt not found")
	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// receiptVariants are the stored renditions of an uploaded receipt
var receiptVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
	{"original", 0}, // 0 means keep original size
}

// ReceiptMetadata contains presigned URLs for the receipt renditions
type ReceiptMetadata struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// ReceiptService handles receipt image processing and storage for expenses
type ReceiptService struct {
	storage     storage.ReceiptRepository
	expenseRepo domain.ExpenseRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository, expenseRepo domain.ExpenseRepository) *ReceiptService {
	return &ReceiptService{storage: storage, expenseRepo: expenseRepo}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the receipt image and returns the decoded image
func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}

	// Decode to verify it's a real image and check dimensions
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}

	return img, nil
}

// AttachReceipt processes a receipt image, uploads its renditions, and links
// it to the expense. A previously attached receipt is replaced.
func (s *ReceiptService) AttachReceipt(ctx context.Context, userID uuid.UUID, expenseID uuid.UUID, data []byte, filename string) (*ReceiptMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	expense, err := s.expenseRepo.GetByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()
	uploaded := make([]string, 0, len(receiptVariants))

	for _, variant := range receiptVariants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			// Resize maintaining aspect ratio
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode receipt: %w", err)
		}

		objectPath := receiptObjectPath(userID, expenseID, imageID, variant.name)
		if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			// Clean up any already uploaded renditions
			for _, path := range uploaded {
				_ = s.storage.Delete(ctx, path)
			}
			return nil, fmt.Errorf("failed to upload %s rendition: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	previous := expense.ReceiptImageID

	if _, err := s.expenseRepo.SetReceiptImageID(ctx, userID, expenseID, &imageID); err != nil {
		for _, path := range uploaded {
			_ = s.storage.Delete(ctx, path)
		}
		return nil, err
	}

	// Replaced receipt objects are orphans now; remove them best effort
	if previous != nil {
		if err := s.DeleteReceipt(ctx, userID, expenseID, *previous); err != nil {
			log.Warn().Err(err).
				Str("expense_id", expenseID.String()).
				Msg("Failed to clean up replaced receipt")
		}
	}

	return s.presignMetadata(ctx, userID, expenseID, imageID)
}

// GetReceiptURLs returns presigned URLs for the expense's receipt renditions
func (s *ReceiptService) GetReceiptURLs(ctx context.Context, userID uuid.UUID, expenseID uuid.UUID) (*ReceiptMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	expense, err := s.expenseRepo.GetByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.ReceiptImageID == nil {
		return nil, ErrReceiptNotFound
	}

	return s.presignMetadata(ctx, userID, expenseID, *expense.ReceiptImageID)
}

// RemoveReceipt detaches the expense's receipt and deletes its stored
// renditions
func (s *ReceiptService) RemoveReceipt(ctx context.Context, userID uuid.UUID, expenseID uuid.UUID) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageNotConfigured
	}

	expense, err := s.expenseRepo.GetByID(ctx, userID, expenseID)
	if err != nil {
		return err
	}
	if expense.ReceiptImageID == nil {
		return ErrReceiptNotFound
	}

	imageID := *expense.ReceiptImageID
	if _, err := s.expenseRepo.SetReceiptImageID(ctx, userID, expenseID, nil); err != nil {
		return err
	}

	return s.DeleteReceipt(ctx, userID, expenseID, imageID)
}

// DeleteReceipt deletes all stored renditions of a receipt image. It does
// not touch the expense row; callers handle that when the row still exists.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, userID uuid.UUID, expenseID uuid.UUID, imageID string) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageNotConfigured
	}

	var lastErr error
	for _, variant := range receiptVariants {
		if err := s.storage.Delete(ctx, receiptObjectPath(userID, expenseID, imageID, variant.name)); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (s *ReceiptService) presignMetadata(ctx context.Context, userID uuid.UUID, expenseID uuid.UUID, imageID string) (*ReceiptMetadata, error) {
	urls := make(map[string]string, len(receiptVariants))
	for _, variant := range receiptVariants {
		url, err := s.storage.GeneratePresignedURL(ctx, receiptObjectPath(userID, expenseID, imageID, variant.name), presignedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s rendition: %w", variant.name, err)
		}
		urls[variant.name] = url
	}

	return &ReceiptMetadata{
		ID:           imageID,
		ThumbnailURL: urls["thumb"],
		DisplayURL:   urls["display"],
		OriginalURL:  urls["original"],
	}, nil
}

func receiptObjectPath(userID uuid.UUID, expenseID uuid.UUID, imageID, variant string) string {
	return fmt.Sprintf("%s/%s/%s_%s.jpg", userID, expenseID, imageID, variant)
}
