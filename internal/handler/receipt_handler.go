package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/middleware"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles expense receipt HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptResponse represents receipt rendition URLs in API responses
type ReceiptResponse struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

func toReceiptResponse(meta *service.ReceiptMetadata) ReceiptResponse {
	return ReceiptResponse{
		ID:           meta.ID,
		ThumbnailURL: meta.ThumbnailURL,
		DisplayURL:   meta.DisplayURL,
		OriginalURL:  meta.OriginalURL,
	}
}

// UploadReceipt godoc
// @Summary Attach a receipt image to an expense
// @Description Upload a receipt image; a previously attached receipt is replaced
// @Tags receipts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param file formData file true "Receipt image (JPEG, PNG or WebP, max 5MB)"
// @Success 201 {object} ReceiptResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [post]
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	// Storage may be unconfigured; don't attempt processing against nil storage
	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	meta, err := h.receiptService.AttachReceipt(c.Request().Context(), userID, expenseID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExpenseNotFound):
			return NewNotFoundError(c, "Expense not found")
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrInvalidReceiptFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case errors.Is(err, service.ErrReceiptTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Str("expense_id", expenseID.String()).Msg("Failed to upload receipt")
			return NewInternalError(c, "Failed to upload receipt")
		}
	}

	log.Info().Str("user_id", userID.String()).Str("expense_id", expenseID.String()).Str("receipt_id", meta.ID).Msg("Receipt attached")

	return c.JSON(http.StatusCreated, toReceiptResponse(meta))
}

// GetReceipt godoc
// @Summary Get receipt URLs for an expense
// @Description Get presigned URLs for the receipt renditions of an expense
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} ReceiptResponse
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [get]
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt storage not configured")
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	meta, err := h.receiptService.GetReceiptURLs(c.Request().Context(), userID, expenseID)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		if errors.Is(err, service.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Expense has no receipt")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("expense_id", expenseID.String()).Msg("Failed to get receipt")
		return NewInternalError(c, "Failed to get receipt")
	}

	return c.JSON(http.StatusOK, toReceiptResponse(meta))
}

// DeleteReceipt godoc
// @Summary Remove the receipt from an expense
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [delete]
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt storage not configured")
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.receiptService.RemoveReceipt(c.Request().Context(), userID, expenseID); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		if errors.Is(err, service.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Expense has no receipt")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("expense_id", expenseID.String()).Msg("Failed to delete receipt")
		return NewInternalError(c, "Failed to delete receipt")
	}

	log.Info().Str("user_id", userID.String()).Str("expense_id", expenseID.String()).Msg("Receipt removed")

	return c.NoContent(http.StatusNoContent)
}
