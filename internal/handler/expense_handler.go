package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/middleware"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Name       string  `json:"name"`
	Amount     string  `json:"amount"`
	Date       *string `json:"date,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// UpdateExpenseRequest represents the update expense request body
type UpdateExpenseRequest struct {
	Name       string  `json:"name"`
	Amount     string  `json:"amount"`
	Date       *string `json:"date,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Amount         string  `json:"amount"`
	OccurredOn     string  `json:"occurredOn"`
	CategoryID     *string `json:"categoryId,omitempty"`
	ReceiptImageID *string `json:"receiptImageId,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// PaginatedExpensesResponse represents paginated expenses in API responses
type PaginatedExpensesResponse struct {
	Data       []ExpenseResponse `json:"data"`
	Page       int32             `json:"page"`
	PageSize   int32             `json:"pageSize"`
	TotalItems int64             `json:"totalItems"`
	TotalPages int32             `json:"totalPages"`
}

func toExpenseResponse(expense *domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:             expense.ID.String(),
		Name:           expense.Name,
		Amount:         expense.Amount.String(),
		OccurredOn:     expense.OccurredOn.Format("2006-01-02"),
		ReceiptImageID: expense.ReceiptImageID,
		CreatedAt:      expense.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      expense.UpdatedAt.Format(time.RFC3339),
	}
	if expense.CategoryID != nil {
		categoryID := expense.CategoryID.String()
		resp.CategoryID = &categoryID
	}
	return resp
}

// parseCategoryID parses an optional category UUID from a request body
func parseCategoryID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreateExpense godoc
// @Summary Create an expense
// @Description Record a new expense entry and fold it into the user's summary
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "Expense creation request"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	occurredOn, err := parseEntryDate(req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		return NewValidationError(c, "Invalid categoryId", []ValidationError{
			{Field: "categoryId", Message: "Must be a valid UUID"},
		})
	}

	expense, err := h.expenseService.CreateExpense(c.Request().Context(), userID, service.CreateExpenseInput{
		Name:       req.Name,
		Amount:     amount,
		OccurredOn: occurredOn,
		CategoryID: categoryID,
	})
	if err != nil {
		if resp, ok := ledgerValidationResponse(c, err); ok {
			return resp
		}
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "categoryId", Message: "Category not found"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create expense")
		return NewInternalError(c, "Failed to create expense")
	}

	log.Info().Str("user_id", userID.String()).Str("expense_id", expense.ID.String()).Str("name", expense.Name).Msg("Expense created")

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses godoc
// @Summary List expenses
// @Description Get the authenticated user's expenses, newest first
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} PaginatedExpensesResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)

	filters, err := parseListFilters(c)
	if err != nil {
		return NewValidationError(c, "Invalid pagination parameters", nil)
	}

	result, err := h.expenseService.GetExpenses(c.Request().Context(), userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get expenses")
		return NewInternalError(c, "Failed to get expenses")
	}

	response := PaginatedExpensesResponse{
		Data:       make([]ExpenseResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, expense := range result.Data {
		response.Data[i] = toExpenseResponse(expense)
	}

	return c.JSON(http.StatusOK, response)
}

// GetExpense godoc
// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} ExpenseResponse
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("expense_id", id.String()).Msg("Failed to get expense")
		return NewInternalError(c, "Failed to get expense")
	}

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// UpdateExpense godoc
// @Summary Update an expense
// @Description Update an expense entry; the summary absorbs the amount delta
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body UpdateExpenseRequest true "Expense update request"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req UpdateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	occurredOn, err := parseEntryDate(req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		return NewValidationError(c, "Invalid categoryId", []ValidationError{
			{Field: "categoryId", Message: "Must be a valid UUID"},
		})
	}

	expense, err := h.expenseService.UpdateExpense(c.Request().Context(), userID, id, service.UpdateExpenseInput{
		Name:       req.Name,
		Amount:     amount,
		OccurredOn: occurredOn,
		CategoryID: categoryID,
	})
	if err != nil {
		if resp, ok := ledgerValidationResponse(c, err); ok {
			return resp
		}
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "categoryId", Message: "Category not found"},
			})
		}
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("expense_id", id.String()).Msg("Failed to update expense")
		return NewInternalError(c, "Failed to update expense")
	}

	log.Info().Str("user_id", userID.String()).Str("expense_id", expense.ID.String()).Msg("Expense updated")

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Description Delete an expense entry and subtract it from the user's summary
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.DeleteExpense(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("expense_id", id.String()).Msg("Failed to delete expense")
		return NewInternalError(c, "Failed to delete expense")
	}

	log.Info().Str("user_id", userID.String()).Str("expense_id", id.String()).Msg("Expense deleted")

	return c.NoContent(http.StatusNoContent)
}
