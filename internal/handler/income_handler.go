package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/middleware"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// IncomeHandler handles income-related HTTP requests
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeRequest represents the create income request body
type CreateIncomeRequest struct {
	Name   string  `json:"name"`
	Amount string  `json:"amount"`
	Date   *string `json:"date,omitempty"`
}

// UpdateIncomeRequest represents the update income request body
type UpdateIncomeRequest struct {
	Name   string  `json:"name"`
	Amount string  `json:"amount"`
	Date   *string `json:"date,omitempty"`
}

// IncomeResponse represents an income in API responses
type IncomeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	OccurredOn string `json:"occurredOn"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// PaginatedIncomesResponse represents paginated incomes in API responses
type PaginatedIncomesResponse struct {
	Data       []IncomeResponse `json:"data"`
	Page       int32            `json:"page"`
	PageSize   int32            `json:"pageSize"`
	TotalItems int64            `json:"totalItems"`
	TotalPages int32            `json:"totalPages"`
}

func toIncomeResponse(income *domain.Income) IncomeResponse {
	return IncomeResponse{
		ID:         income.ID.String(),
		Name:       income.Name,
		Amount:     income.Amount.String(),
		OccurredOn: income.OccurredOn.Format("2006-01-02"),
		CreatedAt:  income.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  income.UpdatedAt.Format(time.RFC3339),
	}
}

// parseListFilters reads page/pageSize query params into ListFilters.
// Shared by the income, expense and category list endpoints.
func parseListFilters(c echo.Context) (*domain.ListFilters, error) {
	filters := &domain.ListFilters{
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		page, err := strconv.ParseInt(pageStr, 10, 32)
		if err != nil || page < 1 {
			return nil, errors.New("invalid page")
		}
		filters.Page = int32(page)
	}

	if pageSizeStr := c.QueryParam("pageSize"); pageSizeStr != "" {
		pageSize, err := strconv.ParseInt(pageSizeStr, 10, 32)
		if err != nil || pageSize < 1 {
			return nil, errors.New("invalid pageSize")
		}
		if pageSize > domain.MaxPageSize {
			pageSize = domain.MaxPageSize
		}
		filters.PageSize = int32(pageSize)
	}

	return filters, nil
}

// parseEntryDate parses an optional YYYY-MM-DD date from a request body
func parseEntryDate(date *string) (*time.Time, error) {
	if date == nil || *date == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *date)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ledgerValidationResponse maps the shared ledger entry validation errors
// to a problem details response, or returns false when err is not one of them.
func ledgerValidationResponse(c echo.Context, err error) (error, bool) {
	if errors.Is(err, domain.ErrNameRequired) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		}), true
	}
	if errors.Is(err, domain.ErrNameTooLong) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		}), true
	}
	if errors.Is(err, domain.ErrInvalidAmount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		}), true
	}
	return nil, false
}

// CreateIncome godoc
// @Summary Create an income
// @Description Record a new income entry and fold it into the user's summary
// @Tags incomes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeRequest true "Income creation request"
// @Success 201 {object} IncomeResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /incomes [post]
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateIncomeRequest
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

	income, err := h.incomeService.CreateIncome(c.Request().Context(), userID, service.CreateIncomeInput{
		Name:       req.Name,
		Amount:     amount,
		OccurredOn: occurredOn,
	})
	if err != nil {
		if resp, ok := ledgerValidationResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create income")
		return NewInternalError(c, "Failed to create income")
	}

	log.Info().Str("user_id", userID.String()).Str("income_id", income.ID.String()).Str("name", income.Name).Msg("Income created")

	return c.JSON(http.StatusCreated, toIncomeResponse(income))
}

// GetIncomes godoc
// @Summary List incomes
// @Description Get the authenticated user's incomes, newest first
// @Tags incomes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} PaginatedIncomesResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /incomes [get]
func (h *IncomeHandler) GetIncomes(c echo.Context) error {
	userID := middleware.GetUserID(c)

	filters, err := parseListFilters(c)
	if err != nil {
		return NewValidationError(c, "Invalid pagination parameters", nil)
	}

	result, err := h.incomeService.GetIncomes(c.Request().Context(), userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get incomes")
		return NewInternalError(c, "Failed to get incomes")
	}

	response := PaginatedIncomesResponse{
		Data:       make([]IncomeResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, income := range result.Data {
		response.Data[i] = toIncomeResponse(income)
	}

	return c.JSON(http.StatusOK, response)
}

// GetIncome godoc
// @Summary Get an income
// @Tags incomes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Income ID"
// @Success 200 {object} IncomeResponse
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /incomes/{id} [get]
func (h *IncomeHandler) GetIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	income, err := h.incomeService.GetIncomeByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("income_id", id.String()).Msg("Failed to get income")
		return NewInternalError(c, "Failed to get income")
	}

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// UpdateIncome godoc
// @Summary Update an income
// @Description Update an income entry; the summary absorbs the amount delta
// @Tags incomes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Income ID"
// @Param request body UpdateIncomeRequest true "Income update request"
// @Success 200 {object} IncomeResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /incomes/{id} [put]
func (h *IncomeHandler) UpdateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	var req UpdateIncomeRequest
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

	income, err := h.incomeService.UpdateIncome(c.Request().Context(), userID, id, service.UpdateIncomeInput{
		Name:       req.Name,
		Amount:     amount,
		OccurredOn: occurredOn,
	})
	if err != nil {
		if resp, ok := ledgerValidationResponse(c, err); ok {
			return resp
		}
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("income_id", id.String()).Msg("Failed to update income")
		return NewInternalError(c, "Failed to update income")
	}

	log.Info().Str("user_id", userID.String()).Str("income_id", income.ID.String()).Msg("Income updated")

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// DeleteIncome godoc
// @Summary Delete an income
// @Description Delete an income entry and subtract it from the user's summary
// @Tags incomes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Income ID"
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /incomes/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	if err := h.incomeService.DeleteIncome(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("income_id", id.String()).Msg("Failed to delete income")
		return NewInternalError(c, "Failed to delete income")
	}

	log.Info().Str("user_id", userID.String()).Str("income_id", id.String()).Msg("Income deleted")

	return c.NoContent(http.StatusNoContent)
}
