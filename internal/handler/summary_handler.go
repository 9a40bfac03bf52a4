package handler

import (
	"net/http"

	"github.com/kuatsaktiterus/expense-tracker-backend/internal/domain"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/middleware"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SummaryHandler handles summary HTTP requests
type SummaryHandler struct {
	summaryService *service.SummaryService
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// SummaryResponse represents the per-user rollup in API responses
type SummaryResponse struct {
	IncomesTotal  string `json:"incomesTotal"`
	IncomesCount  int64  `json:"incomesCount"`
	ExpensesTotal string `json:"expensesTotal"`
	ExpensesCount int64  `json:"expensesCount"`
	Balance       string `json:"balance"`
}

func toSummaryResponse(summary *domain.Summary) SummaryResponse {
	return SummaryResponse{
		IncomesTotal:  summary.IncomesTotal.String(),
		IncomesCount:  summary.IncomesCount,
		ExpensesTotal: summary.ExpensesTotal.String(),
		ExpensesCount: summary.ExpensesCount,
		Balance:       summary.IncomesTotal.Sub(summary.ExpensesTotal).String(),
	}
}

// GetSummary godoc
// @Summary Get the ledger summary
// @Description Get the authenticated user's running totals and entry counts
// @Tags summary
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SummaryResponse
// @Failure 401 {object} ProblemDetails
// @Router /summary [get]
func (h *SummaryHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.summaryService.GetSummary(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get summary")
		return NewInternalError(c, "Failed to get summary")
	}

	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}
