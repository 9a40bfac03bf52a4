package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/service"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newIncomeHandlerForTest() (*IncomeHandler, *testutil.MockSummaryRepository) {
	incomeRepo := testutil.NewMockIncomeRepository()
	summaryRepo := testutil.NewMockSummaryRepository()
	incomeService := service.NewIncomeService(incomeRepo, service.NewSummaryService(summaryRepo), testutil.NewMockTxRunner())
	return NewIncomeHandler(incomeService), summaryRepo
}

func TestCreateIncome_Success(t *testing.T) {
	e := echo.New()
	handler, summaryRepo := newIncomeHandlerForTest()
	userID := uuid.New()

	reqBody := `{"name": "Salary", "amount": "10000000", "date": "2026-08-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/incomes", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID, uuid.New())

	if err := handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response IncomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Name != "Salary" {
		t.Errorf("Expected name 'Salary', got %s", response.Name)
	}
	if response.Amount != "10000000" {
		t.Errorf("Expected amount '10000000', got %s", response.Amount)
	}
	if response.OccurredOn != "2026-08-01" {
		t.Errorf("Expected date '2026-08-01', got %s", response.OccurredOn)
	}

	// The summary row is created alongside the first entry
	summary, err := summaryRepo.GetByUser(c.Request().Context(), userID)
	if err != nil {
		t.Fatalf("Expected summary to exist, got %v", err)
	}
	if summary.IncomesCount != 1 {
		t.Errorf("Expected incomes count 1, got %d", summary.IncomesCount)
	}
}

func TestCreateIncome_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"name": "", "amount": "100"}`},
		{name: "bad amount", body: `{"name": "Salary", "amount": "not-a-number"}`},
		{name: "negative amount", body: `{"name": "Salary", "amount": "-5"}`},
		{name: "bad date", body: `{"name": "Salary", "amount": "100", "date": "01/02/2026"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			handler, _ := newIncomeHandlerForTest()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/incomes", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			setupAuthContext(c, uuid.New(), uuid.New())

			if err := handler.CreateIncome(c); err != nil {
				t.Fatalf("Expected JSON response, got error: %v", err)
			}

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetIncomes_Pagination(t *testing.T) {
	e := echo.New()
	handler, _ := newIncomeHandlerForTest()
	userID := uuid.New()

	for i := 0; i < 25; i++ {
		reqBody := fmt.Sprintf(`{"name": "Income %d", "amount": "100"}`, i)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/incomes", strings.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setupAuthContext(c, userID, uuid.New())
		if err := handler.CreateIncome(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incomes?page=2&pageSize=20", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID, uuid.New())

	if err := handler.GetIncomes(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response PaginatedIncomesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(response.Data) != 5 {
		t.Errorf("Expected 5 items on page 2, got %d", len(response.Data))
	}
	if response.TotalItems != 25 {
		t.Errorf("Expected 25 total items, got %d", response.TotalItems)
	}
	if response.TotalPages != 2 {
		t.Errorf("Expected 2 total pages, got %d", response.TotalPages)
	}
}

func TestGetIncomes_InvalidPage(t *testing.T) {
	e := echo.New()
	handler, _ := newIncomeHandlerForTest()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incomes?page=0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New(), uuid.New())

	if err := handler.GetIncomes(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestUpdateIncome_Success(t *testing.T) {
	e := echo.New()
	handler, summaryRepo := newIncomeHandlerForTest()
	userID := uuid.New()

	reqBody := `{"name": "Salary", "amount": "3000000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/incomes", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID, uuid.New())
	if err := handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var created IncomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	updateBody := `{"name": "Salary", "amount": "100000"}`
	req = httptest.NewRequest(http.MethodPut, "/api/v1/incomes/"+created.ID, strings.NewReader(updateBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	setupAuthContext(c, userID, uuid.New())

	if err := handler.UpdateIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	// The summary absorbs the amount delta
	summary, err := summaryRepo.GetByUser(c.Request().Context(), userID)
	if err != nil {
		t.Fatalf("Expected summary, got %v", err)
	}
	if summary.IncomesTotal.String() != "100000" {
		t.Errorf("Expected incomes total 100000, got %s", summary.IncomesTotal)
	}
	if summary.IncomesCount != 1 {
		t.Errorf("Expected incomes count 1, got %d", summary.IncomesCount)
	}
}

func TestUpdateIncome_NotFound(t *testing.T) {
	e := echo.New()
	handler, _ := newIncomeHandlerForTest()

	reqBody := `{"name": "Salary", "amount": "100"}`
	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/incomes/"+id, strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	setupAuthContext(c, uuid.New(), uuid.New())

	if err := handler.UpdateIncome(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteIncome_Success(t *testing.T) {
	e := echo.New()
	handler, summaryRepo := newIncomeHandlerForTest()
	userID := uuid.New()

	reqBody := `{"name": "Salary", "amount": "3000000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/incomes", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID, uuid.New())
	if err := handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var created IncomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/incomes/"+created.ID, nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	setupAuthContext(c, userID, uuid.New())

	if err := handler.DeleteIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	summary, err := summaryRepo.GetByUser(c.Request().Context(), userID)
	if err != nil {
		t.Fatalf("Expected summary, got %v", err)
	}
	if !summary.IncomesTotal.IsZero() {
		t.Errorf("Expected incomes total 0, got %s", summary.IncomesTotal)
	}
	if summary.IncomesCount != 0 {
		t.Errorf("Expected incomes count 0, got %d", summary.IncomesCount)
	}
}
