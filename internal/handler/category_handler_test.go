package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/service"
	"github.com/kuatsaktiterus/expense-tracker-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newCategoryHandlerForTest() *CategoryHandler {
	return NewCategoryHandler(service.NewCategoryService(testutil.NewMockCategoryRepository()))
}

func TestCreateCategory_Success(t *testing.T) {
	e := echo.New()
	handler := newCategoryHandlerForTest()

	reqBody := `{"name": "  Groceries  "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New(), uuid.New())

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Groceries" {
		t.Errorf("Expected trimmed name 'Groceries', got %q", response.Name)
	}
}

func TestCreateCategory_MissingName(t *testing.T) {
	e := echo.New()
	handler := newCategoryHandlerForTest()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name": ""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New(), uuid.New())

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestUpdateCategory_NotFound(t *testing.T) {
	e := echo.New()
	handler := newCategoryHandlerForTest()

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/categories/"+id, strings.NewReader(`{"name": "Utilities"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	setupAuthContext(c, uuid.New(), uuid.New())

	if err := handler.UpdateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteCategory_Success(t *testing.T) {
	e := echo.New()
	handler := newCategoryHandlerForTest()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name": "Transport"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID, uuid.New())
	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var created CategoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/categories/"+created.ID, nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	setupAuthContext(c, userID, uuid.New())

	if err := handler.DeleteCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}
