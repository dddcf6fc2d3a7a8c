package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/jls/financesuite/finance-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newCustomerHandler() (*CustomerHandler, *testutil.MockCustomerRepository) {
	customerRepo := testutil.NewMockCustomerRepository()
	loanRepo := testutil.NewMockLoanRepository()
	customerService := service.NewCustomerService(customerRepo, loanRepo)
	photoService := service.NewPhotoService(nil)
	return NewCustomerHandler(customerService, photoService), customerRepo
}

func TestCreateCustomer_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newCustomerHandler()

	body := `{"name":"Ravi Kumar","phone":"9876543210","email":"ravi@example.com","guarantor":{"name":"Suresh","phone":"9123456780"}}`
	req := jsonRequest(http.MethodPost, "/api/v1/customers", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.CreateCustomer(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CustomerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Ravi Kumar" {
		t.Errorf("Expected name 'Ravi Kumar', got %s", response.Name)
	}
	if response.Status != "Pending" {
		t.Errorf("Expected status Pending, got %s", response.Status)
	}
	if response.Guarantor == nil || response.Guarantor.Name != "Suresh" {
		t.Errorf("Expected guarantor retained, got %+v", response.Guarantor)
	}
}

func TestCreateCustomer_MissingName(t *testing.T) {
	e := echo.New()
	handler, _ := newCustomerHandler()

	body := `{"phone":"9876543210"}`
	req := jsonRequest(http.MethodPost, "/api/v1/customers", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.CreateCustomer(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetCustomers_CompanyIsolation(t *testing.T) {
	e := echo.New()
	handler, customerRepo := newCustomerHandler()

	if _, err := customerRepo.Create(&domain.Customer{CompanyID: 1, Name: "Mine", Phone: "1"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := customerRepo.Create(&domain.Customer{CompanyID: 2, Name: "Theirs", Phone: "2"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.GetCustomers(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []CustomerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 customer, got %d", len(response))
	}
	if response[0].Name != "Mine" {
		t.Errorf("Expected only own company's customer, got %s", response[0].Name)
	}
}

func TestUpdateCustomer_NotFound(t *testing.T) {
	e := echo.New()
	handler, _ := newCustomerHandler()

	body := `{"name":"Ravi","phone":"9876543210"}`
	req := jsonRequest(http.MethodPut, "/api/v1/customers/999", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.UpdateCustomer(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteCustomer_WithLiveLoans(t *testing.T) {
	e := echo.New()
	customerRepo := testutil.NewMockCustomerRepository()
	loanRepo := testutil.NewMockLoanRepository()
	customerService := service.NewCustomerService(customerRepo, loanRepo)
	handler := NewCustomerHandler(customerService, service.NewPhotoService(nil))

	customer, err := customerRepo.Create(&domain.Customer{CompanyID: 1, Name: "Ravi", Phone: "1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := loanRepo.Create(&domain.Loan{
		CompanyID:  1,
		CustomerID: customer.ID,
		Status:     domain.LoanStatusDisbursed,
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.DeleteCustomer(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestUploadPhoto_StorageDisabled(t *testing.T) {
	e := echo.New()
	handler, customerRepo := newCustomerHandler()

	if _, err := customerRepo.Create(&domain.Customer{CompanyID: 1, Name: "Ravi", Phone: "1"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/1/photo", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.UploadPhoto(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}
