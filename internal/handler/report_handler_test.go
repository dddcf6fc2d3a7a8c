package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/jls/financesuite/finance-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newReportHandlerFixture(t *testing.T) (*ReportHandler, *testutil.MockLoanRepository, int32) {
	t.Helper()
	loanRepo := testutil.NewMockLoanRepository()
	customerRepo := testutil.NewMockCustomerRepository()
	companyRepo := testutil.NewMockCompanyRepository()

	if _, err := companyRepo.Create(&domain.Company{Name: "Shree Finance"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	customer, err := customerRepo.Create(&domain.Customer{CompanyID: 1, Name: "Ravi Kumar", Phone: "9876543210"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reportService := service.NewReportService(loanRepo, customerRepo, companyRepo)
	return NewReportHandler(reportService), loanRepo, customer.ID
}

func seedDisbursedLoan(t *testing.T, loanRepo *testutil.MockLoanRepository, customerID int32, disbursed time.Time) *domain.Loan {
	t.Helper()
	loan := &domain.Loan{
		CompanyID:     1,
		CustomerID:    customerID,
		Amount:        decimal.NewFromInt(12000),
		InterestRate:  decimal.NewFromInt(12),
		TenureMonths:  12,
		EMI:           decimal.NewFromInt(1066),
		Status:        domain.LoanStatusActive,
		DisbursalDate: &disbursed,
	}
	for i := int32(1); i <= 12; i++ {
		loan.Schedule = append(loan.Schedule, domain.Installment{
			EMINumber: i,
			Amount:    decimal.NewFromInt(1066),
			DueDate:   disbursed.AddDate(0, int(i), 0),
			Status:    domain.InstallmentStatusPending,
		})
	}
	created, err := loanRepo.Create(loan)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return created
}

func TestGetPortfolioReport_Handler(t *testing.T) {
	e := echo.New()
	handler, loanRepo, customerID := newReportHandlerFixture(t)
	seedDisbursedLoan(t, loanRepo, customerID, time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/portfolio", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.GetPortfolioReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report service.PortfolioReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(report.Rows))
	}
	if report.Rows[0].CustomerName != "Ravi Kumar" {
		t.Errorf("Expected customer name resolved, got %s", report.Rows[0].CustomerName)
	}
}

func TestExportPortfolioPDF_Handler(t *testing.T) {
	e := echo.New()
	handler, loanRepo, customerID := newReportHandlerFixture(t)
	seedDisbursedLoan(t, loanRepo, customerID, time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/portfolio.pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.ExportPortfolioPDF(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("Expected content type application/pdf, got %s", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "attachment") {
		t.Errorf("Expected attachment disposition, got %s", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("Expected PDF body")
	}
}

func TestExportLegalNoticePDF_Handler(t *testing.T) {
	e := echo.New()
	handler, loanRepo, customerID := newReportHandlerFixture(t)

	// Long past disbursal with nothing paid: overdue
	seedDisbursedLoan(t, loanRepo, customerID, time.Now().AddDate(-1, -2, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/loans/10110/notice.pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("10110")
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.ExportLegalNoticePDF(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("Expected PDF body")
	}
}

func TestExportLegalNoticePDF_NotOverdue(t *testing.T) {
	e := echo.New()
	handler, loanRepo, customerID := newReportHandlerFixture(t)

	// Fresh loan, first due date ahead
	seedDisbursedLoan(t, loanRepo, customerID, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/loans/10110/notice.pdf", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("10110")
	setupAuthContextWithCompany(c, "auth0|test", "test@example.com", "Test User", "", 1)

	if err := handler.ExportLegalNoticePDF(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}
