package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService    *service.LoanService
	alertScheduler *service.AlertScheduler
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService, alertScheduler *service.AlertScheduler) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		alertScheduler: alertScheduler,
	}
}

// CreateLoanRequest represents the create loan request body
type CreateLoanRequest struct {
	CustomerID       int32   `json:"customerId"`
	Amount           string  `json:"amount"`
	InterestRate     string  `json:"interestRate"`
	TenureMonths     int32   `json:"tenureMonths"`
	ProcessingFeePct *string `json:"processingFeePct,omitempty"`
}

// DisburseLoanRequest represents the disburse loan request body
type DisburseLoanRequest struct {
	DisbursalDate string `json:"disbursalDate"`
}

// PayInstallmentRequest represents the pay installment request body
type PayInstallmentRequest struct {
	EMINumber   int32   `json:"emiNumber"`
	PaymentDate *string `json:"paymentDate,omitempty"`
}

// ForecloseLoanRequest represents the foreclose loan request body
type ForecloseLoanRequest struct {
	SettledAmount  string `json:"settledAmount"`
	AmountReceived bool   `json:"amountReceived"`
}

// InstallmentResponse represents one schedule entry in API responses
type InstallmentResponse struct {
	EMINumber   int32   `json:"emiNumber"`
	Amount      string  `json:"amount"`
	DueDate     string  `json:"dueDate"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"paymentDate,omitempty"`
}

// ForeclosureResponse represents a foreclosure in API responses
type ForeclosureResponse struct {
	SettledAmount  string `json:"settledAmount"`
	AmountReceived bool   `json:"amountReceived"`
	Date           string `json:"date"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID               int64                 `json:"id"`
	CustomerID       int32                 `json:"customerId"`
	Amount           string                `json:"amount"`
	InterestRate     string                `json:"interestRate"`
	TenureMonths     int32                 `json:"tenureMonths"`
	ProcessingFeePct string                `json:"processingFeePct"`
	ProcessingFee    string                `json:"processingFee"`
	EMI              string                `json:"emi"`
	TotalPayable     string                `json:"totalPayable"`
	TotalPaid        string                `json:"totalPaid"`
	Outstanding      string                `json:"outstanding"`
	Status           string                `json:"status"`
	DisbursalDate    *string               `json:"disbursalDate,omitempty"`
	Schedule         []InstallmentResponse `json:"schedule,omitempty"`
	Foreclosure      *ForeclosureResponse  `json:"foreclosure,omitempty"`
	CreatedAt        string                `json:"createdAt"`
}

func toLoanResponse(loan *domain.Loan) LoanResponse {
	resp := LoanResponse{
		ID:               loan.ID,
		CustomerID:       loan.CustomerID,
		Amount:           loan.Amount.StringFixed(2),
		InterestRate:     loan.InterestRate.String(),
		TenureMonths:     loan.TenureMonths,
		ProcessingFeePct: loan.ProcessingFeePct.String(),
		ProcessingFee:    loan.ProcessingFee.StringFixed(2),
		EMI:              loan.EMI.StringFixed(2),
		TotalPayable:     loan.TotalPayable().StringFixed(2),
		TotalPaid:        loan.TotalPaid().StringFixed(2),
		Outstanding:      loan.Outstanding().StringFixed(2),
		Status:           string(loan.Status),
		CreatedAt:        loan.CreatedAt.Format(time.RFC3339),
	}
	if loan.DisbursalDate != nil {
		date := loan.DisbursalDate.Format("2006-01-02")
		resp.DisbursalDate = &date
	}
	for _, inst := range loan.Schedule {
		ir := InstallmentResponse{
			EMINumber: inst.EMINumber,
			Amount:    inst.Amount.StringFixed(2),
			DueDate:   inst.DueDate.Format("2006-01-02"),
			Status:    string(inst.Status),
		}
		if inst.PaymentDate != nil {
			paid := inst.PaymentDate.Format("2006-01-02")
			ir.PaymentDate = &paid
		}
		resp.Schedule = append(resp.Schedule, ir)
	}
	if loan.Foreclosure != nil {
		resp.Foreclosure = &ForeclosureResponse{
			SettledAmount:  loan.Foreclosure.SettledAmount.StringFixed(2),
			AmountReceived: loan.Foreclosure.AmountReceived,
			Date:           loan.Foreclosure.Date.Format("2006-01-02"),
		}
	}
	return resp
}

// resyncAlerts reschedules reminders after any schedule-affecting change.
// Scheduling failures are logged, never surfaced to the API caller.
func (h *LoanHandler) resyncAlerts(companyID int32) {
	if h.alertScheduler == nil {
		return
	}
	if err := h.alertScheduler.SyncCompany(companyID); err != nil {
		log.Warn().Err(err).Int32("company_id", companyID).Msg("Failed to resync alerts")
	}
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil {
		return NewValidationError(c, "Invalid interest rate", []ValidationError{
			{Field: "interestRate", Message: "Must be a valid decimal number"},
		})
	}

	feePct := decimal.Zero
	if req.ProcessingFeePct != nil && *req.ProcessingFeePct != "" {
		feePct, err = decimal.NewFromString(*req.ProcessingFeePct)
		if err != nil {
			return NewValidationError(c, "Invalid processing fee percentage", []ValidationError{
				{Field: "processingFeePct", Message: "Must be a valid decimal number"},
			})
		}
	}

	loan, err := h.loanService.CreateLoan(companyID, service.CreateLoanInput{
		CustomerID:       req.CustomerID,
		Amount:           amount,
		InterestRate:     rate,
		TenureMonths:     req.TenureMonths,
		ProcessingFeePct: feePct,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerNotFound):
			return NewNotFoundError(c, "Customer not found")
		case errors.Is(err, domain.ErrLoanCustomerInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "customerId", Message: "Customer is required"},
			})
		case errors.Is(err, domain.ErrLoanAmountInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be at least 1000"},
			})
		case errors.Is(err, domain.ErrLoanRateInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "interestRate", Message: "Interest rate must not be negative"},
			})
		case errors.Is(err, domain.ErrLoanTenureInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "tenureMonths", Message: "Tenure must be at least 1 month"},
			})
		default:
			log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to create loan")
			return NewInternalError(c, "Failed to create loan")
		}
	}

	return c.JSON(http.StatusCreated, toLoanResponse(loan))
}

// GetLoans handles GET /api/v1/loans
func (h *LoanHandler) GetLoans(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	var (
		loans []*domain.Loan
		err   error
	)
	if customerParam := c.QueryParam("customerId"); customerParam != "" {
		var customerID int32
		customerID, err = parseQueryInt32(customerParam)
		if err != nil {
			return NewValidationError(c, "Invalid customer ID", nil)
		}
		loans, err = h.loanService.GetLoansByCustomer(companyID, customerID)
	} else {
		loans, err = h.loanService.GetLoans(companyID)
	}
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to get loans")
		return NewInternalError(c, "Failed to get loans")
	}

	responses := make([]LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, toLoanResponse(loan))
	}

	return c.JSON(http.StatusOK, responses)
}

// GetLoan handles GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.GetLoan(companyID, id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Int64("loan_id", id).Msg("Failed to get loan")
		return NewInternalError(c, "Failed to get loan")
	}

	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// ApproveLoan handles POST /api/v1/loans/:id/approve
func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	return h.transition(c, h.loanService.ApproveLoan)
}

// RejectLoan handles POST /api/v1/loans/:id/reject
func (h *LoanHandler) RejectLoan(c echo.Context) error {
	return h.transition(c, h.loanService.RejectLoan)
}

func (h *LoanHandler) transition(c echo.Context, op func(int32, int64) (*domain.Loan, error)) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := op(companyID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanNotPending):
			return NewConflictError(c, "Loan is not pending")
		default:
			log.Error().Err(err).Int64("loan_id", id).Msg("Failed to transition loan")
			return NewInternalError(c, "Failed to update loan")
		}
	}

	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// DisburseLoan handles POST /api/v1/loans/:id/disburse
func (h *LoanHandler) DisburseLoan(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req DisburseLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	disbursalDate := time.Now()
	if req.DisbursalDate != "" {
		disbursalDate, err = time.Parse("2006-01-02", req.DisbursalDate)
		if err != nil {
			return NewValidationError(c, "Invalid disbursal date", []ValidationError{
				{Field: "disbursalDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
	}

	loan, err := h.loanService.DisburseLoan(companyID, id, disbursalDate)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanNotApproved):
			return NewConflictError(c, "Loan is not approved")
		default:
			log.Error().Err(err).Int64("loan_id", id).Msg("Failed to disburse loan")
			return NewInternalError(c, "Failed to disburse loan")
		}
	}

	h.resyncAlerts(companyID)

	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// PayInstallment handles POST /api/v1/loans/:id/pay
func (h *LoanHandler) PayInstallment(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req PayInstallmentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.EMINumber < 1 {
		return NewValidationError(c, "Invalid EMI number", []ValidationError{
			{Field: "emiNumber", Message: "EMI number must be at least 1"},
		})
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return NewValidationError(c, "Invalid payment date", []ValidationError{
				{Field: "paymentDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
	}

	loan, err := h.loanService.PayInstallment(companyID, id, req.EMINumber, paymentDate)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanNotDisbursed):
			return NewConflictError(c, "Loan has not been disbursed")
		case errors.Is(err, domain.ErrInstallmentNotFound):
			return NewNotFoundError(c, "Installment not found")
		case errors.Is(err, domain.ErrInstallmentNotPending):
			return NewConflictError(c, "Installment has already been settled")
		default:
			log.Error().Err(err).Int64("loan_id", id).Msg("Failed to record payment")
			return NewInternalError(c, "Failed to record payment")
		}
	}

	h.resyncAlerts(companyID)

	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// ForecloseLoan handles POST /api/v1/loans/:id/foreclose
func (h *LoanHandler) ForecloseLoan(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req ForecloseLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	settledAmount, err := decimal.NewFromString(req.SettledAmount)
	if err != nil || settledAmount.IsNegative() {
		return NewValidationError(c, "Invalid settled amount", []ValidationError{
			{Field: "settledAmount", Message: "Must be a non-negative decimal number"},
		})
	}

	loan, err := h.loanService.ForecloseLoan(companyID, id, settledAmount, req.AmountReceived)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanNotDisbursed):
			return NewConflictError(c, "Loan has not been disbursed")
		case errors.Is(err, domain.ErrLoanAlreadyClosed):
			return NewConflictError(c, "Loan is already closed")
		case errors.Is(err, domain.ErrForeclosureAlreadySet):
			return NewConflictError(c, "Loan already has a foreclosure")
		default:
			log.Error().Err(err).Int64("loan_id", id).Msg("Failed to foreclose loan")
			return NewInternalError(c, "Failed to foreclose loan")
		}
	}

	h.resyncAlerts(companyID)

	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// DeleteLoan handles DELETE /api/v1/loans/:id
func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	if err := h.loanService.DeleteLoan(companyID, id); err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Int64("loan_id", id).Msg("Failed to delete loan")
		return NewInternalError(c, "Failed to delete loan")
	}

	h.resyncAlerts(companyID)

	return c.NoContent(http.StatusNoContent)
}

func parseQueryInt32(value string) (int32, error) {
	parsed, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(parsed), nil
}
