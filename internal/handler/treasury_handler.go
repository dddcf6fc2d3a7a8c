package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TreasuryHandler handles partner transaction and expense HTTP requests
type TreasuryHandler struct {
	treasuryService *service.TreasuryService
}

// NewTreasuryHandler creates a new TreasuryHandler
func NewTreasuryHandler(treasuryService *service.TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{treasuryService: treasuryService}
}

// PartnerTransactionRequest represents the create partner transaction body
type PartnerTransactionRequest struct {
	Type        string `json:"type"`
	PartnerName string `json:"partnerName"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

// PartnerTransactionResponse represents a partner transaction in API responses
type PartnerTransactionResponse struct {
	ID          int32  `json:"id"`
	Type        string `json:"type"`
	PartnerName string `json:"partnerName"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func toPartnerTxResponse(tx *domain.PartnerTransaction) PartnerTransactionResponse {
	return PartnerTransactionResponse{
		ID:          tx.ID,
		Type:        string(tx.Type),
		PartnerName: tx.PartnerName,
		Amount:      tx.Amount.StringFixed(2),
		Date:        tx.Date.Format("2006-01-02"),
	}
}

// ExpenseRequest represents the create expense body
type ExpenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          int32  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func toExpenseResponse(expense *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		Description: expense.Description,
		Amount:      expense.Amount.StringFixed(2),
		Date:        expense.Date.Format("2006-01-02"),
	}
}

// CreatePartnerTransaction handles POST /api/v1/partner-transactions
func (h *TreasuryHandler) CreatePartnerTransaction(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	var req PartnerTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date := time.Now()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
	}

	tx, err := h.treasuryService.RecordPartnerTransaction(
		companyID, domain.PartnerTransactionType(req.Type), req.PartnerName, amount, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPartnerTxTypeInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Must be investment or withdrawal"},
			})
		case errors.Is(err, domain.ErrPartnerTxAmountInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		default:
			log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to record partner transaction")
			return NewInternalError(c, "Failed to record partner transaction")
		}
	}

	return c.JSON(http.StatusCreated, toPartnerTxResponse(tx))
}

// GetPartnerTransactions handles GET /api/v1/partner-transactions
func (h *TreasuryHandler) GetPartnerTransactions(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	txs, err := h.treasuryService.GetPartnerTransactions(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to get partner transactions")
		return NewInternalError(c, "Failed to get partner transactions")
	}

	responses := make([]PartnerTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toPartnerTxResponse(tx))
	}

	return c.JSON(http.StatusOK, responses)
}

// DeletePartnerTransaction handles DELETE /api/v1/partner-transactions/:id
func (h *TreasuryHandler) DeletePartnerTransaction(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.treasuryService.DeletePartnerTransaction(companyID, id); err != nil {
		if errors.Is(err, domain.ErrPartnerTxNotFound) {
			return NewNotFoundError(c, "Partner transaction not found")
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to delete partner transaction")
		return NewInternalError(c, "Failed to delete partner transaction")
	}

	return c.NoContent(http.StatusNoContent)
}

// CreateExpense handles POST /api/v1/expenses
func (h *TreasuryHandler) CreateExpense(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date := time.Now()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
	}

	expense, err := h.treasuryService.RecordExpense(companyID, req.Description, amount, date)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseAmountInvalid) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to record expense")
		return NewInternalError(c, "Failed to record expense")
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses handles GET /api/v1/expenses
func (h *TreasuryHandler) GetExpenses(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	expenses, err := h.treasuryService.GetExpenses(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to get expenses")
		return NewInternalError(c, "Failed to get expenses")
	}

	responses := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		responses = append(responses, toExpenseResponse(expense))
	}

	return c.JSON(http.StatusOK, responses)
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func (h *TreasuryHandler) DeleteExpense(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.treasuryService.DeleteExpense(companyID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Int32("expense_id", id).Msg("Failed to delete expense")
		return NewInternalError(c, "Failed to delete expense")
	}

	return c.NoContent(http.StatusNoContent)
}
