package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles report and PDF export HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetPortfolioReport handles GET /api/v1/reports/portfolio
func (h *ReportHandler) GetPortfolioReport(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	report, err := h.reportService.GetPortfolioReport(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to build portfolio report")
		return NewInternalError(c, "Failed to build report")
	}

	return c.JSON(http.StatusOK, report)
}

// ExportPortfolioPDF handles GET /api/v1/reports/portfolio.pdf
func (h *ReportHandler) ExportPortfolioPDF(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	data, err := h.reportService.ExportPortfolioPDF(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to export portfolio PDF")
		return NewInternalError(c, "Failed to export report")
	}

	filename := fmt.Sprintf("portfolio-%s.pdf", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// ExportLegalNoticePDF handles GET /api/v1/reports/loans/:id/notice.pdf.
// Only overdue loans qualify for a demand notice.
func (h *ReportHandler) ExportLegalNoticePDF(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	loanID, err := parseInt64Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	data, err := h.reportService.ExportLegalNoticePDF(companyID, loanID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return NewNotFoundError(c, "Customer not found")
		case errors.Is(err, domain.ErrLoanNotOverdue):
			return NewConflictError(c, "Loan is not overdue")
		default:
			log.Error().Err(err).Int64("loan_id", loanID).Msg("Failed to export legal notice")
			return NewInternalError(c, "Failed to export notice")
		}
	}

	filename := fmt.Sprintf("notice-loan-%d.pdf", loanID)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
