package handler

import (
	"net/http"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard summary HTTP requests
type DashboardHandler struct {
	ledgerService *service.LedgerService
	alertSink     domain.AlertSink
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(ledgerService *service.LedgerService, alertSink domain.AlertSink) *DashboardHandler {
	return &DashboardHandler{
		ledgerService: ledgerService,
		alertSink:     alertSink,
	}
}

// LedgerSummaryResponse represents the dashboard summary in API responses
type LedgerSummaryResponse struct {
	CashBalance        string `json:"cashBalance"`
	TotalInvested      string `json:"totalInvested"`
	TotalWithdrawn     string `json:"totalWithdrawn"`
	TotalExpenses      string `json:"totalExpenses"`
	DisbursedPrincipal string `json:"disbursedPrincipal"`
	DisbursedCount     int    `json:"disbursedCount"`
	NetDisbursed       string `json:"netDisbursed"`
	FeeRevenue         string `json:"feeRevenue"`
	ActivePrincipal    string `json:"activePrincipal"`
	ActiveCount        int    `json:"activeCount"`
	ActiveOutstanding  string `json:"activeOutstanding"`
	TotalCollections   string `json:"totalCollections"`
	OverdueCount       int    `json:"overdueCount"`
}

// GetSummary handles GET /api/v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	summary, err := h.ledgerService.GetSummary(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to compute ledger summary")
		return NewInternalError(c, "Failed to compute summary")
	}

	return c.JSON(http.StatusOK, LedgerSummaryResponse{
		CashBalance:        summary.CashBalance.StringFixed(2),
		TotalInvested:      summary.TotalInvested.StringFixed(2),
		TotalWithdrawn:     summary.TotalWithdrawn.StringFixed(2),
		TotalExpenses:      summary.TotalExpenses.StringFixed(2),
		DisbursedPrincipal: summary.DisbursedPrincipal.StringFixed(2),
		DisbursedCount:     summary.DisbursedCount,
		NetDisbursed:       summary.NetDisbursed.StringFixed(2),
		FeeRevenue:         summary.FeeRevenue.StringFixed(2),
		ActivePrincipal:    summary.ActivePrincipal.StringFixed(2),
		ActiveCount:        summary.ActiveCount,
		ActiveOutstanding:  summary.ActiveOutstanding.StringFixed(2),
		TotalCollections:   summary.TotalCollections.StringFixed(2),
		OverdueCount:       summary.OverdueCount,
	})
}

// AlertResponse represents a scheduled reminder in API responses
type AlertResponse struct {
	ID        int64  `json:"id"`
	LoanID    int64  `json:"loanId"`
	EMINumber int32  `json:"emiNumber"`
	Kind      string `json:"kind"`
	TriggerAt string `json:"triggerAt"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// GetAlerts handles GET /api/v1/dashboard/alerts
func (h *DashboardHandler) GetAlerts(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	alerts, err := h.alertSink.GetScheduled(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to get alerts")
		return NewInternalError(c, "Failed to get alerts")
	}

	responses := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, AlertResponse{
			ID:        alert.ID,
			LoanID:    alert.LoanID,
			EMINumber: alert.EMINumber,
			Kind:      string(alert.Kind),
			TriggerAt: alert.TriggerAt.Format("2006-01-02T15:04:05Z07:00"),
			Title:     alert.Title,
			Body:      alert.Body,
		})
	}

	return c.JSON(http.StatusOK, responses)
}
