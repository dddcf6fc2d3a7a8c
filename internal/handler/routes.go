package handler

import (
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *AuthHandler,
	companyHandler *CompanyHandler,
	customerHandler *CustomerHandler,
	loanHandler *LoanHandler,
	treasuryHandler *TreasuryHandler,
	dashboardHandler *DashboardHandler,
	reportHandler *ReportHandler,
) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Company profile routes
	company := api.Group("/company")
	company.GET("", companyHandler.GetCompany)
	company.PUT("", companyHandler.UpdateCompany)
	company.GET("/orphans", companyHandler.CountOrphans)
	company.POST("/adopt-orphans", companyHandler.AdoptOrphans)

	// Customer routes
	customers := api.Group("/customers")
	customers.POST("", customerHandler.CreateCustomer)
	customers.GET("", customerHandler.GetCustomers)
	customers.GET("/:id", customerHandler.GetCustomer)
	customers.PUT("/:id", customerHandler.UpdateCustomer)
	customers.DELETE("/:id", customerHandler.DeleteCustomer)
	customers.POST("/:id/photo", customerHandler.UploadPhoto)

	// Loan routes
	loans := api.Group("/loans")
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.POST("/:id/approve", loanHandler.ApproveLoan)
	loans.POST("/:id/reject", loanHandler.RejectLoan)
	loans.POST("/:id/disburse", loanHandler.DisburseLoan)
	loans.POST("/:id/pay", loanHandler.PayInstallment)
	loans.POST("/:id/foreclose", loanHandler.ForecloseLoan)
	loans.DELETE("/:id", loanHandler.DeleteLoan)

	// Partner transaction routes
	partnerTxs := api.Group("/partner-transactions")
	partnerTxs.POST("", treasuryHandler.CreatePartnerTransaction)
	partnerTxs.GET("", treasuryHandler.GetPartnerTransactions)
	partnerTxs.DELETE("/:id", treasuryHandler.DeletePartnerTransaction)

	// Expense routes
	expenses := api.Group("/expenses")
	expenses.POST("", treasuryHandler.CreateExpense)
	expenses.GET("", treasuryHandler.GetExpenses)
	expenses.DELETE("/:id", treasuryHandler.DeleteExpense)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.GetSummary)
	dashboard.GET("/alerts", dashboardHandler.GetAlerts)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/portfolio", reportHandler.GetPortfolioReport)
	reports.GET("/portfolio.pdf", reportHandler.ExportPortfolioPDF)
	reports.GET("/loans/:id/notice.pdf", reportHandler.ExportLegalNoticePDF)
}
