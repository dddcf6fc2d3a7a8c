package domain

import "github.com/shopspring/decimal"

// LedgerSummary is the cash-balance and portfolio aggregation for one
// company, computed as a pure fold over already-fetched snapshots.
// Summation only, so the result is independent of input order.
type LedgerSummary struct {
	CashBalance        decimal.Decimal `json:"cashBalance"`
	TotalInvested      decimal.Decimal `json:"totalInvested"`
	TotalWithdrawn     decimal.Decimal `json:"totalWithdrawn"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	DisbursedPrincipal decimal.Decimal `json:"disbursedPrincipal"`
	DisbursedCount     int             `json:"disbursedCount"`
	NetDisbursed       decimal.Decimal `json:"netDisbursed"`
	FeeRevenue         decimal.Decimal `json:"feeRevenue"`
	ActivePrincipal    decimal.Decimal `json:"activePrincipal"`
	ActiveCount        int             `json:"activeCount"`
	ActiveOutstanding  decimal.Decimal `json:"activeOutstanding"`
	TotalCollections   decimal.Decimal `json:"totalCollections"`
	OverdueCount       int             `json:"overdueCount"`
}

// PortfolioRow is one loan's line in the portfolio report, ordered by
// disbursal date for presentation.
type PortfolioRow struct {
	LoanID        int64           `json:"loanId"`
	CustomerName  string          `json:"customerName"`
	Principal     decimal.Decimal `json:"principal"`
	EMI           decimal.Decimal `json:"emi"`
	TenureMonths  int32           `json:"tenureMonths"`
	PaidCount     int32           `json:"paidCount"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Status        LoanStatus      `json:"status"`
	DisbursalDate string          `json:"disbursalDate"`
}
