package service

import (
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService folds a company's loans, partner transactions and expenses
// into the cash balance and portfolio summary. The fold is summation only,
// so it is idempotent and independent of input order.
type LedgerService struct {
	loanRepo      domain.LoanRepository
	partnerTxRepo domain.PartnerTransactionRepository
	expenseRepo   domain.ExpenseRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	loanRepo domain.LoanRepository,
	partnerTxRepo domain.PartnerTransactionRepository,
	expenseRepo domain.ExpenseRepository,
) *LedgerService {
	return &LedgerService{
		loanRepo:      loanRepo,
		partnerTxRepo: partnerTxRepo,
		expenseRepo:   expenseRepo,
	}
}

// GetSummary fetches a company's records and aggregates them
func (s *LedgerService) GetSummary(companyID int32) (*domain.LedgerSummary, error) {
	loans, err := s.loanRepo.GetAllByCompany(companyID)
	if err != nil {
		return nil, err
	}
	partnerTxs, err := s.partnerTxRepo.GetAllByCompany(companyID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.GetAllByCompany(companyID)
	if err != nil {
		return nil, err
	}
	summary := Aggregate(loans, partnerTxs, expenses, time.Now())
	return &summary, nil
}

// Aggregate is the pure fold behind GetSummary.
//
// Cash balance: + investments, - withdrawals, - expenses; for each live
// loan - principal + processing fee (fee is revenue, principal is cash
// out); + every paid installment; + the settled amount of a received
// foreclosure, once.
func Aggregate(
	loans []*domain.Loan,
	partnerTxs []*domain.PartnerTransaction,
	expenses []*domain.Expense,
	now time.Time,
) domain.LedgerSummary {
	sum := domain.LedgerSummary{
		CashBalance:        decimal.Zero,
		TotalInvested:      decimal.Zero,
		TotalWithdrawn:     decimal.Zero,
		TotalExpenses:      decimal.Zero,
		DisbursedPrincipal: decimal.Zero,
		NetDisbursed:       decimal.Zero,
		FeeRevenue:         decimal.Zero,
		ActivePrincipal:    decimal.Zero,
		ActiveOutstanding:  decimal.Zero,
		TotalCollections:   decimal.Zero,
	}

	for _, tx := range partnerTxs {
		switch tx.Type {
		case domain.PartnerTxInvestment:
			sum.TotalInvested = sum.TotalInvested.Add(tx.Amount)
		case domain.PartnerTxWithdrawal:
			sum.TotalWithdrawn = sum.TotalWithdrawn.Add(tx.Amount)
		}
	}

	for _, e := range expenses {
		sum.TotalExpenses = sum.TotalExpenses.Add(e.Amount)
	}

	for _, loan := range loans {
		status := loan.EffectiveStatus(now)
		if !status.IsLive() {
			continue
		}

		sum.DisbursedPrincipal = sum.DisbursedPrincipal.Add(loan.Amount)
		sum.DisbursedCount++
		sum.FeeRevenue = sum.FeeRevenue.Add(loan.ProcessingFee)

		paid := loan.TotalPaid()
		sum.TotalCollections = sum.TotalCollections.Add(paid)

		if loan.Foreclosure != nil && loan.Foreclosure.AmountReceived {
			sum.TotalCollections = sum.TotalCollections.Add(loan.Foreclosure.SettledAmount)
		}

		switch status {
		case domain.LoanStatusActive, domain.LoanStatusDisbursed, domain.LoanStatusOverdue:
			sum.ActivePrincipal = sum.ActivePrincipal.Add(loan.Amount)
			sum.ActiveCount++
			sum.ActiveOutstanding = sum.ActiveOutstanding.Add(loan.Outstanding())
		}
		if status == domain.LoanStatusOverdue {
			sum.OverdueCount++
		}
	}

	sum.NetDisbursed = sum.DisbursedPrincipal.Sub(sum.FeeRevenue)
	sum.CashBalance = sum.TotalInvested.
		Sub(sum.TotalWithdrawn).
		Sub(sum.TotalExpenses).
		Sub(sum.DisbursedPrincipal).
		Add(sum.FeeRevenue).
		Add(sum.TotalCollections)

	return sum
}
