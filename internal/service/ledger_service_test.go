package service

import (
	"testing"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func ledgerTestLoan(id int64, principal, fee int64, emi int64, tenure int32, disbursed time.Time) *domain.Loan {
	loan := &domain.Loan{
		ID:            id,
		CompanyID:     1,
		CustomerID:    1,
		Amount:        decimal.NewFromInt(principal),
		InterestRate:  decimal.NewFromInt(12),
		TenureMonths:  tenure,
		ProcessingFee: decimal.NewFromInt(fee),
		EMI:           decimal.NewFromInt(emi),
		Status:        domain.LoanStatusActive,
		DisbursalDate: &disbursed,
	}
	for i := int32(1); i <= tenure; i++ {
		loan.Schedule = append(loan.Schedule, domain.Installment{
			LoanID:    id,
			EMINumber: i,
			Amount:    decimal.NewFromInt(emi),
			DueDate:   disbursed.AddDate(0, int(i), 0),
			Status:    domain.InstallmentStatusPending,
		})
	}
	return loan
}

func TestAggregateCashBalance(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	disbursed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	loan := ledgerTestLoan(10110, 12000, 240, 1066, 12, disbursed)
	loan.Schedule[0].Status = domain.InstallmentStatusPaid

	partnerTxs := []*domain.PartnerTransaction{
		{ID: 1, CompanyID: 1, Type: domain.PartnerTxInvestment, Amount: decimal.NewFromInt(100000)},
		{ID: 2, CompanyID: 1, Type: domain.PartnerTxInvestment, Amount: decimal.NewFromInt(50000)},
		{ID: 3, CompanyID: 1, Type: domain.PartnerTxWithdrawal, Amount: decimal.NewFromInt(20000)},
	}
	expenses := []*domain.Expense{
		{ID: 1, CompanyID: 1, Description: "Office rent", Amount: decimal.NewFromInt(5000)},
	}

	sum := Aggregate([]*domain.Loan{loan}, partnerTxs, expenses, now)

	if want := decimal.NewFromInt(150000); !sum.TotalInvested.Equal(want) {
		t.Errorf("TotalInvested: expected %s, got %s", want, sum.TotalInvested)
	}
	if want := decimal.NewFromInt(20000); !sum.TotalWithdrawn.Equal(want) {
		t.Errorf("TotalWithdrawn: expected %s, got %s", want, sum.TotalWithdrawn)
	}
	if want := decimal.NewFromInt(5000); !sum.TotalExpenses.Equal(want) {
		t.Errorf("TotalExpenses: expected %s, got %s", want, sum.TotalExpenses)
	}
	if want := decimal.NewFromInt(12000); !sum.DisbursedPrincipal.Equal(want) {
		t.Errorf("DisbursedPrincipal: expected %s, got %s", want, sum.DisbursedPrincipal)
	}
	if want := decimal.NewFromInt(240); !sum.FeeRevenue.Equal(want) {
		t.Errorf("FeeRevenue: expected %s, got %s", want, sum.FeeRevenue)
	}
	if want := decimal.NewFromInt(11760); !sum.NetDisbursed.Equal(want) {
		t.Errorf("NetDisbursed: expected %s, got %s", want, sum.NetDisbursed)
	}
	if want := decimal.NewFromInt(1066); !sum.TotalCollections.Equal(want) {
		t.Errorf("TotalCollections: expected %s, got %s", want, sum.TotalCollections)
	}

	// 150000 - 20000 - 5000 - 12000 + 240 + 1066
	if want := decimal.NewFromInt(114306); !sum.CashBalance.Equal(want) {
		t.Errorf("CashBalance: expected %s, got %s", want, sum.CashBalance)
	}
}

func TestAggregateSkipsNonLiveLoans(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	pending := &domain.Loan{
		ID:        10110,
		CompanyID: 1,
		Amount:    decimal.NewFromInt(50000),
		Status:    domain.LoanStatusPending,
	}
	rejected := &domain.Loan{
		ID:        10120,
		CompanyID: 1,
		Amount:    decimal.NewFromInt(50000),
		Status:    domain.LoanStatusRejected,
	}
	approved := &domain.Loan{
		ID:        10130,
		CompanyID: 1,
		Amount:    decimal.NewFromInt(50000),
		Status:    domain.LoanStatusApproved,
	}

	sum := Aggregate([]*domain.Loan{pending, rejected, approved}, nil, nil, now)

	if !sum.DisbursedPrincipal.IsZero() {
		t.Errorf("expected zero disbursed principal, got %s", sum.DisbursedPrincipal)
	}
	if sum.DisbursedCount != 0 {
		t.Errorf("expected zero disbursed count, got %d", sum.DisbursedCount)
	}
	if !sum.CashBalance.IsZero() {
		t.Errorf("expected zero cash balance, got %s", sum.CashBalance)
	}
}

func TestAggregateReceivedForeclosureCountsOnce(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	disbursed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	loan := ledgerTestLoan(10110, 12000, 0, 1066, 12, disbursed)
	loan.Schedule[0].Status = domain.InstallmentStatusPaid
	for i := 1; i < len(loan.Schedule); i++ {
		loan.Schedule[i].Status = domain.InstallmentStatusCancelled
	}
	loan.Foreclosure = &domain.Foreclosure{
		LoanID:         10110,
		SettledAmount:  decimal.NewFromInt(10000),
		AmountReceived: true,
		Date:           now,
	}

	sum := Aggregate([]*domain.Loan{loan}, nil, nil, now)

	if want := decimal.NewFromInt(11066); !sum.TotalCollections.Equal(want) {
		t.Errorf("TotalCollections: expected %s, got %s", want, sum.TotalCollections)
	}
	// Completed loan: still disbursed, no longer active
	if sum.DisbursedCount != 1 {
		t.Errorf("expected disbursed count 1, got %d", sum.DisbursedCount)
	}
	if sum.ActiveCount != 0 {
		t.Errorf("expected active count 0, got %d", sum.ActiveCount)
	}
}

func TestAggregateUnreceivedForeclosureNotCollected(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	disbursed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	loan := ledgerTestLoan(10110, 12000, 0, 1066, 12, disbursed)
	for i := range loan.Schedule {
		loan.Schedule[i].Status = domain.InstallmentStatusCancelled
	}
	loan.Foreclosure = &domain.Foreclosure{
		LoanID:        10110,
		SettledAmount: decimal.NewFromInt(10000),
		Date:          now,
	}

	sum := Aggregate([]*domain.Loan{loan}, nil, nil, now)
	if !sum.TotalCollections.IsZero() {
		t.Errorf("expected no collections for unreceived settlement, got %s", sum.TotalCollections)
	}
}

func TestAggregateOverdueAndActiveCounts(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	onTime := ledgerTestLoan(10110, 12000, 0, 1066, 12, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))
	overdue := ledgerTestLoan(10120, 24000, 0, 2132, 12, time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local))

	sum := Aggregate([]*domain.Loan{onTime, overdue}, nil, nil, now)

	if sum.ActiveCount != 2 {
		t.Errorf("expected active count 2, got %d", sum.ActiveCount)
	}
	if sum.OverdueCount != 1 {
		t.Errorf("expected overdue count 1, got %d", sum.OverdueCount)
	}
	if want := decimal.NewFromInt(36000); !sum.ActivePrincipal.Equal(want) {
		t.Errorf("ActivePrincipal: expected %s, got %s", want, sum.ActivePrincipal)
	}
	wantOutstanding := onTime.Outstanding().Add(overdue.Outstanding())
	if !sum.ActiveOutstanding.Equal(wantOutstanding) {
		t.Errorf("ActiveOutstanding: expected %s, got %s", wantOutstanding, sum.ActiveOutstanding)
	}
}

func TestAggregateOrderIndependence(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

	loans := []*domain.Loan{
		ledgerTestLoan(10110, 12000, 240, 1066, 12, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)),
		ledgerTestLoan(10120, 24000, 480, 2132, 12, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)),
	}
	txs := []*domain.PartnerTransaction{
		{Type: domain.PartnerTxInvestment, Amount: decimal.NewFromInt(100000)},
		{Type: domain.PartnerTxWithdrawal, Amount: decimal.NewFromInt(10000)},
	}
	expenses := []*domain.Expense{
		{Amount: decimal.NewFromInt(2500)},
		{Amount: decimal.NewFromInt(1500)},
	}

	forward := Aggregate(loans, txs, expenses, now)
	reversed := Aggregate(
		[]*domain.Loan{loans[1], loans[0]},
		[]*domain.PartnerTransaction{txs[1], txs[0]},
		[]*domain.Expense{expenses[1], expenses[0]},
		now,
	)

	if !forward.CashBalance.Equal(reversed.CashBalance) {
		t.Errorf("cash balance depends on input order: %s vs %s", forward.CashBalance, reversed.CashBalance)
	}
	if !forward.ActiveOutstanding.Equal(reversed.ActiveOutstanding) {
		t.Errorf("outstanding depends on input order: %s vs %s", forward.ActiveOutstanding, reversed.ActiveOutstanding)
	}
}

func TestGetSummaryScopesByCompany(t *testing.T) {
	loanRepo := testutil.NewMockLoanRepository()
	partnerTxRepo := testutil.NewMockPartnerTransactionRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	svc := NewLedgerService(loanRepo, partnerTxRepo, expenseRepo)

	if _, err := partnerTxRepo.Create(&domain.PartnerTransaction{
		CompanyID: 1,
		Type:      domain.PartnerTxInvestment,
		Amount:    decimal.NewFromInt(80000),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := partnerTxRepo.Create(&domain.PartnerTransaction{
		CompanyID: 2,
		Type:      domain.PartnerTxInvestment,
		Amount:    decimal.NewFromInt(999999),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := expenseRepo.Create(&domain.Expense{
		CompanyID: 1,
		Amount:    decimal.NewFromInt(3000),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum, err := svc.GetSummary(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(80000); !sum.TotalInvested.Equal(want) {
		t.Errorf("TotalInvested: expected %s, got %s", want, sum.TotalInvested)
	}
	if want := decimal.NewFromInt(77000); !sum.CashBalance.Equal(want) {
		t.Errorf("CashBalance: expected %s, got %s", want, sum.CashBalance)
	}
}
