package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scheduledLoan(status LoanStatus, installments ...Installment) *Loan {
	return &Loan{
		ID:           10110,
		CompanyID:    1,
		CustomerID:   1,
		Amount:       decimal.NewFromInt(12000),
		InterestRate: decimal.NewFromInt(12),
		TenureMonths: int32(len(installments)),
		EMI:          decimal.NewFromInt(1066),
		Status:       status,
		Schedule:     installments,
	}
}

func TestLoanValidate(t *testing.T) {
	tests := []struct {
		name    string
		loan    Loan
		wantErr error
	}{
		{
			"valid",
			Loan{CustomerID: 1, Amount: decimal.NewFromInt(5000), InterestRate: decimal.NewFromInt(12), TenureMonths: 12},
			nil,
		},
		{
			"missing customer",
			Loan{Amount: decimal.NewFromInt(5000), InterestRate: decimal.NewFromInt(12), TenureMonths: 12},
			ErrLoanCustomerInvalid,
		},
		{
			"amount below minimum",
			Loan{CustomerID: 1, Amount: decimal.NewFromInt(999), InterestRate: decimal.NewFromInt(12), TenureMonths: 12},
			ErrLoanAmountInvalid,
		},
		{
			"negative rate",
			Loan{CustomerID: 1, Amount: decimal.NewFromInt(5000), InterestRate: decimal.NewFromInt(-1), TenureMonths: 12},
			ErrLoanRateInvalid,
		},
		{
			"zero tenure",
			Loan{CustomerID: 1, Amount: decimal.NewFromInt(5000), InterestRate: decimal.NewFromInt(12), TenureMonths: 0},
			ErrLoanTenureInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.loan.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNextPendingInstallment_PicksEarliestDueDate(t *testing.T) {
	loan := scheduledLoan(LoanStatusActive,
		Installment{EMINumber: 2, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 3, 15), Status: InstallmentStatusPending},
		Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 2, 15), Status: InstallmentStatusPending},
		Installment{EMINumber: 3, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 4, 15), Status: InstallmentStatusPaid},
	)

	next := loan.NextPendingInstallment()
	if next == nil {
		t.Fatal("Expected a pending installment")
	}
	if next.EMINumber != 1 {
		t.Errorf("Expected EMI 1, got %d", next.EMINumber)
	}
}

func TestNextPendingInstallment_NilWhenAllSettled(t *testing.T) {
	loan := scheduledLoan(LoanStatusActive,
		Installment{EMINumber: 1, DueDate: date(2026, 2, 15), Status: InstallmentStatusPaid},
		Installment{EMINumber: 2, DueDate: date(2026, 3, 15), Status: InstallmentStatusCancelled},
	)

	if loan.NextPendingInstallment() != nil {
		t.Error("Expected nil for fully settled schedule")
	}
}

func TestOutstanding_NeverNegative(t *testing.T) {
	loan := scheduledLoan(LoanStatusActive,
		Installment{EMINumber: 1, Amount: decimal.NewFromInt(2000), DueDate: date(2026, 2, 15), Status: InstallmentStatusPaid},
	)
	loan.EMI = decimal.NewFromInt(1000)
	loan.TenureMonths = 1

	if !loan.Outstanding().IsZero() {
		t.Errorf("Expected zero outstanding, got %s", loan.Outstanding().String())
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := date(2026, 8, 30)

	t.Run("pre-disbursal statuses pass through", func(t *testing.T) {
		loan := scheduledLoan(LoanStatusPending)
		if got := loan.EffectiveStatus(now); got != LoanStatusPending {
			t.Errorf("Expected Pending, got %s", got)
		}
	})

	t.Run("future due date is active", func(t *testing.T) {
		loan := scheduledLoan(LoanStatusDisbursed,
			Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 9, 15), Status: InstallmentStatusPending},
		)
		if got := loan.EffectiveStatus(now); got != LoanStatusActive {
			t.Errorf("Expected Active, got %s", got)
		}
	})

	t.Run("due today is not overdue", func(t *testing.T) {
		loan := scheduledLoan(LoanStatusActive,
			Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 8, 30), Status: InstallmentStatusPending},
		)
		if got := loan.EffectiveStatus(now); got != LoanStatusActive {
			t.Errorf("Expected Active, got %s", got)
		}
	})

	t.Run("past due date is overdue", func(t *testing.T) {
		loan := scheduledLoan(LoanStatusActive,
			Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 8, 29), Status: InstallmentStatusPending},
		)
		if got := loan.EffectiveStatus(now); got != LoanStatusOverdue {
			t.Errorf("Expected Overdue, got %s", got)
		}
	})

	t.Run("fully paid is completed", func(t *testing.T) {
		loan := scheduledLoan(LoanStatusActive,
			Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 7, 15), Status: InstallmentStatusPaid},
		)
		if got := loan.EffectiveStatus(now); got != LoanStatusCompleted {
			t.Errorf("Expected Completed, got %s", got)
		}
	})

	t.Run("received foreclosure is completed even with pending installments", func(t *testing.T) {
		loan := scheduledLoan(LoanStatusActive,
			Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 7, 15), Status: InstallmentStatusPending},
		)
		loan.Foreclosure = &Foreclosure{
			LoanID:         loan.ID,
			SettledAmount:  decimal.NewFromInt(8000),
			AmountReceived: true,
			Date:           date(2026, 8, 1),
		}
		if got := loan.EffectiveStatus(now); got != LoanStatusCompleted {
			t.Errorf("Expected Completed, got %s", got)
		}
	})

	t.Run("unreceived foreclosure does not complete the loan", func(t *testing.T) {
		loan := scheduledLoan(LoanStatusActive,
			Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 7, 15), Status: InstallmentStatusPending},
		)
		loan.Foreclosure = &Foreclosure{
			LoanID:        loan.ID,
			SettledAmount: decimal.NewFromInt(8000),
			Date:          date(2026, 8, 1),
		}
		if got := loan.EffectiveStatus(now); got != LoanStatusOverdue {
			t.Errorf("Expected Overdue, got %s", got)
		}
	})
}

func TestDeriveCustomerStatus(t *testing.T) {
	now := date(2026, 8, 30)

	overdue := scheduledLoan(LoanStatusActive,
		Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 8, 1), Status: InstallmentStatusPending},
	)
	active := scheduledLoan(LoanStatusActive,
		Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 9, 15), Status: InstallmentStatusPending},
	)
	completed := scheduledLoan(LoanStatusActive,
		Installment{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: date(2026, 7, 15), Status: InstallmentStatusPaid},
	)

	tests := []struct {
		name     string
		loans    []*Loan
		expected CustomerStatus
	}{
		{"no loans", nil, CustomerStatusPending},
		{"overdue wins", []*Loan{active, overdue, completed}, CustomerStatusOverdue},
		{"active without overdue", []*Loan{active, completed}, CustomerStatusActive},
		{"only completed", []*Loan{completed}, CustomerStatusPaidOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveCustomerStatus(tt.loans, now); got != tt.expected {
				t.Errorf("DeriveCustomerStatus = %s, want %s", got, tt.expected)
			}
		})
	}
}
