package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound           = errors.New("loan not found")
	ErrLoanAmountInvalid      = errors.New("loan amount must be at least 1000")
	ErrLoanRateInvalid        = errors.New("interest rate must not be negative")
	ErrLoanTenureInvalid      = errors.New("tenure must be at least 1 month")
	ErrLoanCustomerInvalid    = errors.New("customer is required")
	ErrLoanNotPending         = errors.New("loan is not pending")
	ErrLoanNotApproved        = errors.New("loan is not approved")
	ErrLoanNotDisbursed       = errors.New("loan has not been disbursed")
	ErrLoanAlreadyClosed      = errors.New("loan is already closed")
	ErrLoanNotOverdue         = errors.New("loan is not overdue")
	ErrInstallmentNotFound    = errors.New("installment not found")
	ErrInstallmentNotPending  = errors.New("installment is not pending")
	ErrForeclosureNotFound    = errors.New("foreclosure not found")
	ErrForeclosureAlreadySet  = errors.New("loan already has a foreclosure")
)

// MinLoanAmount is the smallest principal accepted at the API boundary
var MinLoanAmount = decimal.NewFromInt(1000)

// LoanStatus is the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "Pending"
	LoanStatusApproved  LoanStatus = "Approved"
	LoanStatusDisbursed LoanStatus = "Disbursed"
	LoanStatusActive    LoanStatus = "Active"
	LoanStatusOverdue   LoanStatus = "Overdue"
	LoanStatusCompleted LoanStatus = "Completed"
	LoanStatusRejected  LoanStatus = "Rejected"
)

// IsLive reports whether the loan participates in cash-balance and
// repayment bookkeeping (principal has left the till).
func (s LoanStatus) IsLive() bool {
	switch s {
	case LoanStatusDisbursed, LoanStatusActive, LoanStatusOverdue, LoanStatusCompleted:
		return true
	}
	return false
}

// InstallmentStatus is the state of a single scheduled repayment
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "Pending"
	InstallmentStatusPaid      InstallmentStatus = "Paid"
	InstallmentStatusCancelled InstallmentStatus = "Cancelled"
)

// Installment is one entry of a loan's repayment schedule.
// Status moves Pending -> Paid exactly once; cancellation only happens
// through foreclosure.
type Installment struct {
	ID          int64             `json:"id"`
	LoanID      int64             `json:"loanId"`
	EMINumber   int32             `json:"emiNumber"`
	Amount      decimal.Decimal   `json:"amount"`
	DueDate     time.Time         `json:"dueDate"`
	Status      InstallmentStatus `json:"status"`
	PaymentDate *time.Time        `json:"paymentDate,omitempty"`
}

// Foreclosure records an early full settlement of a loan. The settled
// amount only counts as a collection once AmountReceived is set.
type Foreclosure struct {
	LoanID         int64           `json:"loanId"`
	SettledAmount  decimal.Decimal `json:"settledAmount"`
	AmountReceived bool            `json:"amountReceived"`
	Date           time.Time       `json:"date"`
}

// Loan is a single lending agreement with its repayment schedule.
// IDs come from a shared counter (seed 10110, step 10) so they are
// recognizable sequential business identifiers, not database serials.
type Loan struct {
	ID                int64           `json:"id"`
	CompanyID         int32           `json:"companyId"`
	CustomerID        int32           `json:"customerId"`
	Amount            decimal.Decimal `json:"amount"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	TenureMonths      int32           `json:"tenureMonths"`
	ProcessingFeePct  decimal.Decimal `json:"processingFeePct"`
	ProcessingFee     decimal.Decimal `json:"processingFee"`
	EMI               decimal.Decimal `json:"emi"`
	Status            LoanStatus      `json:"status"`
	DisbursalDate     *time.Time      `json:"disbursalDate,omitempty"`
	Schedule          []Installment   `json:"schedule,omitempty"`
	Foreclosure       *Foreclosure    `json:"foreclosure,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Validate checks loan terms before persistence
func (l *Loan) Validate() error {
	if l.CustomerID <= 0 {
		return ErrLoanCustomerInvalid
	}
	if l.Amount.LessThan(MinLoanAmount) {
		return ErrLoanAmountInvalid
	}
	if l.InterestRate.IsNegative() {
		return ErrLoanRateInvalid
	}
	if l.TenureMonths < 1 {
		return ErrLoanTenureInvalid
	}
	return nil
}

// TotalPayable returns EMI x tenure, the principal plus total interest
func (l *Loan) TotalPayable() decimal.Decimal {
	return l.EMI.Mul(decimal.NewFromInt(int64(l.TenureMonths)))
}

// TotalPaid sums the amounts of all paid installments
func (l *Loan) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.Schedule {
		if inst.Status == InstallmentStatusPaid {
			total = total.Add(inst.Amount)
		}
	}
	return total
}

// Outstanding returns the remaining principal+interest, never negative
func (l *Loan) Outstanding() decimal.Decimal {
	out := l.TotalPayable().Sub(l.TotalPaid())
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// NextPendingInstallment returns the pending installment with the earliest
// due date, or nil when the loan is fully paid or has no schedule.
func (l *Loan) NextPendingInstallment() *Installment {
	var next *Installment
	for i := range l.Schedule {
		inst := &l.Schedule[i]
		if inst.Status != InstallmentStatusPending {
			continue
		}
		if next == nil || inst.DueDate.Before(next.DueDate) {
			next = inst
		}
	}
	return next
}

// FullyPaid reports whether every installment is in a terminal state
func (l *Loan) FullyPaid() bool {
	if len(l.Schedule) == 0 {
		return false
	}
	return l.NextPendingInstallment() == nil
}

// EffectiveStatus derives the loan status from its schedule against the
// clock. The stored status column is treated as a cache: once a loan is
// live, overdue/active/completed classification always comes from here.
func (l *Loan) EffectiveStatus(now time.Time) LoanStatus {
	if !l.Status.IsLive() {
		return l.Status
	}
	if l.Foreclosure != nil && l.Foreclosure.AmountReceived {
		return LoanStatusCompleted
	}
	if l.FullyPaid() {
		return LoanStatusCompleted
	}
	next := l.NextPendingInstallment()
	if next != nil && next.DueDate.Before(startOfDay(now)) {
		return LoanStatusOverdue
	}
	return LoanStatusActive
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DeriveCustomerStatus classifies a customer from their loans' effective states
func DeriveCustomerStatus(loans []*Loan, now time.Time) CustomerStatus {
	live := 0
	completed := 0
	for _, l := range loans {
		switch l.EffectiveStatus(now) {
		case LoanStatusOverdue:
			return CustomerStatusOverdue
		case LoanStatusActive, LoanStatusDisbursed:
			live++
		case LoanStatusCompleted:
			completed++
		}
	}
	if live > 0 {
		return CustomerStatusActive
	}
	if completed > 0 {
		return CustomerStatusPaidOff
	}
	return CustomerStatusPending
}

// LoanRepository defines the interface for loan persistence operations.
// Create allocates the loan ID from the shared counter and writes both in
// one transaction; two concurrent creates never receive the same ID.
type LoanRepository interface {
	Create(loan *Loan) (*Loan, error)
	GetByID(companyID int32, id int64) (*Loan, error)
	GetAllByCompany(companyID int32) ([]*Loan, error)
	GetByCustomer(companyID int32, customerID int32) ([]*Loan, error)
	UpdateStatus(companyID int32, id int64, status LoanStatus) error
	SetDisbursed(companyID int32, id int64, disbursalDate time.Time, schedule []Installment) (*Loan, error)
	MarkInstallmentPaid(companyID int32, loanID int64, emiNumber int32, paymentDate time.Time) (*Installment, error)
	CreateForeclosure(companyID int32, fc *Foreclosure) (*Foreclosure, error)
	Delete(companyID int32, id int64) error
}
