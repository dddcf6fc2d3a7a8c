package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPartnerTxNotFound      = errors.New("partner transaction not found")
	ErrPartnerTxTypeInvalid   = errors.New("partner transaction type must be investment or withdrawal")
	ErrPartnerTxAmountInvalid = errors.New("partner transaction amount must be positive")
	ErrExpenseNotFound        = errors.New("expense not found")
	ErrExpenseAmountInvalid   = errors.New("expense amount must be positive")
)

// PartnerTransactionType distinguishes capital movements by partners
type PartnerTransactionType string

const (
	PartnerTxInvestment PartnerTransactionType = "investment"
	PartnerTxWithdrawal PartnerTransactionType = "withdrawal"
)

// PartnerTransaction is a capital investment or withdrawal affecting
// the company's cash balance.
type PartnerTransaction struct {
	ID          int32                  `json:"id"`
	CompanyID   int32                  `json:"companyId"`
	Type        PartnerTransactionType `json:"type"`
	PartnerName string                 `json:"partnerName"`
	Amount      decimal.Decimal        `json:"amount"`
	Date        time.Time              `json:"date"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Validate checks partner transaction fields before persistence
func (t *PartnerTransaction) Validate() error {
	if t.Type != PartnerTxInvestment && t.Type != PartnerTxWithdrawal {
		return ErrPartnerTxTypeInvalid
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPartnerTxAmountInvalid
	}
	return nil
}

// Expense is a negative cash event for the company
type Expense struct {
	ID          int32           `json:"id"`
	CompanyID   int32           `json:"companyId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Validate checks expense fields before persistence
func (e *Expense) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrExpenseAmountInvalid
	}
	return nil
}

// PartnerTransactionRepository defines partner transaction persistence
type PartnerTransactionRepository interface {
	Create(tx *PartnerTransaction) (*PartnerTransaction, error)
	GetAllByCompany(companyID int32) ([]*PartnerTransaction, error)
	Delete(companyID int32, id int32) error
}

// ExpenseRepository defines expense persistence
type ExpenseRepository interface {
	Create(expense *Expense) (*Expense, error)
	GetAllByCompany(companyID int32) ([]*Expense, error)
	Delete(companyID int32, id int32) error
}
