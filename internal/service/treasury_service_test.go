package service

import (
	"errors"
	"testing"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestRecordPartnerTransaction(t *testing.T) {
	svc := NewTreasuryService(testutil.NewMockPartnerTransactionRepository(), testutil.NewMockExpenseRepository())

	tx, err := svc.RecordPartnerTransaction(1, domain.PartnerTxInvestment, "  Anil  ", decimal.NewFromInt(50000), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.PartnerName != "Anil" {
		t.Errorf("expected trimmed partner name, got %q", tx.PartnerName)
	}
	if tx.ID == 0 {
		t.Error("expected assigned transaction ID")
	}
}

func TestRecordPartnerTransactionValidation(t *testing.T) {
	svc := NewTreasuryService(testutil.NewMockPartnerTransactionRepository(), testutil.NewMockExpenseRepository())

	_, err := svc.RecordPartnerTransaction(1, "transfer", "Anil", decimal.NewFromInt(1000), time.Now())
	if !errors.Is(err, domain.ErrPartnerTxTypeInvalid) {
		t.Errorf("expected ErrPartnerTxTypeInvalid, got %v", err)
	}

	_, err = svc.RecordPartnerTransaction(1, domain.PartnerTxWithdrawal, "Anil", decimal.Zero, time.Now())
	if !errors.Is(err, domain.ErrPartnerTxAmountInvalid) {
		t.Errorf("expected ErrPartnerTxAmountInvalid, got %v", err)
	}
}

func TestRecordExpense(t *testing.T) {
	svc := NewTreasuryService(testutil.NewMockPartnerTransactionRepository(), testutil.NewMockExpenseRepository())

	expense, err := svc.RecordExpense(1, "Office rent", decimal.NewFromInt(5000), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expense.ID == 0 {
		t.Error("expected assigned expense ID")
	}

	_, err = svc.RecordExpense(1, "Nothing", decimal.NewFromInt(-5), time.Now())
	if !errors.Is(err, domain.ErrExpenseAmountInvalid) {
		t.Errorf("expected ErrExpenseAmountInvalid, got %v", err)
	}
}

func TestDeletePartnerTransactionScoped(t *testing.T) {
	txRepo := testutil.NewMockPartnerTransactionRepository()
	svc := NewTreasuryService(txRepo, testutil.NewMockExpenseRepository())

	tx, err := svc.RecordPartnerTransaction(1, domain.PartnerTxInvestment, "Anil", decimal.NewFromInt(50000), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeletePartnerTransaction(2, tx.ID); !errors.Is(err, domain.ErrPartnerTxNotFound) {
		t.Errorf("expected ErrPartnerTxNotFound across companies, got %v", err)
	}
	if err := svc.DeletePartnerTransaction(1, tx.ID); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
