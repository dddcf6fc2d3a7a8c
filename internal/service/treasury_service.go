package service

import (
	"strings"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// TreasuryService handles partner capital movements and expenses, the two
// non-loan cash flows feeding the ledger.
type TreasuryService struct {
	partnerTxRepo  domain.PartnerTransactionRepository
	expenseRepo    domain.ExpenseRepository
	eventPublisher websocket.EventPublisher
}

// NewTreasuryService creates a new TreasuryService
func NewTreasuryService(partnerTxRepo domain.PartnerTransactionRepository, expenseRepo domain.ExpenseRepository) *TreasuryService {
	return &TreasuryService{
		partnerTxRepo: partnerTxRepo,
		expenseRepo:   expenseRepo,
	}
}

// SetEventPublisher sets the publisher for real-time updates
func (s *TreasuryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TreasuryService) publishRefresh(companyID int32) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(companyID, websocket.DashboardRefreshed())
	}
}

// RecordPartnerTransaction records an investment or withdrawal
func (s *TreasuryService) RecordPartnerTransaction(companyID int32, txType domain.PartnerTransactionType, partnerName string, amount decimal.Decimal, date time.Time) (*domain.PartnerTransaction, error) {
	tx := &domain.PartnerTransaction{
		CompanyID:   companyID,
		Type:        txType,
		PartnerName: strings.TrimSpace(partnerName),
		Amount:      amount,
		Date:        date,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	created, err := s.partnerTxRepo.Create(tx)
	if err != nil {
		return nil, err
	}
	s.publishRefresh(companyID)
	return created, nil
}

// GetPartnerTransactions lists a company's partner transactions
func (s *TreasuryService) GetPartnerTransactions(companyID int32) ([]*domain.PartnerTransaction, error) {
	return s.partnerTxRepo.GetAllByCompany(companyID)
}

// DeletePartnerTransaction removes a partner transaction
func (s *TreasuryService) DeletePartnerTransaction(companyID int32, id int32) error {
	if err := s.partnerTxRepo.Delete(companyID, id); err != nil {
		return err
	}
	s.publishRefresh(companyID)
	return nil
}

// RecordExpense records a company expense
func (s *TreasuryService) RecordExpense(companyID int32, description string, amount decimal.Decimal, date time.Time) (*domain.Expense, error) {
	expense := &domain.Expense{
		CompanyID:   companyID,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Date:        date,
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	created, err := s.expenseRepo.Create(expense)
	if err != nil {
		return nil, err
	}
	s.publishRefresh(companyID)
	return created, nil
}

// GetExpenses lists a company's expenses
func (s *TreasuryService) GetExpenses(companyID int32) ([]*domain.Expense, error) {
	return s.expenseRepo.GetAllByCompany(companyID)
}

// DeleteExpense removes an expense
func (s *TreasuryService) DeleteExpense(companyID int32, id int32) error {
	if err := s.expenseRepo.Delete(companyID, id); err != nil {
		return err
	}
	s.publishRefresh(companyID)
	return nil
}
