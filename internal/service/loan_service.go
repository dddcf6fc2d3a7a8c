package service

import (
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/finance"
	"github.com/jls/financesuite/finance-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LoanService handles the loan lifecycle: origination, approval, disbursal,
// collections and foreclosure.
type LoanService struct {
	loanRepo       domain.LoanRepository
	customerRepo   domain.CustomerRepository
	eventPublisher websocket.EventPublisher
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, customerRepo domain.CustomerRepository) *LoanService {
	return &LoanService{
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
	}
}

// SetEventPublisher sets the publisher for real-time updates
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *LoanService) publishEvent(companyID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(companyID, event)
	}
}

// CreateLoanInput contains input for originating a loan
type CreateLoanInput struct {
	CustomerID       int32
	Amount           decimal.Decimal
	InterestRate     decimal.Decimal
	TenureMonths     int32
	ProcessingFeePct decimal.Decimal
}

// CreateLoan originates a new loan in Pending state. The loan ID is
// allocated from the shared counter inside the repository's transaction,
// and the quoted EMI and processing fee are fixed at origination.
func (s *LoanService) CreateLoan(companyID int32, input CreateLoanInput) (*domain.Loan, error) {
	if _, err := s.customerRepo.GetByID(companyID, input.CustomerID); err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		CompanyID:        companyID,
		CustomerID:       input.CustomerID,
		Amount:           input.Amount,
		InterestRate:     input.InterestRate,
		TenureMonths:     input.TenureMonths,
		ProcessingFeePct: input.ProcessingFeePct,
		Status:           domain.LoanStatusPending,
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}

	loan.EMI = finance.CalculateEMI(input.Amount, input.InterestRate, input.TenureMonths)
	loan.ProcessingFee = finance.ProcessingFee(input.Amount, input.ProcessingFeePct)

	created, err := s.loanRepo.Create(loan)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("loan_id", created.ID).
		Int32("company_id", companyID).
		Str("amount", created.Amount.String()).
		Msg("Loan created")

	s.publishEvent(companyID, websocket.LoanCreated(created))
	return created, nil
}

// ApproveLoan moves a pending loan to Approved
func (s *LoanService) ApproveLoan(companyID int32, id int64) (*domain.Loan, error) {
	return s.transition(companyID, id, domain.LoanStatusPending, domain.LoanStatusApproved)
}

// RejectLoan moves a pending loan to Rejected
func (s *LoanService) RejectLoan(companyID int32, id int64) (*domain.Loan, error) {
	return s.transition(companyID, id, domain.LoanStatusPending, domain.LoanStatusRejected)
}

func (s *LoanService) transition(companyID int32, id int64, from, to domain.LoanStatus) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(companyID, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != from {
		return nil, domain.ErrLoanNotPending
	}
	if err := s.loanRepo.UpdateStatus(companyID, id, to); err != nil {
		return nil, err
	}
	loan.Status = to
	s.publishEvent(companyID, websocket.LoanUpdated(loan))
	return loan, nil
}

// DisburseLoan pays out an approved loan: sets the disbursal date and
// generates the repayment schedule in one write. The schedule starts one
// month after disbursal.
func (s *LoanService) DisburseLoan(companyID int32, id int64, disbursalDate time.Time) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(companyID, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusApproved {
		return nil, domain.ErrLoanNotApproved
	}

	schedule := finance.GenerateSchedule(loan.Amount, loan.InterestRate, loan.TenureMonths, disbursalDate)
	disbursed, err := s.loanRepo.SetDisbursed(companyID, id, disbursalDate, schedule)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("loan_id", id).
		Int32("company_id", companyID).
		Time("disbursal_date", disbursalDate).
		Msg("Loan disbursed")

	s.publishEvent(companyID, websocket.LoanDisbursed(disbursed))
	s.publishEvent(companyID, websocket.DashboardRefreshed())
	return disbursed, nil
}

// GetLoan retrieves a loan with its status recomputed from the schedule.
// The stored status is a cache; classification always comes from
// EffectiveStatus and the cache is refreshed when it has drifted.
func (s *LoanService) GetLoan(companyID int32, id int64) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(companyID, id)
	if err != nil {
		return nil, err
	}
	s.refreshStatus(loan)
	return loan, nil
}

// GetLoans retrieves all loans for a company with recomputed statuses
func (s *LoanService) GetLoans(companyID int32) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.GetAllByCompany(companyID)
	if err != nil {
		return nil, err
	}
	for _, loan := range loans {
		s.refreshStatus(loan)
	}
	return loans, nil
}

// GetLoansByCustomer retrieves a customer's loans with recomputed statuses
func (s *LoanService) GetLoansByCustomer(companyID int32, customerID int32) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.GetByCustomer(companyID, customerID)
	if err != nil {
		return nil, err
	}
	for _, loan := range loans {
		s.refreshStatus(loan)
	}
	return loans, nil
}

// refreshStatus recomputes the loan status and writes it back when the
// stored value has gone stale. A write failure only loses the cache
// refresh, so it is logged and swallowed.
func (s *LoanService) refreshStatus(loan *domain.Loan) {
	effective := loan.EffectiveStatus(time.Now())
	if effective == loan.Status {
		return
	}
	if err := s.loanRepo.UpdateStatus(loan.CompanyID, loan.ID, effective); err != nil {
		log.Warn().
			Err(err).
			Int64("loan_id", loan.ID).
			Str("status", string(effective)).
			Msg("Failed to refresh cached loan status")
	}
	loan.Status = effective
}

// PayInstallment records a collection against a loan's installment,
// flipping it Pending -> Paid. Paying the last pending installment
// completes the loan.
func (s *LoanService) PayInstallment(companyID int32, loanID int64, emiNumber int32, paymentDate time.Time) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(companyID, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.IsLive() {
		return nil, domain.ErrLoanNotDisbursed
	}

	installment, err := s.loanRepo.MarkInstallmentPaid(companyID, loanID, emiNumber, paymentDate)
	if err != nil {
		return nil, err
	}

	// Re-read so the completion check sees the flipped installment
	loan, err = s.loanRepo.GetByID(companyID, loanID)
	if err != nil {
		return nil, err
	}
	s.refreshStatus(loan)

	log.Info().
		Int64("loan_id", loanID).
		Int32("emi_number", emiNumber).
		Str("amount", installment.Amount.String()).
		Msg("Installment collected")

	s.publishEvent(companyID, websocket.InstallmentPaid(installment))
	s.publishEvent(companyID, websocket.DashboardRefreshed())
	return loan, nil
}

// ForecloseLoan settles a loan early for the given amount. The settled
// amount counts as a collection once amountReceived is set; remaining
// pending installments are cancelled by the repository in the same
// transaction.
func (s *LoanService) ForecloseLoan(companyID int32, loanID int64, settledAmount decimal.Decimal, amountReceived bool) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(companyID, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.IsLive() {
		return nil, domain.ErrLoanNotDisbursed
	}
	if loan.Foreclosure != nil {
		return nil, domain.ErrForeclosureAlreadySet
	}
	if settledAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	fc := &domain.Foreclosure{
		LoanID:         loanID,
		SettledAmount:  settledAmount,
		AmountReceived: amountReceived,
		Date:           time.Now(),
	}
	if _, err := s.loanRepo.CreateForeclosure(companyID, fc); err != nil {
		return nil, err
	}

	loan, err = s.loanRepo.GetByID(companyID, loanID)
	if err != nil {
		return nil, err
	}
	s.refreshStatus(loan)

	log.Info().
		Int64("loan_id", loanID).
		Str("settled_amount", settledAmount.String()).
		Bool("amount_received", amountReceived).
		Msg("Loan foreclosed")

	s.publishEvent(companyID, websocket.LoanClosed(loan))
	s.publishEvent(companyID, websocket.DashboardRefreshed())
	return loan, nil
}

// DeleteLoan removes a loan and its schedule
func (s *LoanService) DeleteLoan(companyID int32, id int64) error {
	if _, err := s.loanRepo.GetByID(companyID, id); err != nil {
		return err
	}
	if err := s.loanRepo.Delete(companyID, id); err != nil {
		return err
	}
	s.publishEvent(companyID, websocket.LoanDeleted(map[string]int64{"id": id}))
	s.publishEvent(companyID, websocket.DashboardRefreshed())
	return nil
}
