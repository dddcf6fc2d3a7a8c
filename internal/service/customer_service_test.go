package service

import (
	"errors"
	"testing"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newCustomerServiceFixture() (*CustomerService, *testutil.MockCustomerRepository, *testutil.MockLoanRepository) {
	customerRepo := testutil.NewMockCustomerRepository()
	loanRepo := testutil.NewMockLoanRepository()
	return NewCustomerService(customerRepo, loanRepo), customerRepo, loanRepo
}

func TestCreateCustomer(t *testing.T) {
	svc, _, _ := newCustomerServiceFixture()

	email := "ravi@example.com"
	customer, err := svc.CreateCustomer(1, CustomerInput{
		Name:  "  Ravi Kumar  ",
		Phone: "9876543210",
		Email: &email,
		Guarantor: &domain.Guarantor{
			Name:  "Suresh",
			Phone: "9123456780",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if customer.Name != "Ravi Kumar" {
		t.Errorf("expected trimmed name, got %q", customer.Name)
	}
	if customer.Status != domain.CustomerStatusPending {
		t.Errorf("expected status Pending, got %s", customer.Status)
	}
	if customer.Guarantor == nil || customer.Guarantor.Name != "Suresh" {
		t.Errorf("expected guarantor retained, got %+v", customer.Guarantor)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _, _ := newCustomerServiceFixture()

	if _, err := svc.CreateCustomer(1, CustomerInput{Phone: "9876543210"}); !errors.Is(err, domain.ErrCustomerNameEmpty) {
		t.Errorf("expected ErrCustomerNameEmpty, got %v", err)
	}
	if _, err := svc.CreateCustomer(1, CustomerInput{Name: "Ravi"}); !errors.Is(err, domain.ErrCustomerPhoneEmpty) {
		t.Errorf("expected ErrCustomerPhoneEmpty, got %v", err)
	}
}

func TestGetCustomerDerivesStatus(t *testing.T) {
	svc, customerRepo, loanRepo := newCustomerServiceFixture()

	created, err := customerRepo.Create(&domain.Customer{
		CompanyID: 1,
		Name:      "Ravi Kumar",
		Phone:     "9876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An overdue loan drives the customer status
	overdueDue := time.Now().AddDate(0, 0, -5)
	loan := &domain.Loan{
		CompanyID:  1,
		CustomerID: created.ID,
		Amount:     decimal.NewFromInt(12000),
		EMI:        decimal.NewFromInt(1066),
		Status:     domain.LoanStatusActive,
		Schedule: []domain.Installment{
			{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: overdueDue, Status: domain.InstallmentStatusPending},
		},
	}
	if _, err := loanRepo.Create(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetCustomer(1, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.CustomerStatusOverdue {
		t.Errorf("expected status Overdue, got %s", got.Status)
	}
}

func TestUpdateCustomer(t *testing.T) {
	svc, customerRepo, _ := newCustomerServiceFixture()

	created, err := customerRepo.Create(&domain.Customer{
		CompanyID: 1,
		Name:      "Ravi Kumar",
		Phone:     "9876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateCustomer(1, created.ID, CustomerInput{
		Name:  "Ravi K",
		Phone: "9000000000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Ravi K" || updated.Phone != "9000000000" {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := svc.UpdateCustomer(1, 999, CustomerInput{Name: "X", Phone: "1"}); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Errorf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestDeleteCustomerWithLiveLoans(t *testing.T) {
	svc, customerRepo, loanRepo := newCustomerServiceFixture()

	created, err := customerRepo.Create(&domain.Customer{
		CompanyID: 1,
		Name:      "Ravi Kumar",
		Phone:     "9876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	due := time.Now().AddDate(0, 1, 0)
	loan := &domain.Loan{
		CompanyID:  1,
		CustomerID: created.ID,
		Amount:     decimal.NewFromInt(12000),
		EMI:        decimal.NewFromInt(1066),
		Status:     domain.LoanStatusActive,
		Schedule: []domain.Installment{
			{EMINumber: 1, Amount: decimal.NewFromInt(1066), DueDate: due, Status: domain.InstallmentStatusPending},
		},
	}
	if _, err := loanRepo.Create(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteCustomer(1, created.ID); !errors.Is(err, domain.ErrCustomerHasLiveLoans) {
		t.Errorf("expected ErrCustomerHasLiveLoans, got %v", err)
	}

	// Paying the schedule off makes the customer deletable
	loanRepo.Loans[loan.ID].Schedule[0].Status = domain.InstallmentStatusPaid
	if err := svc.DeleteCustomer(1, created.ID); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteCustomerCompanyIsolation(t *testing.T) {
	svc, customerRepo, _ := newCustomerServiceFixture()

	created, err := customerRepo.Create(&domain.Customer{
		CompanyID: 1,
		Name:      "Ravi Kumar",
		Phone:     "9876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteCustomer(2, created.ID); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Errorf("expected ErrCustomerNotFound across companies, got %v", err)
	}
}
