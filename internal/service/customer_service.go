package service

import (
	"strings"
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// CustomerService handles customer/KYC business logic
type CustomerService struct {
	customerRepo domain.CustomerRepository
	loanRepo     domain.LoanRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo domain.CustomerRepository, loanRepo domain.LoanRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
	}
}

// CustomerInput contains the fields accepted when creating or updating a customer
type CustomerInput struct {
	Name      string
	Phone     string
	Email     *string
	Address   *string
	Aadhaar   *string
	PAN       *string
	Guarantor *domain.Guarantor
}

// CreateCustomer creates a new customer under a company
func (s *CustomerService) CreateCustomer(companyID int32, input CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		CompanyID: companyID,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Email:     input.Email,
		Address:   input.Address,
		Aadhaar:   input.Aadhaar,
		PAN:       input.PAN,
		Guarantor: input.Guarantor,
		Status:    domain.CustomerStatusPending,
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	return s.customerRepo.Create(customer)
}

// GetCustomer retrieves a customer with its status derived from loan state
func (s *CustomerService) GetCustomer(companyID int32, id int32) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachStatus(companyID, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomers retrieves all customers for a company with derived statuses
func (s *CustomerService) GetCustomers(companyID int32) ([]*domain.Customer, error) {
	customers, err := s.customerRepo.GetAllByCompany(companyID)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		if err := s.attachStatus(companyID, c); err != nil {
			return nil, err
		}
	}
	return customers, nil
}

// UpdateCustomer updates a customer's identity and KYC fields
func (s *CustomerService) UpdateCustomer(companyID int32, id int32, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(companyID, id)
	if err != nil {
		return nil, err
	}

	customer.Name = strings.TrimSpace(input.Name)
	customer.Phone = strings.TrimSpace(input.Phone)
	customer.Email = input.Email
	customer.Address = input.Address
	customer.Aadhaar = input.Aadhaar
	customer.PAN = input.PAN
	customer.Guarantor = input.Guarantor

	if err := customer.Validate(); err != nil {
		return nil, err
	}
	return s.customerRepo.Update(customer)
}

// SetPhotoKey records the storage key of an uploaded KYC photo
func (s *CustomerService) SetPhotoKey(companyID int32, id int32, photoKey string) error {
	if _, err := s.customerRepo.GetByID(companyID, id); err != nil {
		return err
	}
	return s.customerRepo.UpdatePhotoKey(companyID, id, photoKey)
}

// DeleteCustomer removes a customer. Customers with live loans cannot be
// deleted; closed loan history goes with them.
func (s *CustomerService) DeleteCustomer(companyID int32, id int32) error {
	if _, err := s.customerRepo.GetByID(companyID, id); err != nil {
		return err
	}
	loans, err := s.loanRepo.GetByCustomer(companyID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, l := range loans {
		switch l.EffectiveStatus(now) {
		case domain.LoanStatusActive, domain.LoanStatusDisbursed, domain.LoanStatusOverdue:
			return domain.ErrCustomerHasLiveLoans
		}
	}
	return s.customerRepo.Delete(companyID, id)
}

// attachStatus derives the customer status from their loans' schedules
func (s *CustomerService) attachStatus(companyID int32, customer *domain.Customer) error {
	loans, err := s.loanRepo.GetByCustomer(companyID, customer.ID)
	if err != nil {
		return err
	}
	customer.Status = domain.DeriveCustomerStatus(loans, time.Now())
	return nil
}
