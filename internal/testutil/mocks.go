package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[string]*domain.User
	ByID  map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	user.ID = uuid.New()
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// MockCompanyRepository is a mock implementation of domain.CompanyRepository
type MockCompanyRepository struct {
	Companies map[int32]*domain.Company
	NextID    int32
	Orphans   domain.OrphanCounts

	// Auth0Owners maps Auth0 subject to company ID, standing in for the
	// users join the real repository performs
	Auth0Owners map[string]int32
}

// NewMockCompanyRepository creates a new MockCompanyRepository
func NewMockCompanyRepository() *MockCompanyRepository {
	return &MockCompanyRepository{
		Companies:   make(map[int32]*domain.Company),
		NextID:      1,
		Auth0Owners: make(map[string]int32),
	}
}

// GetByID retrieves a company by ID
func (m *MockCompanyRepository) GetByID(id int32) (*domain.Company, error) {
	if company, ok := m.Companies[id]; ok {
		return company, nil
	}
	return nil, domain.ErrCompanyNotFound
}

// GetByOwnerID retrieves the company owned by a user
func (m *MockCompanyRepository) GetByOwnerID(ownerID uuid.UUID) (*domain.Company, error) {
	for _, company := range m.Companies {
		if company.OwnerID == ownerID {
			return company, nil
		}
	}
	return nil, domain.ErrCompanyNotFound
}

// GetByOwnerAuth0ID retrieves the company by owner Auth0 ID
func (m *MockCompanyRepository) GetByOwnerAuth0ID(auth0ID string) (*domain.Company, error) {
	if id, ok := m.Auth0Owners[auth0ID]; ok {
		if company, exists := m.Companies[id]; exists {
			return company, nil
		}
	}
	return nil, domain.ErrCompanyNotFound
}

// GetAll retrieves every company ordered by ID
func (m *MockCompanyRepository) GetAll() ([]*domain.Company, error) {
	companies := make([]*domain.Company, 0, len(m.Companies))
	for _, company := range m.Companies {
		companies = append(companies, company)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	return companies, nil
}

// Create creates a new company
func (m *MockCompanyRepository) Create(company *domain.Company) (*domain.Company, error) {
	company.ID = m.NextID
	m.NextID++
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()
	m.Companies[company.ID] = company
	return company, nil
}

// Update updates an existing company
func (m *MockCompanyRepository) Update(company *domain.Company) (*domain.Company, error) {
	if _, ok := m.Companies[company.ID]; !ok {
		return nil, domain.ErrCompanyNotFound
	}
	company.UpdatedAt = time.Now()
	m.Companies[company.ID] = company
	return company, nil
}

// CountOrphans reports the configured orphan counts
func (m *MockCompanyRepository) CountOrphans() (domain.OrphanCounts, error) {
	return m.Orphans, nil
}

// AdoptOrphans returns the configured orphan counts and resets them
func (m *MockCompanyRepository) AdoptOrphans(companyID int32) (domain.OrphanCounts, error) {
	adopted := m.Orphans
	m.Orphans = domain.OrphanCounts{}
	return adopted, nil
}

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	Customers map[int32]*domain.Customer
	NextID    int32
}

// NewMockCustomerRepository creates a new MockCustomerRepository
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		Customers: make(map[int32]*domain.Customer),
		NextID:    1,
	}
}

// Create creates a new customer
func (m *MockCustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	customer.ID = m.NextID
	m.NextID++
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	m.Customers[customer.ID] = customer
	return customer, nil
}

// GetByID retrieves a customer scoped to a company
func (m *MockCustomerRepository) GetByID(companyID int32, id int32) (*domain.Customer, error) {
	customer, ok := m.Customers[id]
	if !ok || customer.CompanyID != companyID {
		return nil, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// GetAllByCompany retrieves all customers of a company
func (m *MockCustomerRepository) GetAllByCompany(companyID int32) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	for _, customer := range m.Customers {
		if customer.CompanyID == companyID {
			customers = append(customers, customer)
		}
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

// Update updates an existing customer
func (m *MockCustomerRepository) Update(customer *domain.Customer) (*domain.Customer, error) {
	existing, ok := m.Customers[customer.ID]
	if !ok || existing.CompanyID != customer.CompanyID {
		return nil, domain.ErrCustomerNotFound
	}
	customer.UpdatedAt = time.Now()
	m.Customers[customer.ID] = customer
	return customer, nil
}

// UpdatePhotoKey stores a customer's photo key
func (m *MockCustomerRepository) UpdatePhotoKey(companyID int32, id int32, photoKey string) error {
	customer, ok := m.Customers[id]
	if !ok || customer.CompanyID != companyID {
		return domain.ErrCustomerNotFound
	}
	customer.PhotoKey = &photoKey
	return nil
}

// Delete removes a customer
func (m *MockCustomerRepository) Delete(companyID int32, id int32) error {
	customer, ok := m.Customers[id]
	if !ok || customer.CompanyID != companyID {
		return domain.ErrCustomerNotFound
	}
	delete(m.Customers, id)
	return nil
}

// MockLoanRepository is a mock implementation of domain.LoanRepository.
// IDs follow the counter convention: first loan 10110, step 10.
type MockLoanRepository struct {
	Loans  map[int64]*domain.Loan
	LastID int64
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Loans:  make(map[int64]*domain.Loan),
		LastID: 10100,
	}
}

// Create allocates the next loan ID and stores the loan
func (m *MockLoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	m.LastID += 10
	loan.ID = m.LastID
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = time.Now()
	m.Loans[loan.ID] = loan
	return loan, nil
}

// GetByID retrieves a loan scoped to a company
func (m *MockLoanRepository) GetByID(companyID int32, id int64) (*domain.Loan, error) {
	loan, ok := m.Loans[id]
	if !ok || loan.CompanyID != companyID {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}

// GetAllByCompany retrieves all loans of a company
func (m *MockLoanRepository) GetAllByCompany(companyID int32) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	for _, loan := range m.Loans {
		if loan.CompanyID == companyID {
			loans = append(loans, loan)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

// GetByCustomer retrieves all loans of one customer
func (m *MockLoanRepository) GetByCustomer(companyID int32, customerID int32) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	for _, loan := range m.Loans {
		if loan.CompanyID == companyID && loan.CustomerID == customerID {
			loans = append(loans, loan)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

// UpdateStatus updates a loan's stored status
func (m *MockLoanRepository) UpdateStatus(companyID int32, id int64, status domain.LoanStatus) error {
	loan, ok := m.Loans[id]
	if !ok || loan.CompanyID != companyID {
		return domain.ErrLoanNotFound
	}
	loan.Status = status
	loan.UpdatedAt = time.Now()
	return nil
}

// SetDisbursed marks a loan disbursed and installs its schedule
func (m *MockLoanRepository) SetDisbursed(companyID int32, id int64, disbursalDate time.Time, schedule []domain.Installment) (*domain.Loan, error) {
	loan, ok := m.Loans[id]
	if !ok || loan.CompanyID != companyID {
		return nil, domain.ErrLoanNotFound
	}
	loan.Status = domain.LoanStatusDisbursed
	loan.DisbursalDate = &disbursalDate
	loan.Schedule = make([]domain.Installment, len(schedule))
	copy(loan.Schedule, schedule)
	for i := range loan.Schedule {
		loan.Schedule[i].LoanID = id
		loan.Schedule[i].Status = domain.InstallmentStatusPending
	}
	loan.UpdatedAt = time.Now()
	return loan, nil
}

// MarkInstallmentPaid moves one installment from Pending to Paid
func (m *MockLoanRepository) MarkInstallmentPaid(companyID int32, loanID int64, emiNumber int32, paymentDate time.Time) (*domain.Installment, error) {
	loan, ok := m.Loans[loanID]
	if !ok || loan.CompanyID != companyID {
		return nil, domain.ErrLoanNotFound
	}
	for i := range loan.Schedule {
		inst := &loan.Schedule[i]
		if inst.EMINumber != emiNumber {
			continue
		}
		if inst.Status != domain.InstallmentStatusPending {
			return nil, domain.ErrInstallmentNotPending
		}
		inst.Status = domain.InstallmentStatusPaid
		inst.PaymentDate = &paymentDate
		return inst, nil
	}
	return nil, domain.ErrInstallmentNotFound
}

// CreateForeclosure records a foreclosure and cancels pending installments
func (m *MockLoanRepository) CreateForeclosure(companyID int32, fc *domain.Foreclosure) (*domain.Foreclosure, error) {
	loan, ok := m.Loans[fc.LoanID]
	if !ok || loan.CompanyID != companyID {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Foreclosure != nil {
		return nil, domain.ErrForeclosureAlreadySet
	}
	loan.Foreclosure = fc
	for i := range loan.Schedule {
		if loan.Schedule[i].Status == domain.InstallmentStatusPending {
			loan.Schedule[i].Status = domain.InstallmentStatusCancelled
		}
	}
	if fc.AmountReceived {
		loan.Status = domain.LoanStatusCompleted
	}
	return fc, nil
}

// Delete removes a loan
func (m *MockLoanRepository) Delete(companyID int32, id int64) error {
	loan, ok := m.Loans[id]
	if !ok || loan.CompanyID != companyID {
		return domain.ErrLoanNotFound
	}
	delete(m.Loans, id)
	return nil
}

// MockPartnerTransactionRepository is a mock implementation of
// domain.PartnerTransactionRepository.
type MockPartnerTransactionRepository struct {
	Transactions map[int32]*domain.PartnerTransaction
	NextID       int32
}

// NewMockPartnerTransactionRepository creates a new MockPartnerTransactionRepository
func NewMockPartnerTransactionRepository() *MockPartnerTransactionRepository {
	return &MockPartnerTransactionRepository{
		Transactions: make(map[int32]*domain.PartnerTransaction),
		NextID:       1,
	}
}

// Create records a partner transaction
func (m *MockPartnerTransactionRepository) Create(tx *domain.PartnerTransaction) (*domain.PartnerTransaction, error) {
	tx.ID = m.NextID
	m.NextID++
	tx.CreatedAt = time.Now()
	m.Transactions[tx.ID] = tx
	return tx, nil
}

// GetAllByCompany retrieves all partner transactions of a company
func (m *MockPartnerTransactionRepository) GetAllByCompany(companyID int32) ([]*domain.PartnerTransaction, error) {
	var txs []*domain.PartnerTransaction
	for _, tx := range m.Transactions {
		if tx.CompanyID == companyID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs, nil
}

// Delete removes a partner transaction
func (m *MockPartnerTransactionRepository) Delete(companyID int32, id int32) error {
	tx, ok := m.Transactions[id]
	if !ok || tx.CompanyID != companyID {
		return domain.ErrPartnerTxNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses map[int32]*domain.Expense
	NextID   int32
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		NextID:   1,
	}
}

// Create records an expense
func (m *MockExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	expense.ID = m.NextID
	m.NextID++
	expense.CreatedAt = time.Now()
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// GetAllByCompany retrieves all expenses of a company
func (m *MockExpenseRepository) GetAllByCompany(companyID int32) ([]*domain.Expense, error) {
	var expenses []*domain.Expense
	for _, expense := range m.Expenses {
		if expense.CompanyID == companyID {
			expenses = append(expenses, expense)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].ID < expenses[j].ID })
	return expenses, nil
}

// Delete removes an expense
func (m *MockExpenseRepository) Delete(companyID int32, id int32) error {
	expense, ok := m.Expenses[id]
	if !ok || expense.CompanyID != companyID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// MockAlertSink is a mock implementation of domain.AlertSink. Set Denied to
// simulate the delivery channel refusing permission. Safe for concurrent
// use so worker tests can poll it.
type MockAlertSink struct {
	mu      sync.Mutex
	Batches map[int32][]*domain.Alert
	Denied  bool
	Calls   int
}

// NewMockAlertSink creates a new MockAlertSink
func NewMockAlertSink() *MockAlertSink {
	return &MockAlertSink{
		Batches: make(map[int32][]*domain.Alert),
	}
}

// ReplaceBatch replaces the company's scheduled alerts
func (m *MockAlertSink) ReplaceBatch(companyID int32, alerts []*domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Denied {
		return domain.ErrAlertsDenied
	}
	m.Batches[companyID] = alerts
	return nil
}

// GetScheduled returns the last batch installed for the company
func (m *MockAlertSink) GetScheduled(companyID int32) ([]*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied {
		return nil, domain.ErrAlertsDenied
	}
	return m.Batches[companyID], nil
}

// CallCount returns how many times ReplaceBatch was invoked
func (m *MockAlertSink) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// Batch returns the last batch installed for a company
func (m *MockAlertSink) Batch(companyID int32) []*domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Batches[companyID]
}
