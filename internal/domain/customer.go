package domain

import (
	"errors"
	"time"
)

var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrCustomerNameEmpty    = errors.New("customer name is required")
	ErrCustomerNameTooLong  = errors.New("customer name must be 200 characters or less")
	ErrCustomerPhoneEmpty   = errors.New("customer phone is required")
	ErrCustomerHasLiveLoans = errors.New("customer has loans that are not closed")
)

// CustomerStatus is derived from the state of the customer's loans,
// never stored as a source of truth.
type CustomerStatus string

const (
	CustomerStatusPending CustomerStatus = "Pending"
	CustomerStatusActive  CustomerStatus = "Active"
	CustomerStatusOverdue CustomerStatus = "Overdue"
	CustomerStatusPaidOff CustomerStatus = "Paid Off"
)

// Guarantor is the co-signer recorded with a customer's KYC
type Guarantor struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Customer holds the identity and KYC record for a borrower
type Customer struct {
	ID        int32          `json:"id"`
	CompanyID int32          `json:"companyId"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone"`
	Email     *string        `json:"email,omitempty"`
	Address   *string        `json:"address,omitempty"`
	Aadhaar   *string        `json:"aadhaar,omitempty"`
	PAN       *string        `json:"pan,omitempty"`
	Guarantor *Guarantor     `json:"guarantor,omitempty"`
	PhotoKey  *string        `json:"photoKey,omitempty"`
	Status    CustomerStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Validate checks customer fields before persistence
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrCustomerNameEmpty
	}
	if len(c.Name) > MaxCustomerNameLength {
		return ErrCustomerNameTooLong
	}
	if c.Phone == "" {
		return ErrCustomerPhoneEmpty
	}
	return nil
}

// CustomerRepository defines the interface for customer persistence operations
type CustomerRepository interface {
	Create(customer *Customer) (*Customer, error)
	GetByID(companyID int32, id int32) (*Customer, error)
	GetAllByCompany(companyID int32) ([]*Customer, error)
	Update(customer *Customer) (*Customer, error)
	UpdatePhotoKey(companyID int32, id int32, photoKey string) error
	Delete(companyID int32, id int32) error
}
