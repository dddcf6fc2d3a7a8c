package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary: every customer, loan, expense and partner
// transaction belongs to exactly one company.
type Company struct {
	ID         int32     `json:"id"`
	OwnerID    uuid.UUID `json:"ownerId"`
	Name       string    `json:"name"`
	OwnerEmail string    `json:"ownerEmail"`
	Address    *string   `json:"address,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	GSTIN      *string   `json:"gstin,omitempty"`
	UPIID      *string   `json:"upiId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks company fields before persistence
func (c *Company) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if len(c.Name) > MaxCompanyNameLength {
		return ErrNameTooLong
	}
	return nil
}

// OrphanCounts reports records lacking a company foreign key, per collection.
type OrphanCounts struct {
	Customers           int64 `json:"customers"`
	Loans               int64 `json:"loans"`
	Expenses            int64 `json:"expenses"`
	PartnerTransactions int64 `json:"partnerTransactions"`
}

// Total returns the number of orphaned records across all collections
func (o OrphanCounts) Total() int64 {
	return o.Customers + o.Loans + o.Expenses + o.PartnerTransactions
}

// CompanyRepository defines the interface for company persistence operations
type CompanyRepository interface {
	GetByID(id int32) (*Company, error)
	GetByOwnerID(ownerID uuid.UUID) (*Company, error)
	GetByOwnerAuth0ID(auth0ID string) (*Company, error)
	GetAll() ([]*Company, error)
	Create(company *Company) (*Company, error)
	Update(company *Company) (*Company, error)
	CountOrphans() (OrphanCounts, error)
	AdoptOrphans(companyID int32) (OrphanCounts, error)
}
