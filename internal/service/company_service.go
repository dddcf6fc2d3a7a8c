package service

import (
	"strings"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// CompanyService handles tenant (company) business logic
type CompanyService struct {
	companyRepo domain.CompanyRepository
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo domain.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// UpdateCompanyInput contains the editable company fields
type UpdateCompanyInput struct {
	Name    string
	Address *string
	Phone   *string
	GSTIN   *string
	UPIID   *string
}

// GetCompany retrieves a company by ID
func (s *CompanyService) GetCompany(id int32) (*domain.Company, error) {
	return s.companyRepo.GetByID(id)
}

// UpdateCompany updates the company profile
func (s *CompanyService) UpdateCompany(id int32, input UpdateCompanyInput) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCompanyNameLength {
		return nil, domain.ErrNameTooLong
	}

	company.Name = name
	company.Address = input.Address
	company.Phone = input.Phone
	company.GSTIN = input.GSTIN
	company.UPIID = input.UPIID

	return s.companyRepo.Update(company)
}

// CountOrphans reports records that lack a company foreign key
func (s *CompanyService) CountOrphans() (domain.OrphanCounts, error) {
	return s.companyRepo.CountOrphans()
}

// AdoptOrphans assigns every orphaned record to the given company. This is
// the one-time migration path for data created before companies existed.
func (s *CompanyService) AdoptOrphans(companyID int32) (domain.OrphanCounts, error) {
	if _, err := s.companyRepo.GetByID(companyID); err != nil {
		return domain.OrphanCounts{}, err
	}

	adopted, err := s.companyRepo.AdoptOrphans(companyID)
	if err != nil {
		return domain.OrphanCounts{}, err
	}
	if adopted.Total() > 0 {
		log.Info().
			Int32("company_id", companyID).
			Int64("records", adopted.Total()).
			Msg("Adopted orphaned records")
	}
	return adopted, nil
}
