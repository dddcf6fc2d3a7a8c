package handler

import (
	"errors"
	"net/http"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CompanyHandler handles company profile HTTP requests
type CompanyHandler struct {
	companyService *service.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID         int32   `json:"id"`
	Name       string  `json:"name"`
	OwnerEmail string  `json:"ownerEmail"`
	Address    *string `json:"address,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	GSTIN      *string `json:"gstin,omitempty"`
	UPIID      *string `json:"upiId,omitempty"`
}

func toCompanyResponse(company *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:         company.ID,
		Name:       company.Name,
		OwnerEmail: company.OwnerEmail,
		Address:    company.Address,
		Phone:      company.Phone,
		GSTIN:      company.GSTIN,
		UPIID:      company.UPIID,
	}
}

// UpdateCompanyRequest represents the update company request body
type UpdateCompanyRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	GSTIN   *string `json:"gstin,omitempty"`
	UPIID   *string `json:"upiId,omitempty"`
}

// GetCompany handles GET /api/v1/company
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	company, err := h.companyService.GetCompany(companyID)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			return NewNotFoundError(c, "Company not found")
		}
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to get company")
		return NewInternalError(c, "Failed to get company")
	}

	return c.JSON(http.StatusOK, toCompanyResponse(company))
}

// UpdateCompany handles PUT /api/v1/company
func (h *CompanyHandler) UpdateCompany(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	var req UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	company, err := h.companyService.UpdateCompany(companyID, service.UpdateCompanyInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		GSTIN:   req.GSTIN,
		UPIID:   req.UPIID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		case errors.Is(err, domain.ErrNameTooLong):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		case errors.Is(err, domain.ErrCompanyNotFound):
			return NewNotFoundError(c, "Company not found")
		default:
			log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to update company")
			return NewInternalError(c, "Failed to update company")
		}
	}

	return c.JSON(http.StatusOK, toCompanyResponse(company))
}

// OrphanCountsResponse reports records not yet assigned to any company
type OrphanCountsResponse struct {
	Customers           int64 `json:"customers"`
	Loans               int64 `json:"loans"`
	Expenses            int64 `json:"expenses"`
	PartnerTransactions int64 `json:"partnerTransactions"`
	Total               int64 `json:"total"`
}

func toOrphanCountsResponse(counts domain.OrphanCounts) OrphanCountsResponse {
	return OrphanCountsResponse{
		Customers:           counts.Customers,
		Loans:               counts.Loans,
		Expenses:            counts.Expenses,
		PartnerTransactions: counts.PartnerTransactions,
		Total:               counts.Total(),
	}
}

// CountOrphans handles GET /api/v1/company/orphans
func (h *CompanyHandler) CountOrphans(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	counts, err := h.companyService.CountOrphans()
	if err != nil {
		log.Error().Err(err).Msg("Failed to count orphaned records")
		return NewInternalError(c, "Failed to count orphaned records")
	}

	return c.JSON(http.StatusOK, toOrphanCountsResponse(counts))
}

// AdoptOrphans handles POST /api/v1/company/adopt-orphans. All records with
// no company are assigned to the caller's company in one transaction.
func (h *CompanyHandler) AdoptOrphans(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	counts, err := h.companyService.AdoptOrphans(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to adopt orphaned records")
		return NewInternalError(c, "Failed to adopt orphaned records")
	}

	log.Info().
		Int32("company_id", companyID).
		Int64("adopted", counts.Total()).
		Msg("Adopted orphaned records")

	return c.JSON(http.StatusOK, toOrphanCountsResponse(counts))
}
