package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	photoService    *service.PhotoService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *service.CustomerService, photoService *service.PhotoService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		photoService:    photoService,
	}
}

// GuarantorPayload represents a guarantor in requests and responses
type GuarantorPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerRequest represents the create/update customer request body
type CustomerRequest struct {
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     *string           `json:"email,omitempty"`
	Address   *string           `json:"address,omitempty"`
	Aadhaar   *string           `json:"aadhaar,omitempty"`
	PAN       *string           `json:"pan,omitempty"`
	Guarantor *GuarantorPayload `json:"guarantor,omitempty"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        int32             `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     *string           `json:"email,omitempty"`
	Address   *string           `json:"address,omitempty"`
	Aadhaar   *string           `json:"aadhaar,omitempty"`
	PAN       *string           `json:"pan,omitempty"`
	Guarantor *GuarantorPayload `json:"guarantor,omitempty"`
	Status    string            `json:"status"`
	PhotoURL  *string           `json:"photoUrl,omitempty"`
	CreatedAt string            `json:"createdAt"`
}

func (h *CustomerHandler) toCustomerResponse(c echo.Context, customer *domain.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Address:   customer.Address,
		Aadhaar:   customer.Aadhaar,
		PAN:       customer.PAN,
		Status:    string(customer.Status),
		CreatedAt: customer.CreatedAt.Format("2006-01-02"),
	}
	if customer.Guarantor != nil {
		resp.Guarantor = &GuarantorPayload{
			Name:    customer.Guarantor.Name,
			Phone:   customer.Guarantor.Phone,
			Address: customer.Guarantor.Address,
		}
	}
	if customer.PhotoKey != nil && h.photoService.IsEnabled() {
		url, err := h.photoService.PresignedURL(c.Request().Context(), *customer.PhotoKey)
		if err != nil {
			log.Warn().Err(err).Int32("customer_id", customer.ID).Msg("Failed to presign photo URL")
		} else {
			resp.PhotoURL = &url
		}
	}
	return resp
}

func customerInputFromRequest(req CustomerRequest) service.CustomerInput {
	input := service.CustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Aadhaar: req.Aadhaar,
		PAN:     req.PAN,
	}
	if req.Guarantor != nil {
		input.Guarantor = &domain.Guarantor{
			Name:    req.Guarantor.Name,
			Phone:   req.Guarantor.Phone,
			Address: req.Guarantor.Address,
		}
	}
	return input
}

func customerValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrCustomerNameEmpty):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrCustomerNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 200 characters or less"},
		})
	case errors.Is(err, domain.ErrCustomerPhoneEmpty):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "phone", Message: "Phone is required"},
		})
	}
	return nil
}

// CreateCustomer handles POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customer, err := h.customerService.CreateCustomer(companyID, customerInputFromRequest(req))
	if err != nil {
		if resp := customerValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to create customer")
		return NewInternalError(c, "Failed to create customer")
	}

	return c.JSON(http.StatusCreated, h.toCustomerResponse(c, customer))
}

// GetCustomers handles GET /api/v1/customers
func (h *CustomerHandler) GetCustomers(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	customers, err := h.customerService.GetCustomers(companyID)
	if err != nil {
		log.Error().Err(err).Int32("company_id", companyID).Msg("Failed to get customers")
		return NewInternalError(c, "Failed to get customers")
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, h.toCustomerResponse(c, customer))
	}

	return c.JSON(http.StatusOK, responses)
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	customer, err := h.customerService.GetCustomer(companyID, id)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return NewNotFoundError(c, "Customer not found")
		}
		log.Error().Err(err).Int32("customer_id", id).Msg("Failed to get customer")
		return NewInternalError(c, "Failed to get customer")
	}

	return c.JSON(http.StatusOK, h.toCustomerResponse(c, customer))
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	customer, err := h.customerService.UpdateCustomer(companyID, id, customerInputFromRequest(req))
	if err != nil {
		if resp := customerValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return NewNotFoundError(c, "Customer not found")
		}
		log.Error().Err(err).Int32("customer_id", id).Msg("Failed to update customer")
		return NewInternalError(c, "Failed to update customer")
	}

	return c.JSON(http.StatusOK, h.toCustomerResponse(c, customer))
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	if err := h.customerService.DeleteCustomer(companyID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerNotFound):
			return NewNotFoundError(c, "Customer not found")
		case errors.Is(err, domain.ErrCustomerHasLiveLoans):
			return NewConflictError(c, "Customer has loans that are not closed")
		default:
			log.Error().Err(err).Int32("customer_id", id).Msg("Failed to delete customer")
			return NewInternalError(c, "Failed to delete customer")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadPhotoResponse represents the photo upload response
type UploadPhotoResponse struct {
	PhotoURL string `json:"photoUrl"`
}

// UploadPhoto handles POST /api/v1/customers/:id/photo
func (h *CustomerHandler) UploadPhoto(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		return NewUnauthorizedError(c, "Company required")
	}

	if !h.photoService.IsEnabled() {
		return NewServiceUnavailableError(c, "Photo uploads are disabled (storage not configured)")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid customer ID", nil)
	}

	// Customer must exist in this company before accepting the upload
	if _, err := h.customerService.GetCustomer(companyID, id); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return NewNotFoundError(c, "Customer not found")
		}
		log.Error().Err(err).Int32("customer_id", id).Msg("Failed to get customer")
		return NewInternalError(c, "Failed to get customer")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	photoKey, err := h.photoService.ProcessAndUpload(c.Request().Context(), companyID, id, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrPhotoInvalidFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case errors.Is(err, service.ErrPhotoTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case errors.Is(err, service.ErrPhotoInvalidData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		default:
			log.Error().Err(err).Int32("customer_id", id).Msg("Failed to upload photo")
			return NewInternalError(c, "Failed to upload photo")
		}
	}

	if err := h.customerService.SetPhotoKey(companyID, id, photoKey); err != nil {
		log.Error().Err(err).Int32("customer_id", id).Msg("Failed to store photo key")
		return NewInternalError(c, "Failed to store photo")
	}

	url, err := h.photoService.PresignedURL(c.Request().Context(), photoKey)
	if err != nil {
		log.Error().Err(err).Str("photo_key", photoKey).Msg("Failed to presign photo URL")
		return NewInternalError(c, "Failed to generate photo URL")
	}

	return c.JSON(http.StatusCreated, UploadPhotoResponse{PhotoURL: url})
}

func parseInt32Param(c echo.Context, name string) (int32, error) {
	value, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(value), nil
}

func parseInt64Param(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
