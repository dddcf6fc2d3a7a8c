package websocket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockCompanyLookup is a test double for CompanyLookup
type mockCompanyLookup struct {
	companyID int32
	err       error
}

func (m *mockCompanyLookup) GetCompanyByAuth0ID(auth0ID string) (companyID int32, err error) {
	return m.companyID, m.err
}

func TestCompanyLookup_Interface(t *testing.T) {
	var _ CompanyLookup = (*mockCompanyLookup)(nil)
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	err := claims.Validate(nil)
	assert.NoError(t, err, "CustomClaims.Validate should return nil")
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockCompanyLookup{companyID: 1}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.financesuite.app", lookup)
	assert.NoError(t, err)
	assert.NotNil(t, validator)
	assert.NotNil(t, validator.validator)
	assert.Equal(t, lookup, validator.companyLookup)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	lookup := &mockCompanyLookup{companyID: 1}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.financesuite.app", lookup)
	assert.NoError(t, err)

	// A garbage token never reaches the company lookup
	companyID, err := validator.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, int32(0), companyID)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
