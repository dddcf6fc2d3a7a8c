package service

import (
	"errors"
	"testing"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/testutil"
)

func TestAuthenticateUserFirstLogin(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	companyRepo := testutil.NewMockCompanyRepository()
	svc := NewAuthService(userRepo, companyRepo)

	name := "Ravi Kumar"
	result, err := svc.AuthenticateUser("auth0|abc123", "ravi@example.com", &name, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsNewUser {
		t.Error("expected IsNewUser on first login")
	}
	if result.User.Email != "ravi@example.com" {
		t.Errorf("unexpected email %q", result.User.Email)
	}
	if result.Company == nil {
		t.Fatal("expected a default company")
	}
	if result.Company.Name != "Ravi Kumar" {
		t.Errorf("expected company named after the user, got %q", result.Company.Name)
	}
	if result.Company.OwnerID != result.User.ID {
		t.Error("expected company owned by the new user")
	}
}

func TestAuthenticateUserDefaultCompanyName(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	companyRepo := testutil.NewMockCompanyRepository()
	svc := NewAuthService(userRepo, companyRepo)

	result, err := svc.AuthenticateUser("auth0|abc123", "ravi@example.com", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Company.Name != "My Company" {
		t.Errorf("expected fallback company name, got %q", result.Company.Name)
	}
}

func TestAuthenticateUserReturningLogin(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	companyRepo := testutil.NewMockCompanyRepository()
	svc := NewAuthService(userRepo, companyRepo)

	first, err := svc.AuthenticateUser("auth0|abc123", "ravi@example.com", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.AuthenticateUser("auth0|abc123", "ravi@example.com", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.IsNewUser {
		t.Error("expected returning user")
	}
	if second.User.ID != first.User.ID {
		t.Error("expected the same user record")
	}
	if second.Company.ID != first.Company.ID {
		t.Error("expected the same company")
	}
}

func TestGetCompanyByAuth0IDUnknown(t *testing.T) {
	svc := NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockCompanyRepository())

	_, err := svc.GetCompanyByAuth0ID("auth0|nobody")
	if !errors.Is(err, domain.ErrCompanyNotFound) {
		t.Errorf("expected ErrCompanyNotFound, got %v", err)
	}
}
