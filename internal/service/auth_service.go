package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo    domain.UserRepository
	companyRepo domain.CompanyRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, companyRepo domain.CompanyRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Company   *domain.Company
	IsNewUser bool
}

// AuthenticateUser handles the flow after the identity provider callback.
// First login provisions the user and an initial company; the company can
// be renamed and filled in afterwards.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	company, err := s.companyRepo.GetByOwnerID(user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			company, err = s.createDefaultCompany(user)
			if err != nil {
				log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create default company")
				return nil, err
			}
			log.Info().Str("user_id", user.ID.String()).Msg("Created new user with default company")
			return &AuthResult{User: user, Company: company, IsNewUser: true}, nil
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get company")
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
	return &AuthResult{User: user, Company: company, IsNewUser: false}, nil
}

// createDefaultCompany creates the initial company for a new user
func (s *AuthService) createDefaultCompany(user *domain.User) (*domain.Company, error) {
	name := "My Company"
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	}
	return s.companyRepo.Create(&domain.Company{
		OwnerID:    user.ID,
		Name:       name,
		OwnerEmail: user.Email,
	})
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetCompanyByAuth0ID retrieves the company owned by the given Auth0 user
func (s *AuthService) GetCompanyByAuth0ID(auth0ID string) (*domain.Company, error) {
	return s.companyRepo.GetByOwnerAuth0ID(auth0ID)
}
