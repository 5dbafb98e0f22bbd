package services

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/config"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/jwt"
	"expense-insight/internal/pkg/password"

	"gorm.io/gorm"
)

// Accepted values for the optional gender field
var genders = map[string]bool{
	"male":           true,
	"female":         true,
	"other":          true,
	"preferNotToSay": true,
}

// AuthService handles registration, login and bearer token verification
type AuthService struct {
	userRepo repositories.UserRepository
	jwtCfg   config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	FullName    string `json:"fullName" example:"Jane Doe"`
	Email       string `json:"email" example:"jane@example.com"`
	Password    string `json:"password" example:"longenough1"`
	Gender      string `json:"gender,omitempty" example:"female"`
	PhoneNumber string `json:"phoneNumber,omitempty" example:"0812345678"`
	Address     string `json:"address,omitempty"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"longenough1"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	AccessToken string               `json:"accessToken"`
	TokenType   string               `json:"tokenType"`
	ExpiresAt   time.Time            `json:"expiresAt"`
	User        *models.UserResponse `json:"user"`
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new active identity
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	// 1. Validate input
	input.Email = NormalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	// 2. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, persistenceError("check email", err)
	}
	if exists {
		return nil, domain.ErrConflict
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create user
	user := &models.User{
		FullName:    input.FullName,
		Email:       input.Email,
		Password:    hashedPassword,
		Gender:      input.Gender,
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Address:     strings.TrimSpace(input.Address),
		IsActive:    true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Soft-deleted rows and concurrent sign-ups still hold the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrConflict
		}
		return nil, persistenceError("create user", err)
	}

	log.Printf("✅ User registered: %s (ID: %d)", user.Email, user.ID)
	return user, nil
}

func validateRegistration(input *RegisterInput) error {
	if input.Email == "" {
		return domain.NewValidationError("email", "email is required")
	}
	if len(input.Email) > 100 {
		return domain.NewValidationError("email", "email must be at most 100 characters")
	}
	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		return domain.NewValidationError("email", "email must be a valid email address")
	}
	if !password.ValidatePassword(input.Password) {
		return domain.NewValidationError("password", "password must be between 8 and 30 characters")
	}
	return validateProfile(input.FullName, input.Gender, input.PhoneNumber, input.Address)
}

// Login authenticates a user and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, persistenceError("find user", err)
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Check if user is active
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	// 4. Generate token
	token, expiresAt, err := jwt.GenerateAccessToken(user.ID, s.jwtCfg.Secret, s.jwtCfg.TokenTTL())
	if err != nil {
		if errors.Is(err, jwt.ErrSecretMissing) {
			return nil, domain.ErrMisconfigured
		}
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(),
	}, nil
}

// Verify resolves a bearer token to an active identity
func (s *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	// 1. Check signature, algorithm and expiry
	claims, err := jwt.ValidateAccessToken(token, s.jwtCfg.Secret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrSecretMissing):
			return nil, domain.ErrMisconfigured
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		default:
			return nil, domain.ErrInvalidToken
		}
	}

	// 2. Subject must be the durable user ID
	userID, err := claims.SubjectID()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	// 3. Resolve identity
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, persistenceError("resolve identity", err)
	}

	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, persistenceError("get user", err)
	}
	return user, nil
}
