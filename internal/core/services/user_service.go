package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/password"

	"gorm.io/gorm"
)

// ErrCurrentPasswordWrong is returned when a password change does not
// prove knowledge of the current password
var ErrCurrentPasswordWrong = errors.New("current password is incorrect")

// UserService handles self-service profile management
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput represents update profile input (for self).
// Nil fields keep their stored value.
type UpdateProfileInput struct {
	FullName    *string `json:"fullName"`
	Gender      *string `json:"gender"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Address != nil {
		user.Address = strings.TrimSpace(*input.Address)
	}

	if err := validateProfile(user.FullName, user.Gender, user.PhoneNumber, user.Address); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, persistenceError("update profile", err)
	}

	return user, nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	// Verify current password
	if !password.Verify(input.CurrentPassword, user.Password) {
		return ErrCurrentPasswordWrong
	}

	// Validate new password
	if !password.ValidatePassword(input.NewPassword) {
		return domain.NewValidationError("newPassword", "password must be between 8 and 30 characters")
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return persistenceError("change password", err)
	}

	log.Printf("✅ Password changed for user ID: %d", user.ID)
	return nil
}

func (s *UserService) findUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, persistenceError("get user", err)
	}
	return user, nil
}

// validateProfile checks the optional profile fields shared by
// registration and profile updates
func validateProfile(fullName, gender, phoneNumber, address string) error {
	if len(fullName) > 100 {
		return domain.NewValidationError("fullName", "fullName must be at most 100 characters")
	}
	if gender != "" && !genders[gender] {
		return domain.NewValidationError("gender", "gender must be one of: male, female, other, preferNotToSay")
	}
	if phone := strings.TrimSpace(phoneNumber); phone != "" && (len(phone) < 10 || len(phone) > 20) {
		return domain.NewValidationError("phoneNumber", "phoneNumber must be between 10 and 20 characters")
	}
	if len(strings.TrimSpace(address)) > 255 {
		return domain.NewValidationError("address", "address must be at most 255 characters")
	}
	return nil
}
