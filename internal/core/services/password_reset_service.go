package services

import (
	"context"
	"errors"
	"log"
	"net/url"
	"time"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/password"

	"gorm.io/gorm"
)

// ResetTokenTTL is how long an emailed reset link stays valid
const ResetTokenTTL = 15 * time.Minute

// PasswordResetService issues and redeems single-use reset tokens
type PasswordResetService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.PasswordResetTokenRepository
	mailer    Mailer
	resetURL  string
	now       func() time.Time
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.PasswordResetTokenRepository,
	mailer Mailer,
	resetURL string,
) *PasswordResetService {
	return &PasswordResetService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		resetURL:  resetURL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ResetPasswordInput represents the reset confirmation body
type ResetPasswordInput struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RequestReset emails a reset link when email belongs to an active
// account. The outcome is the same whether or not the account exists.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("email", "email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("ℹ️ Password reset requested for unknown email")
			return nil
		}
		return persistenceError("find user for reset", err)
	}
	if !user.IsActive {
		return nil
	}

	// 1. At most one live token per email
	if err := s.tokenRepo.DeleteByEmail(ctx, email); err != nil {
		return persistenceError("delete previous reset tokens", err)
	}

	// 2. Store the hash of a fresh token
	token, err := password.NewToken()
	if err != nil {
		return err
	}
	record := &models.PasswordResetToken{
		Email:     email,
		TokenHash: password.HashToken(token),
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return persistenceError("store reset token", err)
	}

	// 3. Deliver the link; delivery failures are not reported to the caller
	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, email, s.resetLink(token)); err != nil {
			log.Printf("❌ Failed to send password reset email to %s: %v", email, err)
		}
	}

	log.Printf("✅ Password reset token issued for user ID: %d", user.ID)
	return nil
}

// ResetPassword redeems token and replaces the account password
func (s *PasswordResetService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	// 1. Validate input
	if input.Token == "" {
		return domain.NewValidationError("token", "token is required")
	}
	if input.NewPassword != input.ConfirmPassword {
		return domain.NewValidationError("confirmPassword", "passwords do not match")
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.NewValidationError("newPassword", "password must be between 8 and 30 characters")
	}

	// 2. Look up token by hash
	tokenHash := password.HashToken(input.Token)
	record, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return persistenceError("find reset token", err)
	}

	// 3. Claim the token; a concurrent redemption that deleted it first wins
	claimed, err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash)
	if err != nil {
		return persistenceError("consume reset token", err)
	}
	if claimed != 1 {
		return domain.ErrResetTokenInvalid
	}

	// 4. Expired tokens are consumed on detection
	if record.IsExpired(s.now()) {
		return domain.ErrResetTokenInvalid
	}

	// 5. Resolve the account
	user, err := s.userRepo.GetByEmail(ctx, record.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrIdentityNotFound
		}
		return persistenceError("find user for reset", err)
	}

	// 6. Replace the password hash
	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return persistenceError("update password", err)
	}

	// Any other outstanding tokens for the account are void now
	if err := s.tokenRepo.DeleteByEmail(ctx, record.Email); err != nil {
		log.Printf("⚠️ Failed to delete remaining reset tokens: %v", err)
	}

	log.Printf("✅ Password reset for user ID: %d", user.ID)
	return nil
}

// PurgeExpired deletes every expired reset token
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, persistenceError("purge expired reset tokens", err)
	}
	return n, nil
}

func (s *PasswordResetService) resetLink(token string) string {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return s.resetURL + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
