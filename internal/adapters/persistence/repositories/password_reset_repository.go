package repositories

import (
	"context"
	"time"

	"expense-insight/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// passwordResetTokenRepository implements PasswordResetTokenRepository interface
type passwordResetTokenRepository struct {
	db *gorm.DB
}

// NewPasswordResetTokenRepository creates a new reset token repository
func NewPasswordResetTokenRepository(db *gorm.DB) PasswordResetTokenRepository {
	return &passwordResetTokenRepository{db: db}
}

// Create stores a new reset token
func (r *passwordResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByTokenHash gets a reset token by its hash, expired or not
func (r *passwordResetTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteByEmail removes every token issued for email
func (r *passwordResetTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.PasswordResetToken{}).Error
}

// DeleteByTokenHash removes one token and reports how many rows went.
// Only the caller that sees 1 owns the redemption.
func (r *passwordResetTokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}

// DeleteExpired deletes all tokens expired at now (cleanup job)
func (r *passwordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
