package repositories

import (
	"context"
	"time"

	"expense-insight/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateProfile(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ExpenseRepository defines expense repository interface.
// Every read and write is scoped by owner.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByIDForUser(ctx context.Context, id, userID uint) (*models.Expense, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Expense, int64, error)
	AllByUser(ctx context.Context, userID uint) ([]*models.Expense, error)
	UpdateForUser(ctx context.Context, expense *models.Expense) (int64, error)
	DeleteForUser(ctx context.Context, id, userID uint) (int64, error)
}

// PasswordResetTokenRepository defines reset token repository interface
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
