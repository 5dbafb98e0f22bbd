package repositories

import (
	"context"
	"time"

	"expense-insight/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// expenseRepository implements ExpenseRepository interface
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

// Create creates a new expense
func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

// GetByIDForUser gets an expense by ID only if userID owns it
func (r *expenseRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListByUser lists a user's expenses, newest date first
func (r *expenseRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Expense, int64, error) {
	var expenses []*models.Expense
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&expenses).Error
	if err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

// AllByUser returns every expense owned by userID
func (r *expenseRepository) AllByUser(ctx context.Context, userID uint) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Order("id ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// UpdateForUser replaces the mutable fields of an owned expense and
// returns the number of matched rows (0 when id and owner do not match)
func (r *expenseRepository) UpdateForUser(ctx context.Context, expense *models.Expense) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ? AND user_id = ?", expense.ID, expense.UserID).
		Updates(map[string]interface{}{
			"category":      expense.Category,
			"amount":        expense.Amount,
			"date":          expense.Date,
			"notes":         expense.Notes,
			"raw_text":      expense.RawText,
			"status":        expense.Status,
			"anomaly_score": expense.AnomalyScore,
			"updated_at":    time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// DeleteForUser deletes an owned expense and returns the number of deleted rows
func (r *expenseRepository) DeleteForUser(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Expense{})
	return res.RowsAffected, res.Error
}
