package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ExpenseService is the expense write pipeline plus owner-scoped reads
type ExpenseService struct {
	expenseRepo repositories.ExpenseRepository
	classifier  AnomalyClassifier
	publisher   EventPublisher
}

// NewExpenseService creates a new expense service.
// A nil classifier scores every write as Normal; a nil publisher drops events.
func NewExpenseService(
	expenseRepo repositories.ExpenseRepository,
	classifier AnomalyClassifier,
	publisher EventPublisher,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		classifier:  classifier,
		publisher:   publisher,
	}
}

// UpdateExpenseInput carries the fields a caller wants to change.
// Nil fields keep their stored value.
type UpdateExpenseInput struct {
	Category *string
	Amount   *string
	Date     *string
	Notes    *string
}

// Add validates, scores and stores a new expense for userID
func (s *ExpenseService) Add(ctx context.Context, userID uint, bearerToken string, input ExpenseInput) (*models.Expense, error) {
	validated, err := ValidateExpense(input)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, userID, bearerToken, validated, "")
}

// create scores and stores an already validated expense
func (s *ExpenseService) create(ctx context.Context, userID uint, bearerToken string, v *ValidatedExpense, rawText string) (*models.Expense, error) {
	verdict := s.classify(ctx, bearerToken, v)

	expense := &models.Expense{
		UserID:       userID,
		Category:     string(v.Category),
		Amount:       v.Amount,
		Date:         v.Date,
		Notes:        v.Notes,
		RawText:      rawText,
		Status:       string(verdict.Status()),
		AnomalyScore: verdict.Score,
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, persistenceError("create expense", err)
	}

	s.publish(ctx, expense)
	return expense, nil
}

// Update merges input over the stored expense, re-validates and re-scores
// the result, then replaces every mutable field. Foreign or missing ids
// return domain.ErrNotFound.
func (s *ExpenseService) Update(ctx context.Context, userID, id uint, bearerToken string, input UpdateExpenseInput) (*models.Expense, error) {
	// 1. Scoped lookup
	stored, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// 2. Merge and validate
	merged := ExpenseInput{
		Category: stored.Category,
		Amount:   strconv.FormatFloat(stored.Amount, 'f', -1, 64),
		Date:     stored.Date.UTC().Format(domain.DateLayout),
		Notes:    stored.Notes,
	}
	if input.Category != nil {
		merged.Category = *input.Category
	}
	if input.Amount != nil {
		merged.Amount = *input.Amount
	}
	if input.Date != nil {
		merged.Date = *input.Date
	}
	if input.Notes != nil {
		merged.Notes = *input.Notes
	}

	validated, err := ValidateExpense(merged)
	if err != nil {
		return nil, err
	}

	// 3. Score
	verdict := s.classify(ctx, bearerToken, validated)

	// 4. Scoped full replace
	stored.Category = string(validated.Category)
	stored.Amount = validated.Amount
	stored.Date = validated.Date
	stored.Notes = validated.Notes
	stored.Status = string(verdict.Status())
	stored.AnomalyScore = verdict.Score

	rows, err := s.expenseRepo.UpdateForUser(ctx, stored)
	if err != nil {
		return nil, persistenceError("update expense", err)
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	stored.UpdatedAt = time.Now().UTC()

	s.publish(ctx, stored)
	return stored, nil
}

// Delete removes an expense owned by userID
func (s *ExpenseService) Delete(ctx context.Context, userID, id uint) error {
	rows, err := s.expenseRepo.DeleteForUser(ctx, id, userID)
	if err != nil {
		return persistenceError("delete expense", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get returns an expense owned by userID
func (s *ExpenseService) Get(ctx context.Context, userID, id uint) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, persistenceError("get expense", err)
	}
	return expense, nil
}

// List returns one page of userID's expenses, newest date first
func (s *ExpenseService) List(ctx context.Context, userID uint, params *pagination.Params) ([]*models.Expense, int64, error) {
	expenses, total, err := s.expenseRepo.ListByUser(ctx, userID, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, persistenceError("list expenses", err)
	}
	return expenses, total, nil
}

// classify asks the classifier for a verdict and degrades to Normal/0
// on any failure. It never returns an error.
func (s *ExpenseService) classify(ctx context.Context, bearerToken string, v *ValidatedExpense) domain.AnomalyResult {
	if s.classifier == nil {
		return domain.AnomalyResult{}
	}

	verdict, err := s.classifier.Classify(ctx, domain.AnomalyDraft{
		Amount:   v.Amount,
		Category: v.Category,
		Date:     v.Date,
	}, bearerToken)
	if err != nil {
		log.Printf("⚠️ Anomaly classifier degraded, storing as %s: %v", domain.StatusNormal, err)
		return domain.AnomalyResult{}
	}
	if verdict == nil {
		return domain.AnomalyResult{}
	}
	return *verdict
}

// publish announces anomalies; failures are logged and dropped
func (s *ExpenseService) publish(ctx context.Context, expense *models.Expense) {
	if s.publisher == nil || expense.Status != string(domain.StatusAnomaly) {
		return
	}

	event := domain.AnomalyEvent{
		ExpenseID:  expense.ID,
		UserID:     expense.UserID,
		Category:   expense.Category,
		Amount:     expense.Amount,
		Date:       expense.Date.UTC().Format(domain.DateLayout),
		Score:      expense.AnomalyScore,
		DetectedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishAnomaly(ctx, event); err != nil {
		log.Printf("⚠️ Failed to publish anomaly event for expense %d: %v", expense.ID, err)
	}
}
