package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"expense-insight/internal/core/domain"
)

// maxAmount is the largest value a decimal(12,2) column holds
const maxAmount = 9999999999.99

// maxNotesLength matches the notes column size
const maxNotesLength = 500

// ExpenseInput holds the raw candidate fields of an expense
type ExpenseInput struct {
	Category string
	Amount   string
	Date     string
	Notes    string
}

// ValidatedExpense is an expense candidate that passed every check
type ValidatedExpense struct {
	Category domain.Category
	Amount   float64
	Date     time.Time
	Notes    string
}

// ValidateExpense checks category, amount and date in that order and
// reports the first failure as a *domain.ValidationError.
func ValidateExpense(in ExpenseInput) (*ValidatedExpense, error) {
	// Category
	raw := strings.TrimSpace(in.Category)
	if raw == "" {
		return nil, domain.NewValidationError("category", "category is required")
	}
	category, ok := domain.ParseCategory(raw)
	if !ok {
		return nil, domain.NewValidationError("category", "category must be one of: "+categoryList())
	}

	// Amount
	rawAmount := strings.TrimSpace(in.Amount)
	if rawAmount == "" {
		return nil, domain.NewValidationError("amount", "amount is required")
	}
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, domain.NewValidationError("amount", "amount must be a number")
	}
	if amount < 0 {
		return nil, domain.NewValidationError("amount", "amount must be zero or greater")
	}
	if amount > maxAmount {
		return nil, domain.NewValidationError("amount", "amount is too large")
	}

	// Date
	rawDate := strings.TrimSpace(in.Date)
	if rawDate == "" {
		return nil, domain.NewValidationError("date", "date is required")
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return nil, domain.NewValidationError("date", "date must be a valid date in YYYY-MM-DD format")
	}

	// Notes
	notes := strings.TrimSpace(in.Notes)
	if len(notes) > maxNotesLength {
		return nil, domain.NewValidationError("notes", "notes must be at most 500 characters")
	}

	return &ValidatedExpense{
		Category: category,
		Amount:   amount,
		Date:     date,
		Notes:    notes,
	}, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp and
// returns the UTC calendar date
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.ToDate(t.UTC()), nil
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
