package services

import (
	"context"
	"time"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/core/domain"

	"github.com/shopspring/decimal"
)

// monthLayout formats the monthlyTotals keys
const monthLayout = "2006-01"

// Analysis is the per-owner summary of every stored expense
type Analysis struct {
	Count          int                `json:"count"`
	TotalAmount    float64            `json:"totalAmount"`
	AnomalyCount   int                `json:"anomalyCount"`
	CategoryTotals map[string]float64 `json:"categoryTotals"`
	MonthlyTotals  map[string]float64 `json:"monthlyTotals"`
	LastUpdated    *time.Time         `json:"lastUpdated"`
}

// AnalyticsService reads a user's expenses and folds them into an Analysis
type AnalyticsService struct {
	expenseRepo repositories.ExpenseRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(expenseRepo repositories.ExpenseRepository) *AnalyticsService {
	return &AnalyticsService{expenseRepo: expenseRepo}
}

// Analyze returns the Analysis of userID's expenses
func (s *AnalyticsService) Analyze(ctx context.Context, userID uint) (*Analysis, error) {
	expenses, err := s.expenseRepo.AllByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError("load expenses for analysis", err)
	}
	return Aggregate(expenses), nil
}

// Aggregate is a pure fold over expenses. Month keys use the UTC
// calendar date. Sums are exact to the cent.
func Aggregate(expenses []*models.Expense) *Analysis {
	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)

	analysis := &Analysis{
		Count:          len(expenses),
		CategoryTotals: make(map[string]float64),
		MonthlyTotals:  make(map[string]float64),
	}

	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount).Round(2)
		month := e.Date.UTC().Format(monthLayout)

		total = total.Add(amount)
		byCategory[e.Category] = byCategory[e.Category].Add(amount)
		byMonth[month] = byMonth[month].Add(amount)

		if e.Status == string(domain.StatusAnomaly) {
			analysis.AnomalyCount++
		}

		if analysis.LastUpdated == nil || e.UpdatedAt.After(*analysis.LastUpdated) {
			updated := e.UpdatedAt
			analysis.LastUpdated = &updated
		}
	}

	analysis.TotalAmount = total.InexactFloat64()
	for k, v := range byCategory {
		analysis.CategoryTotals[k] = v.InexactFloat64()
	}
	for k, v := range byMonth {
		analysis.MonthlyTotals[k] = v.InexactFloat64()
	}

	return analysis
}
