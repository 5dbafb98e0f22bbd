package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/core/domain"
)

// ReceiptService turns an uploaded receipt image into a stored expense
type ReceiptService struct {
	extractor ReceiptExtractor
	expenses  *ExpenseService
	now       func() time.Time
}

// NewReceiptService creates a new receipt service.
// A nil extractor makes every upload fail as degraded.
func NewReceiptService(extractor ReceiptExtractor, expenses *ExpenseService) *ReceiptService {
	return &ReceiptService{
		extractor: extractor,
		expenses:  expenses,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ReceiptUpload is one uploaded receipt image
type ReceiptUpload struct {
	Filename string
	Image    io.Reader
	Category string // optional override, defaults to Miscellaneous
}

// Upload extracts text from the image, pre-fills an expense from it and
// runs the result through the normal add pipeline
func (s *ReceiptService) Upload(ctx context.Context, userID uint, bearerToken string, upload ReceiptUpload) (*models.Expense, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: receipt extraction is not configured", domain.ErrUpstreamDegraded)
	}

	// 1. OCR
	text, err := s.extractor.Extract(ctx, upload.Filename, upload.Image)
	if err != nil {
		return nil, err
	}

	// 2. Best-effort prefill
	draft := ParseReceipt(text, s.now())

	category := strings.TrimSpace(upload.Category)
	if category == "" {
		category = string(domain.CategoryMiscellaneous)
	}

	validated, err := ValidateExpense(ExpenseInput{
		Category: category,
		Amount:   strconv.FormatFloat(draft.Amount, 'f', -1, 64),
		Date:     draft.Date.Format(domain.DateLayout),
	})
	if err != nil {
		return nil, err
	}

	// 3. Add pipeline with the raw text kept for review
	return s.expenses.create(ctx, userID, bearerToken, validated, strings.TrimSpace(draft.RawText))
}
