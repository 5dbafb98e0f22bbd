package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReceipt(t *testing.T) {
	today := time.Date(2024, 7, 4, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		text   string
		amount float64
		date   string
	}{
		{"total with thousands separator", "SHOP\nTOTAL: 1,234.50\n12/03/2024", 1234.5, "2024-03-12"},
		{"amount keyword", "Amount due $ 42.00.\nDate 2024-02-29", 42, "2024-02-29"},
		{"month first fallback", "total 10\n03/25/2024", 10, "2024-03-25"},
		{"dashes", "Total 7.5 on 05-06-2023", 7.5, "2023-06-05"},
		{"nothing found", "thank you for shopping", 0, "2024-07-04"},
		{"impossible date", "total 3\n45/45/2024", 3, "2024-07-04"},
		{"amount beyond column range", "TOTAL 123456789012345.00\n2024-01-05", 0, "2024-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := ParseReceipt(tt.text, today)
			assert.Equal(t, tt.amount, draft.Amount)
			assert.Equal(t, tt.date, draft.Date.Format(domain.DateLayout))
			assert.Equal(t, tt.text, draft.RawText)
		})
	}
}

func TestReceiptService_Upload(t *testing.T) {
	f := newFixture(t)
	alice := testdb.CreateUser(t, f.db, "alice@example.com")
	classifier := &fakeClassifier{result: &domain.AnomalyResult{Score: 0.2}}
	expenses := NewExpenseService(f.expenses, classifier, nil)
	ctx := context.Background()

	svc := NewReceiptService(&fakeExtractor{text: "Total: 88.40\n01/02/2024"}, expenses)
	added, err := svc.Upload(ctx, alice.ID, "tok", ReceiptUpload{Filename: "bill.png", Image: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "Miscellaneous", added.Category)
	assert.Equal(t, 88.4, added.Amount)
	assert.Equal(t, "2024-02-01", added.Date.Format(domain.DateLayout))
	assert.Contains(t, added.RawText, "Total: 88.40")
	assert.Equal(t, 1, classifier.calls)

	added, err = svc.Upload(ctx, alice.ID, "tok", ReceiptUpload{Filename: "bill.png", Image: strings.NewReader("png"), Category: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", added.Category)

	_, err = svc.Upload(ctx, alice.ID, "tok", ReceiptUpload{Filename: "bill.png", Image: strings.NewReader("png"), Category: "Food"})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestReceiptService_OversizedAmountStillUploads(t *testing.T) {
	f := newFixture(t)
	alice := testdb.CreateUser(t, f.db, "alice@example.com")
	expenses := NewExpenseService(f.expenses, nil, nil)

	svc := NewReceiptService(&fakeExtractor{text: "Total: 99,999,999,999.99\n2024-03-01"}, expenses)
	added, err := svc.Upload(context.Background(), alice.ID, "tok", ReceiptUpload{Filename: "bill.png", Image: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Zero(t, added.Amount)
	assert.Equal(t, "2024-03-01", added.Date.Format(domain.DateLayout))
	assert.Contains(t, added.RawText, "99,999,999,999.99")
}

func TestReceiptService_ExtractorFailure(t *testing.T) {
	f := newFixture(t)
	alice := testdb.CreateUser(t, f.db, "alice@example.com")
	expenses := NewExpenseService(f.expenses, nil, nil)
	ctx := context.Background()

	failing := NewReceiptService(&fakeExtractor{err: domain.ErrUpstreamDegraded}, expenses)
	_, err := failing.Upload(ctx, alice.ID, "tok", ReceiptUpload{Image: strings.NewReader("x")})
	assert.ErrorIs(t, err, domain.ErrUpstreamDegraded)

	unconfigured := NewReceiptService(nil, expenses)
	_, err = unconfigured.Upload(ctx, alice.ID, "tok", ReceiptUpload{Image: strings.NewReader("x")})
	assert.ErrorIs(t, err, domain.ErrUpstreamDegraded)
}
