package services

import (
	"context"
	"io"

	"expense-insight/internal/core/domain"
)

// Outbound collaborators. Implementations live under internal/adapters.

// AnomalyClassifier scores an expense draft. Errors are non-fatal to writes.
type AnomalyClassifier interface {
	Classify(ctx context.Context, draft domain.AnomalyDraft, bearerToken string) (*domain.AnomalyResult, error)
}

// ReceiptExtractor turns a receipt image into plain text
type ReceiptExtractor interface {
	Extract(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Mailer delivers password reset links
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// EventPublisher announces expenses classified as anomalies
type EventPublisher interface {
	PublishAnomaly(ctx context.Context, event domain.AnomalyEvent) error
}
