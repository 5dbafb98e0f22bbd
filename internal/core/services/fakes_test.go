package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"expense-insight/internal/adapters/persistence/repositories"
	"expense-insight/internal/config"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/testdb"

	"gorm.io/gorm"
)

const testSecret = "service-test-secret"

// fakeClassifier returns a fixed verdict or error and records calls
type fakeClassifier struct {
	mu     sync.Mutex
	result *domain.AnomalyResult
	err    error
	calls  int
	drafts []domain.AnomalyDraft
	tokens []string
}

func (f *fakeClassifier) Classify(_ context.Context, draft domain.AnomalyDraft, token string) (*domain.AnomalyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.drafts = append(f.drafts, draft)
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakePublisher records published events
type fakePublisher struct {
	mu     sync.Mutex
	events []domain.AnomalyEvent
	err    error
}

func (f *fakePublisher) PublishAnomaly(_ context.Context, event domain.AnomalyEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

// fakeMailer records reset links
type fakeMailer struct {
	mu    sync.Mutex
	to    []string
	links []string
	err   error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.links = append(f.links, link)
	return f.err
}

// fakeExtractor returns fixed OCR text
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, image io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, image); err != nil {
		return "", err
	}
	return f.text, f.err
}

var errUnreachable = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

type fixture struct {
	db       *gorm.DB
	users    repositories.UserRepository
	expenses repositories.ExpenseRepository
	tokens   repositories.PasswordResetTokenRepository
}

func newFixture(t *testing.T) *fixture {
	db := testdb.Open(t)
	return &fixture{
		db:       db,
		users:    repositories.NewUserRepository(db),
		expenses: repositories.NewExpenseRepository(db),
		tokens:   repositories.NewPasswordResetTokenRepository(db),
	}
}

func (f *fixture) authService(secret string) *AuthService {
	return NewAuthService(f.users, config.JWTConfig{Secret: secret, TTLDays: 7})
}
