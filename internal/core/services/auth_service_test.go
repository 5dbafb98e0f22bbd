package services

import (
	"context"
	"testing"
	"time"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(testSecret)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterInput{Email: "  A@X.com ", Password: "longenough1"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "longenough1", user.Password)

	result, err := svc.Login(ctx, &LoginInput{Email: "a@x.com", Password: "longenough1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), result.ExpiresAt, time.Minute)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := jwt.ValidateAccessToken(result.AccessToken, testSecret)
	require.NoError(t, err)
	id, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(testSecret)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{Email: "a@x.com", Password: "longenough1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterInput{Email: "A@x.com", Password: "longenough1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	invalid := []*RegisterInput{
		{Email: "", Password: "longenough1"},
		{Email: "not-an-email", Password: "longenough1"},
		{Email: "b@x.com", Password: "short"},
		{Email: "b@x.com", Password: "longenough1", Gender: "robot"},
		{Email: "b@x.com", Password: "longenough1", PhoneNumber: "123"},
	}
	for _, in := range invalid {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidationFailed, "input %+v", in)
	}
}

func TestAuthService_RegisterSoftDeletedEmail(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(testSecret)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterInput{Email: "gone@x.com", Password: "longenough1"})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.User{}, user.ID).Error)

	exists, err := f.users.ExistsByEmail(ctx, "gone@x.com")
	require.NoError(t, err)
	require.False(t, exists, "soft-deleted rows are hidden from lookups")

	_, err = svc.Register(ctx, &RegisterInput{Email: "gone@x.com", Password: "longenough1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(testSecret)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterInput{Email: "a@x.com", Password: "longenough1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginInput{Email: "a@x.com", Password: "wrongpassword"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@x.com", Password: "longenough1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.authService("").Login(ctx, &LoginInput{Email: "a@x.com", Password: "longenough1"})
	assert.ErrorIs(t, err, domain.ErrMisconfigured)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Login(ctx, &LoginInput{Email: "a@x.com", Password: "longenough1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthService_Verify(t *testing.T) {
	f := newFixture(t)
	svc := f.authService(testSecret)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterInput{Email: "a@x.com", Password: "longenough1"})
	require.NoError(t, err)

	token, _, err := jwt.GenerateAccessToken(user.ID, testSecret, time.Hour)
	require.NoError(t, err)

	got, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Verify(ctx, "")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("other secret", func(t *testing.T) {
		forged, _, err := jwt.GenerateAccessToken(user.ID, "another-secret", time.Hour)
		require.NoError(t, err)
		_, err = svc.Verify(ctx, forged)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired, _, err := jwt.GenerateAccessToken(user.ID, testSecret, -time.Minute)
		require.NoError(t, err)
		_, err = svc.Verify(ctx, expired)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("unknown identity", func(t *testing.T) {
		ghost, _, err := jwt.GenerateAccessToken(user.ID+100, testSecret, time.Hour)
		require.NoError(t, err)
		_, err = svc.Verify(ctx, ghost)
		assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := f.authService("").Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrMisconfigured)
	})

	t.Run("inactive identity", func(t *testing.T) {
		require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
		_, err := svc.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("soft deleted identity", func(t *testing.T) {
		require.NoError(t, f.db.Delete(&models.User{}, user.ID).Error)
		_, err := svc.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	})
}
