package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	user *models.User
	err  error
	got  string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (*models.User, error) {
	s.got = token
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newGatedApp(verifier CredentialVerifier, reached *bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/private", AuthMiddleware(verifier), func(c *fiber.Ctx) error {
		*reached = true
		id, _ := CurrentUserID(c)
		user, _ := CurrentUser(c)
		return c.JSON(fiber.Map{"id": id, "email": user.Email, "token": CurrentToken(c)})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, header string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestAuthMiddleware_Success(t *testing.T) {
	verifier := &stubVerifier{user: &models.User{ID: 7, Email: "a@x.com", IsActive: true}}
	var reached bool
	app := newGatedApp(verifier, &reached)

	status, body := doRequest(t, app, "Bearer good-token")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, reached)
	assert.Equal(t, "good-token", verifier.got)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, "good-token", body["token"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
		status int
	}{
		{"missing header", "", nil, fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", nil, fiber.StatusUnauthorized},
		{"empty bearer", "Bearer ", nil, fiber.StatusUnauthorized},
		{"invalid token", "Bearer t", domain.ErrInvalidToken, fiber.StatusUnauthorized},
		{"expired token", "Bearer t", domain.ErrTokenExpired, fiber.StatusUnauthorized},
		{"identity not found", "Bearer t", domain.ErrIdentityNotFound, fiber.StatusNotFound},
		{"inactive identity", "Bearer t", domain.ErrForbidden, fiber.StatusForbidden},
		{"missing secret", "Bearer t", domain.ErrMisconfigured, fiber.StatusInternalServerError},
		{"storage failure", "Bearer t", errors.New("db down"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &stubVerifier{err: tt.err, user: &models.User{ID: 1}}
			var reached bool
			app := newGatedApp(verifier, &reached)

			status, body := doRequest(t, app, tt.header)
			assert.Equal(t, tt.status, status)
			assert.False(t, reached, "wrapped handler must not run")
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = BearerToken("bearer   abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, h := range []string{"", "Bearer", "Token abc", "Bearer a b", "abc"} {
		_, err := BearerToken(h)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, "header %q", h)
	}
}
