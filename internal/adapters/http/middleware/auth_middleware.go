package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID = "userID"
	LocalUser   = "user"
	LocalToken  = "token"
)

// CredentialVerifier resolves a bearer token to an active identity
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and
// stores the resolved identity in c.Locals otherwise
func AuthMiddleware(verifier CredentialVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Read Authorization header
		token, err := BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return rejectAuth(c, err)
		}

		// 2. Verify token and resolve identity
		user, err := verifier.Verify(c.Context(), token)
		if err != nil {
			return rejectAuth(c, err)
		}

		// 3. Set user info in context
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUser, user)
		c.Locals(LocalToken, token)

		return c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrUnauthenticated
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.Contains(token, " ") {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}

// rejectAuth maps a verification failure to its HTTP status
func rejectAuth(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return response.Unauthorized(c, "Access token required")
	case errors.Is(err, domain.ErrTokenExpired):
		return response.Unauthorized(c, "Access token expired")
	case errors.Is(err, domain.ErrInvalidToken):
		return response.Unauthorized(c, "Invalid access token")
	case errors.Is(err, domain.ErrIdentityNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "User account is inactive")
	case errors.Is(err, domain.ErrMisconfigured):
		log.Printf("❌ Authentication misconfigured: %v", err)
		return response.InternalServerError(c, "Server authentication is not configured")
	default:
		log.Printf("❌ Authentication failed unexpectedly: %v", err)
		return response.InternalServerError(c, "Internal Server Error")
	}
}

// CurrentUserID returns the authenticated user ID
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// CurrentUser returns the authenticated user
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(LocalUser).(*models.User)
	return user, ok && user != nil
}

// CurrentToken returns the raw bearer token of the request
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalToken).(string)
	return token
}
