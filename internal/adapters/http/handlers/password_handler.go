package handlers

import (
	"errors"

	"expense-insight/internal/core/domain"
	"expense-insight/internal/core/services"
	"expense-insight/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PasswordHandler handles password reset endpoints
type PasswordHandler struct {
	resetService *services.PasswordResetService
}

// NewPasswordHandler creates a new password handler
func NewPasswordHandler(resetService *services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resetService: resetService}
}

// SendResetEmailRequest represents the reset request body
type SendResetEmailRequest struct {
	Email string `json:"email" example:"jane@example.com"`
}

// SendResetEmail emails a reset link
// @Summary Request password reset
// @Description Email a reset link valid for 15 minutes. The response does not reveal whether the account exists.
// @Tags Password
// @Accept json
// @Produce json
// @Param body body SendResetEmailRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/send-reset-email [post]
func (h *PasswordHandler) SendResetEmail(c *fiber.Ctx) error {
	var req SendResetEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.resetService.RequestReset(c.Context(), req.Email); err != nil {
		if msg, ok := validationMessage(err); ok {
			return response.BadRequest(c, msg)
		}
		return response.InternalServerError(c, "Failed to process reset request")
	}

	return response.Success(c, "If the account exists, a reset link has been sent", nil)
}

// ResetPassword redeems a reset token
// @Summary Reset password
// @Description Replace the account password using an emailed reset token
// @Tags Password
// @Accept json
// @Produce json
// @Param body body services.ResetPasswordInput true "Token and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/reset-password [post]
// @Router /api/reset-password/confirm [post]
func (h *PasswordHandler) ResetPassword(c *fiber.Ctx) error {
	var req services.ResetPasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.resetService.ResetPassword(c.Context(), &req); err != nil {
		if msg, ok := validationMessage(err); ok {
			return response.BadRequest(c, msg)
		}
		switch {
		case errors.Is(err, domain.ErrResetTokenInvalid):
			return response.BadRequest(c, "Reset token is invalid or expired")
		case errors.Is(err, domain.ErrIdentityNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Success(c, "Password has been reset", nil)
}
