package handlers

import (
	"errors"

	"expense-insight/internal/adapters/http/middleware"
	"expense-insight/internal/core/domain"
	"expense-insight/internal/core/services"
	"expense-insight/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles self-service profile endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpdateProfile handles updating own profile
// @Summary Update own profile
// @Description Update the current user's profile. Omitted fields are unchanged.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Update data"
// @Success 200 {object} response.Response{data=models.UserResponse}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /user/me [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.Context(), userID, &req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return response.BadRequest(c, msg)
		}
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, "Profile updated successfully", user.ToResponse())
}

// ChangePassword handles changing password
// @Summary Change password
// @Description Change the current user's password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Password data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /user/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate
	if req.CurrentPassword == "" {
		return response.BadRequest(c, "Current password is required")
	}
	if req.NewPassword == "" {
		return response.BadRequest(c, "New password is required")
	}

	err := h.userService.ChangePassword(c.Context(), userID, &req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return response.BadRequest(c, msg)
		}
		switch {
		case errors.Is(err, services.ErrCurrentPasswordWrong):
			return response.BadRequest(c, "Current password is incorrect")
		case errors.Is(err, domain.ErrIdentityNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Success(c, "Password changed successfully", nil)
}
