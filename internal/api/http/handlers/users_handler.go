package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UsersHandler exposes account management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Register handles POST /admin/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required")
	}

	user, err := h.users.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    dto.NewUserResponse(user),
	})
}

// List handles GET /admin/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(items)
}

// Deregister handles DELETE /admin/users/:email.
func (h *UsersHandler) Deregister(c *fiber.Ctx) error {
	email := emailParam(c)
	if email == "" {
		return apperrors.NewValidationError("email required")
	}
	if err := h.users.Deregister(c.Context(), email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User and associated tickets deleted.",
	})
}

// UpdatePassword handles PUT /user/update-password.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("email, currentPassword and newPassword required")
	}

	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.CanActFor(req.Email) {
		return apperrors.NewForbidden("cannot change another user's password")
	}

	if err := h.users.ChangePassword(c.Context(), req.Email, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated successfully.",
	})
}

// emailParam decodes the :email path segment.
func emailParam(c *fiber.Ctx) string {
	raw := c.Params("email")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
