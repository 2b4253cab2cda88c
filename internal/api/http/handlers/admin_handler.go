package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storefront-labs/storefront-api/internal/api/dto"
	"github.com/storefront-labs/storefront-api/internal/service"
	apperrors "github.com/storefront-labs/storefront-api/pkg/util"
)

// AdminHandler exposes account administration.
type AdminHandler struct {
	users *service.UserService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, page, err := h.users.ListUsers(c.UserContext(), pageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(dto.UserListResponse{
		Message: "Users retrieved successfully",
		Users:   items,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
		Pages:   page.Pages,
	})
}

// SetStatus handles PATCH /admin/users/:id/status.
func (h *AdminHandler) SetStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UserStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return apperrors.NewMissingFields("isActive")
	}

	user, err := h.users.SetActive(c.UserContext(), actor.ID, c.Params("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User status updated", "user": userResponse(user)})
}
