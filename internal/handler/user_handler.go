package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMembers returns every member of the caller's workspace
// GET /api/v1/members
func (h *UserHandler) GetMembers(c *fiber.Ctx) error {
	members, err := h.userService.ListMembers(c.UserContext(), workspaceID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch members"})
	}
	return c.JSON(members)
}

// ManageUser runs a privileged member operation
// POST /api/v1/functions/manage-user
func (h *UserHandler) ManageUser(c *fiber.Ctx) error {
	var req service.ManageUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	member, err := h.userService.ManageUser(c.UserContext(), middleware.CurrentMember(c), &req)
	if err != nil {
		return fail(c, err)
	}

	status := 200
	if req.Operation == service.OpCreate {
		status = 201
	}
	return c.Status(status).JSON(fiber.Map{"success": true, "member": member})
}
