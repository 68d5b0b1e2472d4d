package handler

import (
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/permission"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

type roleInfo struct {
	Code        model.Role `json:"code"`
	Label       string     `json:"label"`
	Permissions []string   `json:"permissions"`
}

// GetRoles returns all available roles with what each one grants
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles := make([]roleInfo, 0, len(model.Roles))
	for _, r := range model.Roles {
		roles = append(roles, roleInfo{Code: r, Label: permission.Labels[r], Permissions: permission.Granted(r)})
	}
	return c.JSON(roles)
}
