package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/permission"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService    service.AuthService
	memberResolver service.MembershipService
}

func NewAuthHandler(authService service.AuthService, memberResolver service.MembershipService) *AuthHandler {
	return &AuthHandler{authService: authService, memberResolver: memberResolver}
}

// Signup creates an auth account and signs it in
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req service.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	response, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(response)
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	response, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(response)
}

// Session resumes a prior session; RequireAuth already rejected stale tokens
// GET /api/v1/auth/session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.CurrentUser(c).ToResponse()})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	if err := h.authService.Heartbeat(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update heartbeat"})
	}
	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// Membership resolves the caller's workspace membership, provisioning one for
// a brand-new user.
// GET /api/v1/me/membership
func (h *AuthHandler) Membership(c *fiber.Ctx) error {
	member, err := h.memberResolver.Resolve(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"member":      member,
		"role_label":  permission.Labels[member.Role],
		"permissions": permission.Granted(member.Role),
	})
}
