package middleware

import (
	"errors"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/permission"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "user"
	localMember = "member"
)

// RequireAuth validates the bearer token against the user's current token
// version and stores the user in the request context. Websocket upgrades may
// pass the token as ?token= since browsers cannot set headers on them.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		user, err := auth.ValidateToken(c.UserContext(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrSessionRevoked) {
				return c.Status(401).JSON(fiber.Map{"error": "Session expired (signed out or logged in on another device)"})
			}
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(localUser, user)
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		t := c.Query("token")
		return t, t != ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireWorkspace resolves (or provisions) the caller's membership. Inactive
// members are rejected on every request, not only at sign-in.
func RequireWorkspace(members service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}

		member, err := members.Resolve(c.UserContext(), user)
		if err != nil {
			if errors.Is(err, service.ErrMembershipInactive) {
				return c.Status(403).JSON(fiber.Map{"error": "Your account has been deactivated"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals(localMember, member)
		return c.Next()
	}
}

// RequirePermission checks the caller's role against the permission matrix.
// It must run after RequireWorkspace.
func RequirePermission(resource permission.Resource, action permission.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		member := CurrentMember(c)
		if member == nil {
			return c.Status(403).JSON(fiber.Map{"error": "No active membership"})
		}
		if !permission.Can(member.Role, resource, action) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + string(resource) + ":" + string(action) + "' permission",
			})
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(localUser).(*model.User)
	return u
}

func CurrentMember(c *fiber.Ctx) *model.WorkspaceMember {
	m, _ := c.Locals(localMember).(*model.WorkspaceMember)
	return m
}
