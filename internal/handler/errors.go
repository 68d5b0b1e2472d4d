package handler

import (
	"errors"

	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// fail writes err with the status its kind maps to. Backend failures keep
// their message so the operator sees what the database said.
func fail(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(400).JSON(fiber.Map{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrMembershipInactive),
		errors.Is(err, service.ErrWorkspaceMismatch):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionRevoked),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
}

// actor builds the audit identity of the authenticated caller.
func actor(c *fiber.Ctx) service.Actor {
	u := middleware.CurrentUser(c)
	if u == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: u.ID, Name: u.FullName, Email: u.Email}
}

// workspaceID is the caller's active workspace, set by RequireWorkspace.
func workspaceID(c *fiber.Ctx) uuid.UUID {
	if m := middleware.CurrentMember(c); m != nil {
		return m.WorkspaceID
	}
	return uuid.Nil
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// periodQuery reads the optional inclusive from/to bounds.
func periodQuery(c *fiber.Ctx) (repository.Period, error) {
	var p repository.Period
	if from := c.Query("from"); from != "" {
		d, err := model.ParseDate(from)
		if err != nil {
			return p, &service.ValidationError{Field: "from", Message: "expected YYYY-MM-DD"}
		}
		p.From = d
	}
	if to := c.Query("to"); to != "" {
		d, err := model.ParseDate(to)
		if err != nil {
			return p, &service.ValidationError{Field: "to", Message: "expected YYYY-MM-DD"}
		}
		p.To = d
	}
	return p, nil
}

// created answers 201 and, when a later step of the flow failed, the warnings
// that go with it.
func created(c *fiber.Ctx, message string, data interface{}, warnings []string) error {
	body := fiber.Map{"message": message, "data": data}
	if len(warnings) > 0 {
		body["message"] = message + " with warnings"
		body["warnings"] = warnings
	}
	return c.Status(201).JSON(body)
}
