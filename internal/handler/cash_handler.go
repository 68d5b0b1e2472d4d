package handler

import (
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CashHandler struct {
	service service.CashService
}

func NewCashHandler(s service.CashService) *CashHandler {
	return &CashHandler{service: s}
}

// GetLedger returns the movements of a period and their balance
// GET /api/v1/cash?from=&to=
func (h *CashHandler) GetLedger(c *fiber.Ctx) error {
	period, err := periodQuery(c)
	if err != nil {
		return fail(c, err)
	}
	ledger, err := h.service.List(c.UserContext(), workspaceID(c), period)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ledger)
}

// POST /api/v1/cash
func (h *CashHandler) AddMovement(c *fiber.Ctx) error {
	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	m, err := h.service.AddMovement(c.UserContext(), workspaceID(c), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": m})
}

// GetCategories lists the fixed ledger categories.
func (h *CashHandler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(model.CashCategories)
}
