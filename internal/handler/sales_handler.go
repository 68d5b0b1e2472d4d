package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SalesHandler struct {
	service service.SalesService
}

func NewSalesHandler(s service.SalesService) *SalesHandler {
	return &SalesHandler{service: s}
}

// GET /api/v1/sales?from=&to=
func (h *SalesHandler) GetSales(c *fiber.Ctx) error {
	period, err := periodQuery(c)
	if err != nil {
		return fail(c, err)
	}
	sales, err := h.service.ListSales(c.UserContext(), workspaceID(c), period)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sales)
}

// Checkout records an individual sale. A failed stock or ledger step after the
// sale was saved still answers 201, with warnings.
// POST /api/v1/sales/checkout
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	res, err := h.service.Checkout(c.UserContext(), workspaceID(c), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Sale recorded", res, res.Warnings)
}

// POST /api/v1/sales/day-close
func (h *SalesHandler) CloseDay(c *fiber.Ctx) error {
	var req service.DayCloseRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	res, err := h.service.CloseDay(c.UserContext(), workspaceID(c), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Day closed", res, res.Warnings)
}
