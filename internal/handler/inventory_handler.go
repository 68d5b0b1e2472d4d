package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), workspaceID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	p, err := h.service.GetProduct(c.UserContext(), workspaceID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	product, err := h.service.CreateProduct(c.UserContext(), workspaceID(c), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), workspaceID(c), id, actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.service.DeleteProduct(c.UserContext(), workspaceID(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// Restock adds stock and writes the matching restock movement
// POST /api/v1/products/:id/restock
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var req service.RestockRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	res, err := h.service.Restock(c.UserContext(), workspaceID(c), id, actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Restock recorded", res, res.Warnings)
}

// AdjustStock applies a signed delta, clamped at zero
// POST /api/v1/products/:id/adjust
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var req service.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	p, err := h.service.AdjustStock(c.UserContext(), workspaceID(c), id, actor(c), req.Delta)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": p})
}

// ScanProduct finds a product by scanned code or creates it from the lookup
// POST /api/v1/products/scan
func (h *InventoryHandler) ScanProduct(c *fiber.Ctx) error {
	var req service.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	res, err := h.service.ScanProduct(c.UserContext(), workspaceID(c), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	if res.Created {
		return c.Status(201).JSON(res)
	}
	return c.JSON(res)
}
