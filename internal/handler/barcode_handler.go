package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BarcodeHandler struct {
	lookup service.BarcodeLookup
}

func NewBarcodeHandler(lookup service.BarcodeLookup) *BarcodeHandler {
	return &BarcodeHandler{lookup: lookup}
}

// Lookup never answers with an error status: no data is a normal result.
// GET /api/barcode?code=
func (h *BarcodeHandler) Lookup(c *fiber.Ctx) error {
	return c.JSON(h.lookup.Lookup(c.UserContext(), c.Query("code")))
}
