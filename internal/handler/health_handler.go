package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	clients func() int
}

// NewHealthHandler reports database reachability; clients, when set, adds the
// number of open realtime sockets.
func NewHealthHandler(db *gorm.DB, clients func() int) *HealthHandler {
	return &HealthHandler{db: db, clients: clients}
}

// GET /healthz
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	body := fiber.Map{"status": "ok"}
	if h.clients != nil {
		body["realtime_clients"] = h.clients()
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		body["status"] = "degraded"
		body["database"] = err.Error()
		return c.Status(503).JSON(body)
	}
	body["database"] = "ok"
	return c.JSON(body)
}
