package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UpgradeRealtime lets only websocket upgrades through and hands the resolved
// member to the socket handler.
func UpgradeRealtime(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
	m := middleware.CurrentMember(c)
	c.Locals("ws_workspace_id", m.WorkspaceID)
	c.Locals("ws_user_id", m.UserID)
	return c.Next()
}

// Realtime registers the socket with hub and keeps reading until the client
// goes away or the hub drops it.
func Realtime(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		client := &ws.Client{Conn: c}
		client.WorkspaceID, _ = c.Locals("ws_workspace_id").(uuid.UUID)
		client.UserID, _ = c.Locals("ws_user_id").(uuid.UUID)

		hub.Register <- client
		defer func() { hub.Unregister <- client }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
