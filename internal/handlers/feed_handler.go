package handlers

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/middleware"
	"github.com/DTyss/GymApp-sub000/internal/models"
	feedws "github.com/DTyss/GymApp-sub000/internal/websocket"
)

type FeedHandler struct {
	hub *feedws.Hub
}

func NewFeedHandler(hub *feedws.Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// RequireUpgrade rejects plain HTTP requests to the feed endpoint.
func (h *FeedHandler) RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}
	return c.Next()
}

func (h *FeedHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(models.ID)
	role, _ := conn.Locals(middleware.LocalRole).(string)
	client := feedws.NewClient(h.hub, conn, userID, role)

	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	go client.WritePump()
	client.ReadPump()
}
