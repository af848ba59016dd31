package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nzuri-bank/nzuri/internal/chat"
)

// RegisterChatRoutes wires support-chat endpoints.
func RegisterChatRoutes(r fiber.Router, h *chat.Handler) {
	grp := r.Group("/chat")
	grp.Post("/messages", h.Send)
	grp.Get("/messages", h.History)
}
