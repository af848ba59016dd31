package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nzuri-bank/nzuri/internal/account"
)

// RegisterAccountRoutes wires account profile endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler) {
	grp := r.Group("/accounts")
	grp.Get("/me", h.Me)
	grp.Post("/me/deactivate", h.Deactivate)
}
