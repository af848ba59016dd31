package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nzuri-bank/nzuri/internal/ledger"
)

// RegisterMovementRoutes wires money-movement endpoints.
func RegisterMovementRoutes(r fiber.Router, h *ledger.Handler) {
	grp := r.Group("/movements")
	grp.Get("", h.List)
	grp.Post("", h.Execute)
	grp.Post("/deposit", h.Deposit)
	grp.Post("/withdraw", h.Withdraw)
	grp.Post("/pay", h.Pay)
	grp.Post("/refund", h.Refund)

	r.Post("/transfers", h.Transfer)
}
