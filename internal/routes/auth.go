package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nzuri-bank/nzuri/internal/auth"
)

// RegisterAuthRoutes wires registration and token endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, loginRateLimit fiber.Handler) {
	grp := r.Group("/auth")
	grp.Post("/register", h.Register)
	grp.Post("/login", loginRateLimit, h.Login)
	grp.Post("/refresh", h.Refresh)
}

// RegisterSessionRoutes wires token endpoints that require authentication.
func RegisterSessionRoutes(r fiber.Router, h *auth.Handler) {
	grp := r.Group("/auth")
	grp.Post("/logout", h.Logout)
}
