package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nzuri-bank/nzuri/internal/account"
	"github.com/nzuri-bank/nzuri/internal/auth"
	"github.com/nzuri-bank/nzuri/internal/config"
)

// JWTAuth validates bearer tokens and attaches the account id to the request.
// The token version claim is checked against the account so logout invalidates
// previously issued tokens.
func JWTAuth(cfg config.Config, repo account.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)
		verFloat, _ := claims["ver"].(float64)
		ver := int(verFloat)

		acct, err := repo.GetByID(c.UserContext(), sub)
		if err != nil || acct.TokenVersion != ver {
			return fiber.NewError(http.StatusUnauthorized, "token invalidated")
		}

		c.Locals("account_id", sub)
		c.Locals("token_version", ver)
		return c.Next()
	}
}
