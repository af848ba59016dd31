package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes account profile HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type profileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Number    string `json:"number"`
	Balance   string `json:"balance"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// Me returns the authenticated caller's profile and current balance.
func (h *Handler) Me(c *fiber.Ctx) error {
	id, _ := c.Locals("account_id").(string)
	account, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(profileResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Number:    account.Number,
		Balance:   account.Balance.String(),
		Active:    account.Active,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	})
}

// Deactivate blocks money movement on the caller's account.
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	id, _ := c.Locals("account_id").(string)
	if err := h.service.Deactivate(c.UserContext(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
