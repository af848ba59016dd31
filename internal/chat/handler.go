package chat

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes support-chat HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the chat HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sendRequest struct {
	Body string `json:"body"`
}

type messageResponse struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// Send posts a user message; the bot reply arrives asynchronously.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	id, _ := c.Locals("account_id").(string)
	m, err := h.service.Send(c.UserContext(), id, req.Body)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toMessage(m))
}

// History returns the caller's chat history.
func (h *Handler) History(c *fiber.Ctx) error {
	id, _ := c.Locals("account_id").(string)
	messages, err := h.service.History(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessage(m))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"messages": out})
}

func toMessage(m Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Sender:    string(m.Sender),
		Body:      m.Body,
		CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
	}
}
