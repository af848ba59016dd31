package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nzuri-bank/nzuri/internal/account"
)

// Handler exposes registration and token endpoints.
type Handler struct {
	accounts *account.Service
	tokens   *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(accounts *account.Service, tokens *Service) *Handler {
	return &Handler{accounts: accounts, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register opens a new account and returns its identifiers.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.accounts.Create(c.UserContext(), account.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":     acct.ID,
		"name":   acct.Name,
		"email":  acct.Email,
		"number": acct.Number,
	})
}

// Login authenticates an account and issues a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
	pair, err := h.tokens.Login(acct)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "token issuance failed")
	}
	return c.Status(http.StatusOK).JSON(pair)
}

// Refresh exchanges a refresh token for a fresh access token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	access, expiresIn, err := h.tokens.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"access_token": access,
		"expires_in":   expiresIn,
	})
}

// Logout invalidates all previously issued tokens for the caller.
func (h *Handler) Logout(c *fiber.Ctx) error {
	id, _ := c.Locals("account_id").(string)
	if id == "" {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	if err := h.tokens.Logout(c.UserContext(), id); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
