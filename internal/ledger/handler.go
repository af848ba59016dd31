package ledger

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes movement and transfer HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the movement HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type movementRequest struct {
	Direction    string `json:"direction"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	Counterparty string `json:"counterparty,omitempty"`
	Category     string `json:"category"`
}

type amountRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type transferRequest struct {
	RecipientNumber string `json:"recipient_number"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
}

type movementResponse struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Direction    string `json:"direction"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	Counterparty string `json:"counterparty,omitempty"`
	Category     string `json:"category"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type resultResponse struct {
	Movement movementResponse `json:"movement"`
	Balance  string           `json:"balance"`
}

// Execute handles a generic movement request with explicit direction and category.
func (h *Handler) Execute(c *fiber.Ctx) error {
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}
	res, err := h.service.ExecuteMovement(c.UserContext(), MovementInput{
		AccountID:    callerID(c),
		Direction:    Direction(req.Direction),
		Amount:       amount,
		Description:  req.Description,
		Counterparty: req.Counterparty,
		Category:     Category(req.Category),
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResult(res))
}

// Deposit credits the caller's account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.fixed(c, DirectionCredit, CategoryDeposit, "Deposit")
}

// Withdraw debits the caller's account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.fixed(c, DirectionDebit, CategoryWithdrawal, "Withdrawal")
}

// Pay debits the caller's account as a payment.
func (h *Handler) Pay(c *fiber.Ctx) error {
	return h.fixed(c, DirectionDebit, CategoryPayment, "Payment")
}

// Refund credits the caller's account as a refund.
func (h *Handler) Refund(c *fiber.Ctx) error {
	return h.fixed(c, DirectionCredit, CategoryRefund, "Refund")
}

func (h *Handler) fixed(c *fiber.Ctx, direction Direction, category Category, fallbackDesc string) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}
	description := req.Description
	if description == "" {
		description = fallbackDesc
	}
	res, err := h.service.ExecuteMovement(c.UserContext(), MovementInput{
		AccountID:   callerID(c),
		Direction:   direction,
		Amount:      amount,
		Description: description,
		Category:    category,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResult(res))
}

// Transfer moves funds from the caller to another account by number.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}
	res, err := h.service.ExecuteTransfer(c.UserContext(), TransferInput{
		SenderID:        callerID(c),
		RecipientNumber: req.RecipientNumber,
		Amount:          amount,
		Description:     req.Description,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(resultResponse{
		Movement: toMovement(res.Movement),
		Balance:  res.Balance.String(),
	})
}

// List returns the caller's movement history.
func (h *Handler) List(c *fiber.Ctx) error {
	movements, err := h.service.Movements(c.UserContext(), callerID(c))
	if err != nil {
		return mapError(err)
	}
	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovement(m))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"movements": out})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("account_id").(string)
	return id
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	return amount, nil
}

func toMovement(m Movement) movementResponse {
	return movementResponse{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Direction:    string(m.Direction),
		Amount:       m.Amount.String(),
		Description:  m.Description,
		Counterparty: m.Counterparty,
		Category:     string(m.Category),
		Reference:    m.Reference,
		Status:       string(m.Status),
		CreatedAt:    m.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toResult(res MovementResult) resultResponse {
	return resultResponse{Movement: toMovement(res.Movement), Balance: res.Balance.String()}
}

// mapError translates engine sentinels into HTTP errors. Compensation
// failures surface as 500 like clean rollbacks; the distinction for operators
// is made in the logs, not the client response.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrRecipientNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidDirection), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrSelfTransfer):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAccountInactive), errors.Is(err, ErrRecipientInactive):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrCompensationFailed):
		return fiber.NewError(http.StatusInternalServerError, "transaction failed")
	case errors.Is(err, ErrTransactionFailed):
		return fiber.NewError(http.StatusInternalServerError, "transaction failed")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
