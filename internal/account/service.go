package account

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const numberAttempts = 5

// ErrInvalidCredentials occurs when email/password verification fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages account lifecycle: creation, lookup, deactivation.
type Service struct {
	repo Repository
}

// NewService creates the account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures the data required to open an account.
type CreateInput struct {
	Name     string
	Email    string
	Password string
}

// Create opens an account with a zero balance, an active flag, and a freshly
// generated account number. Number collisions against the unique index are
// retried with a new number.
func (s *Service) Create(ctx context.Context, input CreateInput) (Account, error) {
	if len(input.Password) < 8 {
		return Account{}, errors.New("password must be at least 8 characters")
	}
	if input.Name == "" || input.Email == "" {
		return Account{}, errors.New("name and email are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	account := Account{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Balance:      decimal.Zero,
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		account.Number = newAccountNumber()
		err = s.repo.Create(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, ErrNumberTaken) {
			return Account{}, err
		}
	}
	return Account{}, err
}

// Authenticate verifies email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByNumber fetches an account by its public number.
func (s *Service) GetByNumber(ctx context.Context, number string) (Account, error) {
	return s.repo.GetByNumber(ctx, number)
}

// Deactivate blocks all money movement on the account.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}

// Reactivate lifts the movement block.
func (s *Service) Reactivate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, true)
}

// newAccountNumber produces a 10-digit account number. Uniqueness is enforced
// by the store; Create retries on collision.
func newAccountNumber() string {
	n := rand.Int63n(9_000_000_000) + 1_000_000_000
	return strconv.FormatInt(n, 10)
}
