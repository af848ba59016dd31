package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound occurs when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken occurs when the email uniqueness constraint is violated.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNumberTaken occurs when the generated account number already exists.
	ErrNumberTaken = errors.New("account number already exists")
)

const uniqueViolationCode = "23505"

// Repository persists account profiles.
type Repository interface {
	Create(ctx context.Context, account Account) error
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByNumber(ctx context.Context, number string) (Account, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdateTokenVersion(ctx context.Context, id string, version int) error
}

// PostgresRepository stores accounts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an account row, mapping uniqueness violations to domain errors.
func (r *PostgresRepository) Create(ctx context.Context, account Account) error {
	accountID, err := uuid.Parse(account.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts
        (id, name, email, number, balance, active, password_hash, token_version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		accountID, account.Name, account.Email, account.Number, account.Balance.String(),
		account.Active, account.PasswordHash, account.TokenVersion,
		account.CreatedAt.UTC(), account.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			if pgErr.ConstraintName == "accounts_number_key" {
				return ErrNumberTaken
			}
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetByID fetches an account by identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	return r.get(ctx, `WHERE id = $1`, accountID)
}

// GetByEmail fetches an account by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

// GetByNumber fetches an account by its public number.
func (r *PostgresRepository) GetByNumber(ctx context.Context, number string) (Account, error) {
	return r.get(ctx, `WHERE number = $1`, number)
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (Account, error) {
	query := `SELECT id, name, email, number, balance, active, password_hash, token_version,
        created_at, updated_at FROM accounts ` + where
	row := r.db.QueryRow(ctx, query, arg)

	var (
		id        uuid.UUID
		balance   string
		createdAt time.Time
		updatedAt time.Time
		a         Account
	)
	if err := row.Scan(&id, &a.Name, &a.Email, &a.Number, &balance, &a.Active,
		&a.PasswordHash, &a.TokenVersion, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	a.ID = id.String()
	a.CreatedAt = createdAt.UTC()
	a.UpdatedAt = updatedAt.UTC()
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return Account{}, fmt.Errorf("parse balance: %w", err)
	}
	a.Balance = parsed
	return a, nil
}

// SetActive toggles the active flag that gates all money movement.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, id, `SET active = $1, updated_at = $2 WHERE id = $3`, active)
}

// UpdateTokenVersion bumps the token version, invalidating issued tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	return r.update(ctx, id, `SET token_version = $1, updated_at = $2 WHERE id = $3`, version)
}

func (r *PostgresRepository) update(ctx context.Context, id, set string, value any) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts `+set, value, time.Now().UTC(), accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
