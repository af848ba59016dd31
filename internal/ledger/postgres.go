package ledger

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

const uniqueViolationCode = "23505"

// PostgresStore implements Store over PostgreSQL. Every method is a single
// independent statement on the pool: the executor is written for stores that
// offer no multi-statement transaction across calls, and this implementation
// keeps that contract rather than hiding a transaction behind it.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetAccount fetches the movement-relevant slice of an account row.
func (s *PostgresStore) GetAccount(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, number, balance, active FROM accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

// GetAccountByNumber fetches an account by its public account number.
func (s *PostgresStore) GetAccountByNumber(ctx context.Context, number string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT id, number, balance, active FROM accounts WHERE number = $1`, number)
	return scanAccount(row)
}

// InsertMovement appends one movement row. A reference collision surfaces as
// ErrDuplicateReference so the executor can regenerate and retry.
func (s *PostgresStore) InsertMovement(ctx context.Context, m Movement) (Movement, error) {
	movementID, err := uuid.Parse(m.ID)
	if err != nil {
		return Movement{}, fmt.Errorf("parse movement id: %w", err)
	}
	accountID, err := uuid.Parse(m.AccountID)
	if err != nil {
		return Movement{}, fmt.Errorf("parse account id: %w", err)
	}

	_, err = s.db.Exec(ctx, `INSERT INTO movements
        (id, account_id, direction, amount, description, counterparty, category, reference, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		movementID, accountID, string(m.Direction), m.Amount.String(), m.Description,
		m.Counterparty, string(m.Category), m.Reference, string(m.Status), m.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Movement{}, ErrDuplicateReference
		}
		return Movement{}, err
	}
	return m, nil
}

// DeleteMovement removes a movement row; used only as a compensating action.
func (s *PostgresStore) DeleteMovement(ctx context.Context, id string) error {
	movementID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse movement id: %w", err)
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM movements WHERE id = $1`, movementID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("movement %s not found", id)
	}
	return nil
}

// UpdateBalance overwrites the account balance field.
func (s *PostgresStore) UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return ErrAccountNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`,
		balance.String(), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListMovements returns the movement history for an account, newest first.
func (s *PostgresStore) ListMovements(ctx context.Context, accountID string) ([]Movement, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	rows, err := s.db.Query(ctx, `SELECT id, account_id, direction, amount, description, counterparty,
        category, reference, status, created_at
        FROM movements WHERE account_id = $1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		id      uuid.UUID
		a       Account
		balance string
	)
	if err := row.Scan(&id, &a.Number, &balance, &a.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	a.ID = id.String()
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return Account{}, fmt.Errorf("parse balance: %w", err)
	}
	a.Balance = parsed
	return a, nil
}

func scanMovement(row pgx.Row) (Movement, error) {
	var (
		id        uuid.UUID
		accountID uuid.UUID
		amount    string
		direction string
		category  string
		status    string
		createdAt time.Time
		m         Movement
	)
	if err := row.Scan(&id, &accountID, &direction, &amount, &m.Description,
		&m.Counterparty, &category, &m.Reference, &status, &createdAt); err != nil {
		return Movement{}, err
	}
	m.ID = id.String()
	m.AccountID = accountID.String()
	m.Direction = Direction(direction)
	m.Category = Category(category)
	m.Status = Status(status)
	m.CreatedAt = createdAt.UTC()
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Movement{}, fmt.Errorf("parse amount: %w", err)
	}
	m.Amount = parsed
	return m, nil
}
