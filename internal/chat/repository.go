package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists chat messages.
type Repository interface {
	Insert(ctx context.Context, m Message) error
	ListByAccount(ctx context.Context, accountID string) ([]Message, error)
}

// PostgresRepository stores chat messages in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed chat repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert appends a chat message.
func (r *PostgresRepository) Insert(ctx context.Context, m Message) error {
	messageID, err := uuid.Parse(m.ID)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(m.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO chat_messages (id, account_id, sender, body, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		messageID, accountID, string(m.Sender), m.Body, m.CreatedAt.UTC())
	return err
}

// ListByAccount returns the message history for an account, oldest first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]Message, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, sender, body, created_at
        FROM chat_messages WHERE account_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			messageID uuid.UUID
			acctID    uuid.UUID
			sender    string
			createdAt time.Time
			m         Message
		)
		if err := rows.Scan(&messageID, &acctID, &sender, &m.Body, &createdAt); err != nil {
			return nil, err
		}
		m.ID = messageID.String()
		m.AccountID = acctID.String()
		m.Sender = Sender(sender)
		m.CreatedAt = createdAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}
