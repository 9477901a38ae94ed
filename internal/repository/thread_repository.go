package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// ThreadRepository stores ticket conversation messages. Append-only;
// insertion order is the canonical conversation order.
type ThreadRepository interface {
	Append(ctx context.Context, msg *domain.ThreadMessage) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ThreadMessage, error)
}

type threadRepository struct {
	pool *pgxpool.Pool
}

// NewThreadRepository instantiates repository.
func NewThreadRepository(pool *pgxpool.Pool) ThreadRepository {
	return &threadRepository{pool: pool}
}

func (r *threadRepository) Append(ctx context.Context, msg *domain.ThreadMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, sender, message, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.Sender,
		msg.Message,
		msg.Timestamp,
	).Scan(&msg.ID)
}

func (r *threadRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ThreadMessage, error) {
	const query = `
        SELECT id, ticket_id, sender, message, created_at
        FROM ticket_messages
        WHERE ticket_id=$1
        ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.ThreadMessage, 0)
	for rows.Next() {
		var msg domain.ThreadMessage
		if err := rows.Scan(&msg.ID, &msg.TicketID, &msg.Sender, &msg.Message, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
