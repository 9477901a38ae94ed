package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListBySenderSince(ctx context.Context, email string, since time.Time) ([]domain.Ticket, error)
	List(ctx context.Context, limit, offset int) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
    id, ticket_id, customer_email, customer_domain, subject, original_body,
    category, confidence_score, severity, sla, sentiment,
    flag_yelling, flag_followup, flag_urgent_punctuation,
    resolution_status, linked_faq_id, status, is_escalated, enrichment,
    created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (
            ticket_id, customer_email, customer_domain, subject, original_body,
            category, confidence_score, severity, sla, sentiment,
            flag_yelling, flag_followup, flag_urgent_punctuation,
            resolution_status, linked_faq_id, status, is_escalated, enrichment, created_at
        )
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.Customer.Email,
		ticket.Customer.Domain,
		ticket.Content.Subject,
		ticket.Content.OriginalBody,
		ticket.Classification.Category,
		ticket.Classification.ConfidenceScore,
		ticket.Classification.Severity,
		ticket.Classification.SLA,
		ticket.Classification.Sentiment,
		ticket.Classification.Flags.IsYelling,
		ticket.Classification.Flags.IsFollowup,
		ticket.Classification.Flags.HasUrgentPunctuation,
		ticket.Resolution.Status,
		ticket.Resolution.LinkedFAQID,
		ticket.Status,
		ticket.IsEscalated,
		ticket.Enrichment,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id=$1`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	ticket, err := scanTicket(rows)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListBySenderSince(ctx context.Context, email string, since time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE customer_email=$1 AND created_at >= $2 AND status <> $3
        ORDER BY created_at DESC`
	return r.fetchMany(ctx, query, email, since, domain.TicketStatusClosed)
}

func (r *ticketRepository) List(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + ticketColumns + `
        FROM tickets ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.fetchMany(ctx, query, limit, offset)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	query := `UPDATE tickets SET status=$1, updated_at=NOW() WHERE ticket_id=$2 RETURNING ` + ticketColumns
	rows, err := r.pool.Query(ctx, query, status, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanTicket(rows)
}

func (r *ticketRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var linkedFAQID *string
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.Customer.Email,
		&ticket.Customer.Domain,
		&ticket.Content.Subject,
		&ticket.Content.OriginalBody,
		&ticket.Classification.Category,
		&ticket.Classification.ConfidenceScore,
		&ticket.Classification.Severity,
		&ticket.Classification.SLA,
		&ticket.Classification.Sentiment,
		&ticket.Classification.Flags.IsYelling,
		&ticket.Classification.Flags.IsFollowup,
		&ticket.Classification.Flags.HasUrgentPunctuation,
		&ticket.Resolution.Status,
		&linkedFAQID,
		&ticket.Status,
		&ticket.IsEscalated,
		&ticket.Enrichment,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ticket.Resolution.LinkedFAQID = linkedFAQID
	return &ticket, nil
}
