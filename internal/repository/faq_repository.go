package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// FAQRepository stores knowledge base entries. ListAll is an explicit
// full-table scan: the matcher accepts O(n) per query.
type FAQRepository interface {
	Create(ctx context.Context, entry *domain.KnowledgeBaseEntry) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeBaseEntry, error)
	ListAll(ctx context.Context) ([]domain.KnowledgeBaseEntry, error)
}

type faqRepository struct {
	pool *pgxpool.Pool
}

// NewFAQRepository instantiates repository.
func NewFAQRepository(pool *pgxpool.Pool) FAQRepository {
	return &faqRepository{pool: pool}
}

func (r *faqRepository) Create(ctx context.Context, entry *domain.KnowledgeBaseEntry) error {
	const query = `
        INSERT INTO faqs (topic, content, category, embedding, success_rate)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, last_updated`
	return r.pool.QueryRow(ctx, query,
		entry.Topic,
		entry.Content,
		entry.Category,
		entry.Embedding,
		entry.SuccessRate,
	).Scan(&entry.ID, &entry.LastUpdated)
}

func (r *faqRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeBaseEntry, error) {
	const query = `
        SELECT id, topic, content, category, embedding, success_rate, last_updated
        FROM faqs WHERE id=$1`
	var entry domain.KnowledgeBaseEntry
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.Topic,
		&entry.Content,
		&entry.Category,
		&entry.Embedding,
		&entry.SuccessRate,
		&entry.LastUpdated,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *faqRepository) ListAll(ctx context.Context) ([]domain.KnowledgeBaseEntry, error) {
	const query = `
        SELECT id, topic, content, category, embedding, success_rate, last_updated
        FROM faqs`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.KnowledgeBaseEntry, 0)
	for rows.Next() {
		var entry domain.KnowledgeBaseEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Topic,
			&entry.Content,
			&entry.Category,
			&entry.Embedding,
			&entry.SuccessRate,
			&entry.LastUpdated,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
