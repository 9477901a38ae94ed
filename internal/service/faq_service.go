package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/ai"
	"github.com/spec-kit/ticket-intake/internal/domain"
	"github.com/spec-kit/ticket-intake/internal/matching"
	"github.com/spec-kit/ticket-intake/internal/repository"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// FAQService owns knowledge base entries and answers match queries against
// them. Matching is a full scan over all entries, which is fine at current
// knowledge base sizes.
type FAQService struct {
	faqs     repository.FAQRepository
	embedder ai.Embedder
	logger   *zap.Logger
}

// NewFAQService constructs the service.
func NewFAQService(faqs repository.FAQRepository, embedder ai.Embedder, logger *zap.Logger) *FAQService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FAQService{faqs: faqs, embedder: embedder, logger: logger}
}

// MatchQuery embeds the query text and scans the knowledge base for the best
// match. Embedding or store failure is fatal to the caller's operation;
// resolution correctness depends on this result.
func (s *FAQService) MatchQuery(ctx context.Context, text string) (matching.Result, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return matching.Result{}, err
	}

	entries, err := s.faqs.ListAll(ctx)
	if err != nil {
		return matching.Result{}, apperrors.NewDependencyFailure("faq store", err)
	}

	result, err := matching.FindBestMatch(vector, entries)
	if err != nil {
		if errors.Is(err, matching.ErrEmptyQueryEmbedding) {
			return matching.Result{}, apperrors.NewDependencyFailure("embedding service", err)
		}
		return matching.Result{}, err
	}

	s.logger.Debug("faq match",
		zap.String("match_type", string(result.MatchType)),
		zap.Float64("score", result.Score))
	return result, nil
}

// CreateEntry embeds the entry text and stores it.
func (s *FAQService) CreateEntry(ctx context.Context, topic, content, category string) (*domain.KnowledgeBaseEntry, error) {
	topic = strings.TrimSpace(topic)
	content = strings.TrimSpace(content)
	if topic == "" || content == "" {
		return nil, apperrors.NewValidationError("topic and content required", nil)
	}

	vector, err := s.embedder.Embed(ctx, topic+". "+content)
	if err != nil {
		return nil, err
	}

	entry := &domain.KnowledgeBaseEntry{
		Topic:     topic,
		Content:   content,
		Category:  category,
		Embedding: vector,
	}
	if err := s.faqs.Create(ctx, entry); err != nil {
		return nil, apperrors.NewDependencyFailure("faq store", err)
	}
	return entry, nil
}

// ListEntries returns all knowledge base entries.
func (s *FAQService) ListEntries(ctx context.Context) ([]domain.KnowledgeBaseEntry, error) {
	entries, err := s.faqs.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("faq store", err)
	}
	return entries, nil
}
