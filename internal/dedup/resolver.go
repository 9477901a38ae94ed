package dedup

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/domain"
	"github.com/spec-kit/ticket-intake/internal/repository"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// Method identifies which strategy matched an inbound message to a thread.
type Method string

const (
	MethodIDMatch           Method = "ID_MATCH"
	MethodSubjectExactMatch Method = "SUBJECT_EXACT_MATCH"
)

// subjectMatchWindow bounds how far back same-sender subject grouping looks.
const subjectMatchWindow = 48 * time.Hour

// Resolution is the outcome of a deduplication check.
type Resolution struct {
	Found    bool
	TicketID string
	Reason   string
	Method   Method
}

// TicketStore is the slice of ticket persistence the resolver reads.
type TicketStore interface {
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListBySenderSince(ctx context.Context, email string, since time.Time) ([]domain.Ticket, error)
}

// Resolver decides whether an inbound message continues an existing
// conversation. Strategies run in strict priority order and the first hit
// short-circuits the rest.
type Resolver struct {
	tickets TicketStore
	logger  *zap.Logger
}

// NewResolver constructs a resolver over the given ticket store.
func NewResolver(tickets TicketStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{tickets: tickets, logger: logger}
}

// Resolve checks the inbound message against existing threads. A store error
// is a dependency failure, never a silent "no duplicate": treating outages as
// new conversations would fork threads.
//
// The body is accepted for a future semantic-similarity strategy; the current
// strategies only consult subject and sender.
func (r *Resolver) Resolve(ctx context.Context, subject, body, senderEmail string, now time.Time) (Resolution, error) {
	// Strategy 1: explicit ticket ID in the subject.
	if extractedID := extractTicketID(subject); extractedID != "" {
		ticket, err := r.tickets.GetByTicketID(ctx, extractedID)
		switch {
		case err == nil:
			r.logger.Debug("thread resolved by id",
				zap.String("ticket_id", ticket.TicketID),
				zap.String("sender", senderEmail))
			return Resolution{
				Found:    true,
				TicketID: ticket.TicketID,
				Reason:   "Explicit ticket ID detected in subject",
				Method:   MethodIDMatch,
			}, nil
		case errors.Is(err, repository.ErrNotFound):
			// Not a known ID; fall through to the next strategy.
		default:
			return Resolution{}, apperrors.NewDependencyFailure("ticket store", err)
		}
	}

	// Strategy 2: same sender, same normalized subject, within the window.
	cleanSubject := normalizeSubject(subject)
	since := now.Add(-subjectMatchWindow)
	recent, err := r.tickets.ListBySenderSince(ctx, senderEmail, since)
	if err != nil {
		return Resolution{}, apperrors.NewDependencyFailure("ticket store", err)
	}
	for i := range recent {
		if recent[i].Status == domain.TicketStatusClosed {
			continue
		}
		if normalizeSubject(recent[i].Content.Subject) == cleanSubject {
			r.logger.Debug("thread resolved by subject",
				zap.String("ticket_id", recent[i].TicketID),
				zap.String("sender", senderEmail))
			return Resolution{
				Found:    true,
				TicketID: recent[i].TicketID,
				Reason:   "Same sender and subject (ignoring Re:) within 48h",
				Method:   MethodSubjectExactMatch,
			}, nil
		}
	}

	// Semantic similarity over embeddings is deliberately not attempted here.
	return Resolution{Found: false}, nil
}
