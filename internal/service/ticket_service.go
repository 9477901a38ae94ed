package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/domain"
	"github.com/spec-kit/ticket-intake/internal/events"
	"github.com/spec-kit/ticket-intake/internal/mailer"
	"github.com/spec-kit/ticket-intake/internal/repository"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// TicketService covers the human-agent side of the pipeline: browsing
// tickets, replying, and status changes.
type TicketService struct {
	tickets    repository.TicketRepository
	threads    repository.ThreadRepository
	dispatcher events.Dispatcher
	mail       mailer.Mailer
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	ThreadRepo repository.ThreadRepository
	Dispatcher events.Dispatcher
	Mailer     mailer.Mailer
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		threads:    deps.ThreadRepo,
		dispatcher: deps.Dispatcher,
		mail:       deps.Mailer,
		logger:     logger,
	}
}

// List returns a page of tickets, newest first.
func (s *TicketService) List(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, limit, offset)
}

// Get returns a ticket and its conversation thread.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, []domain.ThreadMessage, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	thread, err := s.threads.ListByTicket(ctx, ticket.TicketID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, thread, nil
}

// UpdateStatus changes a ticket's lifecycle status. Status is mutable by
// human agents independently of the resolution outcome.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	switch status {
	case domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusAutoReplied,
		domain.TicketStatusResolved, domain.TicketStatusClosed:
	default:
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}

	existing, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	updated, err := s.tickets.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: existing.Status,
			NewStatus: status,
		},
	})
	return updated, nil
}

// AddReply appends a message to a ticket's thread.
func (s *TicketService) AddReply(ctx context.Context, ticketID string, sender domain.ThreadSender, message string) (*domain.ThreadMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	switch sender {
	case domain.SenderCustomer, domain.SenderAIAgent, domain.SenderHumanAgent:
	default:
		return nil, apperrors.NewValidationError("unknown sender", map[string]any{"sender": sender})
	}

	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	entry := &domain.ThreadMessage{
		TicketID:  ticket.TicketID,
		Sender:    sender,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err := s.threads.Append(ctx, entry); err != nil {
		return nil, apperrors.NewDependencyFailure("ticket store", err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventThreadMessageAdded,
		TicketID: ticket.TicketID,
		Payload: events.ThreadMessageAddedPayload{
			Sender:      sender,
			BodyPreview: stringPreview(message, 120),
		},
	})

	// Human replies go out to the customer directly; errors are surfaced but
	// the thread entry stays.
	if sender == domain.SenderHumanAgent && s.mail != nil {
		if err := s.mail.Send(ctx, ticket.Customer.Email, "Re: "+ticket.Content.Subject, message); err != nil {
			s.logger.Warn("reply email failed",
				zap.String("ticket_id", ticket.TicketID),
				zap.Error(err))
		}
	}
	return entry, nil
}

// SendDirectEmail sends a one-off email outside any thread.
func (s *TicketService) SendDirectEmail(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(subject) == "" {
		return apperrors.NewValidationError("recipient and subject required", nil)
	}
	if s.mail == nil {
		return apperrors.NewDependencyFailure("email relay", nil)
	}
	return s.mail.Send(ctx, to, subject, body)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
