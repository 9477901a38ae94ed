package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/events"
	"github.com/spec-kit/ticket-intake/internal/mailer"
)

// NotificationService delivers customer-facing email for pipeline events.
type NotificationService struct {
	dispatcher events.Dispatcher
	mail       mailer.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mail mailer.Mailer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		mail:       mail,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketAutoResolved, n.handleAutoResponse)
	n.dispatcher.Subscribe(events.EventSuggestionSent, n.handleAutoResponse)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleEscalated)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleCreated)
}

// handleAutoResponse emails the generated reply to the customer.
// Fire-and-forget: a delivery failure is logged, never retried here.
func (n *NotificationService) handleAutoResponse(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AutoResponsePayload)
	if !ok {
		return nil
	}
	if n.mail == nil {
		return nil
	}
	if err := n.mail.Send(ctx, payload.CustomerEmail, "Re: "+payload.Subject, payload.ResponseText); err != nil {
		n.logger.Warn("auto-response email failed",
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return err
	}
	n.logger.Info("auto-response sent",
		zap.String("ticket_id", event.TicketID),
		zap.String("to", payload.CustomerEmail),
		zap.Float64("match_score", payload.MatchScore))
	return nil
}

func (n *NotificationService) handleEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return nil
	}
	n.logger.Warn("ticket escalated",
		zap.String("ticket_id", event.TicketID),
		zap.String("severity", string(payload.Severity)),
		zap.Bool("is_yelling", payload.IsYelling),
		zap.Bool("has_urgent_punctuation", payload.HasUrgentPunc))
	return nil
}

func (n *NotificationService) handleCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket created",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}
