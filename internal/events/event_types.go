package events

import (
	"time"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAutoResolved  EventType = "ticket_auto_resolved"
	EventSuggestionSent      EventType = "suggestion_sent"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventThreadMessageAdded  EventType = "thread_message_added"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerEmail    string                  `json:"customer_email"`
	Subject          string                  `json:"subject"`
	Category         string                  `json:"category"`
	Severity         domain.Severity         `json:"severity"`
	ResolutionStatus domain.ResolutionStatus `json:"resolution_status"`
	IsEscalated      bool                    `json:"is_escalated"`
}

// AutoResponsePayload accompanies auto_resolved and suggestion_sent events;
// it carries everything the notification layer needs to email the customer.
type AutoResponsePayload struct {
	CustomerEmail string  `json:"customer_email"`
	Subject       string  `json:"subject"`
	ResponseText  string  `json:"response_text"`
	FAQID         string  `json:"faq_id"`
	MatchScore    float64 `json:"match_score"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	CustomerEmail string          `json:"customer_email"`
	Severity      domain.Severity `json:"severity"`
	IsYelling     bool            `json:"is_yelling"`
	HasUrgentPunc bool            `json:"has_urgent_punctuation"`
}

// ThreadMessageAddedPayload payload.
type ThreadMessageAddedPayload struct {
	Sender      domain.ThreadSender `json:"sender"`
	BodyPreview string              `json:"body_preview"`
	Dedup       bool                `json:"dedup"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
