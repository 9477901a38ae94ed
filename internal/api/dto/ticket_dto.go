package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// CreateTicketRequest is the inbound message payload.
type CreateTicketRequest struct {
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerDomain string `json:"customerDomain"`
}

// TicketResponse is the external view of a ticket.
type TicketResponse struct {
	TicketID       string                  `json:"ticketId"`
	Customer       CustomerResponse        `json:"customer"`
	Subject        string                  `json:"subject"`
	OriginalBody   string                  `json:"originalBody"`
	Classification ClassificationResponse  `json:"classification"`
	Resolution     ResolutionResponse      `json:"resolution"`
	Status         domain.TicketStatus     `json:"status"`
	IsEscalated    bool                    `json:"isEscalated"`
	Enrichment     json.RawMessage         `json:"enrichment,omitempty"`
	Thread         []ThreadMessageResponse `json:"thread,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// CustomerResponse identifies the sender.
type CustomerResponse struct {
	Email  string `json:"email"`
	Domain string `json:"domain,omitempty"`
}

// ClassificationResponse is the stored classification.
type ClassificationResponse struct {
	Category        string                     `json:"category"`
	ConfidenceScore float64                    `json:"confidenceScore"`
	Severity        domain.Severity            `json:"severity"`
	SLA             string                     `json:"sla"`
	Sentiment       string                     `json:"sentiment"`
	Flags           domain.ClassificationFlags `json:"flags"`
}

// ResolutionResponse is the stored resolution outcome.
type ResolutionResponse struct {
	Status      domain.ResolutionStatus `json:"status"`
	LinkedFAQID *string                 `json:"linkedFaqId,omitempty"`
}

// ThreadMessageResponse is one conversation entry.
type ThreadMessageResponse struct {
	Sender    domain.ThreadSender `json:"sender"`
	Message   string              `json:"message"`
	Timestamp time.Time           `json:"timestamp"`
}

// AIAnalysisResponse summarizes the automated decision for the caller.
type AIAnalysisResponse struct {
	ClassifiedAs  string          `json:"classified_as"`
	Severity      domain.Severity `json:"severity"`
	FAQMatchFound bool            `json:"faq_match_found"`
	FAQMatchType  string          `json:"faq_match_type"`
	FAQTopic      string          `json:"faq_topic,omitempty"`
	FAQSolution   string          `json:"faq_solution,omitempty"`
}

// IntakeResponse is returned when a new ticket was created.
type IntakeResponse struct {
	Ticket     TicketResponse     `json:"ticket"`
	AIAnalysis AIAnalysisResponse `json:"ai_analysis"`
}

// DedupResponse is returned when the message joined an existing thread.
type DedupResponse struct {
	Deduplicated bool   `json:"deduplicated"`
	TicketID     string `json:"ticketId"`
	Method       string `json:"method"`
	Reason       string `json:"reason"`
}

// UpdateTicketRequest changes ticket status.
type UpdateTicketRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// ReplyRequest appends a thread message.
type ReplyRequest struct {
	Sender  domain.ThreadSender `json:"sender"`
	Message string              `json:"message"`
}

// DirectEmailRequest sends a one-off email.
type DirectEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreateFAQRequest adds a knowledge base entry.
type CreateFAQRequest struct {
	Topic    string `json:"topic"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// FAQResponse is the external view of a knowledge base entry; embeddings are
// internal and never exposed.
type FAQResponse struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	SuccessRate float64   `json:"successRate"`
	LastUpdated time.Time `json:"lastUpdated"`
}
