package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew         TicketStatus = "New"
	TicketStatusInProgress  TicketStatus = "In_Progress"
	TicketStatusAutoReplied TicketStatus = "Auto-Replied"
	TicketStatusResolved    TicketStatus = "Resolved"
	TicketStatusClosed      TicketStatus = "Closed"
)

// ResolutionStatus records how far automation got with a ticket.
type ResolutionStatus string

const (
	ResolutionNoMatch            ResolutionStatus = "No_Match"
	ResolutionSuggestionSent     ResolutionStatus = "Suggestion_Sent"
	ResolutionAutoResolved       ResolutionStatus = "Auto_Resolved"
	ResolutionManualIntervention ResolutionStatus = "Manual_Intervention"
)

// Severity enumerates urgency tiers assigned by classification.
type Severity string

const (
	SeverityP1 Severity = "P1"
	SeverityP2 Severity = "P2"
	SeverityP3 Severity = "P3"
	SeverityP4 Severity = "P4"
)

// Customer identifies the sender of an inbound message.
type Customer struct {
	Email  string
	Domain string
}

// Content holds the immutable inbound message text.
type Content struct {
	Subject      string
	OriginalBody string
}

// ClassificationFlags are boolean signals extracted by the classifier.
type ClassificationFlags struct {
	IsYelling            bool `json:"is_yelling"`
	IsFollowup           bool `json:"is_followup"`
	HasUrgentPunctuation bool `json:"has_urgent_punctuation"`
}

// Classification is the normalized output of the external classifier,
// written once at ticket creation.
type Classification struct {
	Category        string
	ConfidenceScore float64
	Severity        Severity
	SLA             string
	Sentiment       string
	Flags           ClassificationFlags
}

// Resolution records the outcome of the FAQ matching step. LinkedFAQID is a
// weak reference for matching history; deleting the FAQ entry must not
// invalidate the ticket.
type Resolution struct {
	Status      ResolutionStatus
	LinkedFAQID *string
}

// Ticket is the aggregate for one customer conversation.
type Ticket struct {
	ID             string
	TicketID       string
	Customer       Customer
	Content        Content
	Classification Classification
	Resolution     Resolution
	Status         TicketStatus
	IsEscalated    bool
	Enrichment     []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
