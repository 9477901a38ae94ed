package domain

import "time"

// ThreadSender indicates who authored a thread message.
type ThreadSender string

const (
	SenderCustomer   ThreadSender = "Customer"
	SenderAIAgent    ThreadSender = "AI_Agent"
	SenderHumanAgent ThreadSender = "Human_Agent"
)

// ThreadMessage is one entry in a ticket's conversation history.
// Insertion order is the canonical conversation order.
type ThreadMessage struct {
	ID        string
	TicketID  string
	Sender    ThreadSender
	Message   string
	Timestamp time.Time
}
