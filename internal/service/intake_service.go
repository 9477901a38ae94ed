package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/dedup"
	"github.com/spec-kit/ticket-intake/internal/domain"
	"github.com/spec-kit/ticket-intake/internal/events"
	"github.com/spec-kit/ticket-intake/internal/matching"
	"github.com/spec-kit/ticket-intake/internal/repository"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// Classifier normalizes an inbound message into the internal classification
// schema. It never fails; degraded results carry safe defaults.
type Classifier interface {
	Classify(ctx context.Context, subject, body string) domain.Classification
}

// Matcher finds the best knowledge base match for a query text.
type Matcher interface {
	MatchQuery(ctx context.Context, text string) (matching.Result, error)
}

// Enricher performs the optional best-effort enrichment lookup.
type Enricher interface {
	Enrich(ctx context.Context, email, subject, body string) (json.RawMessage, error)
}

// SuggestionWriter produces the partial-match auto-response.
type SuggestionWriter interface {
	GenerateForPartialMatch(ctx context.Context, fullText string, entry *domain.KnowledgeBaseEntry) string
}

// ThreadResolver decides whether an inbound message continues an existing
// conversation.
type ThreadResolver interface {
	Resolve(ctx context.Context, subject, body, senderEmail string, now time.Time) (dedup.Resolution, error)
}

// IntakeService orchestrates the resolution pipeline: deduplication first,
// then classification, FAQ matching and enrichment, merged into one ticket
// state transition.
type IntakeService struct {
	tickets    repository.TicketRepository
	threads    repository.ThreadRepository
	resolver   ThreadResolver
	classifier Classifier
	matcher    Matcher
	enricher   Enricher
	writer     SuggestionWriter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	TicketRepo repository.TicketRepository
	ThreadRepo repository.ThreadRepository
	Resolver   ThreadResolver
	Classifier Classifier
	Matcher    Matcher
	Enricher   Enricher
	Writer     SuggestionWriter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		tickets:    deps.TicketRepo,
		threads:    deps.ThreadRepo,
		resolver:   deps.Resolver,
		classifier: deps.Classifier,
		matcher:    deps.Matcher,
		enricher:   deps.Enricher,
		writer:     deps.Writer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// InboundMessage is one customer email handed to the pipeline.
type InboundMessage struct {
	Subject        string
	Body           string
	CustomerEmail  string
	CustomerDomain string
	ReceivedAt     time.Time
}

// AIAnalysis summarizes what automation concluded, for the boundary layer.
type AIAnalysis struct {
	ClassifiedAs  string
	Severity      domain.Severity
	FAQMatchFound bool
	FAQMatchType  matching.MatchType
	FAQTopic      string
	FAQSolution   string
	MatchScore    float64
}

// IntakeResult is the outcome of processing one inbound message: either a
// newly created ticket, or an append to an existing thread.
type IntakeResult struct {
	Deduplicated bool
	TicketID     string
	Method       dedup.Method
	Reason       string
	Ticket       *domain.Ticket
	Thread       []domain.ThreadMessage
	Analysis     *AIAnalysis
}

// stepOutcome is the per-call result of one concurrent pipeline step.
// Exactly one of ok/degraded/fatal applies; the orchestrator joins these
// explicitly instead of letting failures race each other.
type stepOutcome[T any] struct {
	value    T
	degraded bool
	fatal    error
}

// ProcessInbound runs the full pipeline for one inbound message. The thread
// resolver runs first and short-circuits everything else; otherwise
// classification, matching and enrichment run concurrently and the decision
// policy merges their outcomes. A matcher or store failure aborts the whole
// operation; classification and enrichment degrade.
func (s *IntakeService) ProcessInbound(ctx context.Context, msg InboundMessage) (*IntakeResult, error) {
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Body = strings.TrimSpace(msg.Body)
	msg.CustomerEmail = strings.TrimSpace(msg.CustomerEmail)
	if msg.Subject == "" || msg.Body == "" || msg.CustomerEmail == "" {
		return nil, apperrors.NewValidationError("subject, body, and customer email are required", nil)
	}
	now := msg.ReceivedAt
	if now.IsZero() {
		now = time.Now()
	}

	resolution, err := s.resolver.Resolve(ctx, msg.Subject, msg.Body, msg.CustomerEmail, now)
	if err != nil {
		return nil, err
	}
	if resolution.Found {
		return s.appendToThread(ctx, resolution, msg, now)
	}

	fullText := fmt.Sprintf("Subject: %s. %s", msg.Subject, msg.Body)

	var (
		wg        sync.WaitGroup
		clsOut    stepOutcome[domain.Classification]
		matchOut  stepOutcome[matching.Result]
		enrichOut stepOutcome[json.RawMessage]
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		clsOut.value = s.classifier.Classify(ctx, msg.Subject, msg.Body)
	}()
	go func() {
		defer wg.Done()
		result, err := s.matcher.MatchQuery(ctx, fullText)
		if err != nil {
			matchOut.fatal = err
			return
		}
		matchOut.value = result
	}()
	go func() {
		defer wg.Done()
		if s.enricher == nil {
			enrichOut.degraded = true
			return
		}
		raw, err := s.enricher.Enrich(ctx, msg.CustomerEmail, msg.Subject, msg.Body)
		if err != nil {
			s.logger.Debug("enrichment degraded", zap.Error(err))
			enrichOut.degraded = true
			return
		}
		enrichOut.value = raw
	}()
	wg.Wait()

	if matchOut.fatal != nil {
		return nil, matchOut.fatal
	}

	cls := clsOut.value
	match := matchOut.value

	ticket := &domain.Ticket{
		TicketID: generateTicketID(now),
		Customer: domain.Customer{
			Email:  msg.CustomerEmail,
			Domain: customerDomain(msg.CustomerDomain, msg.CustomerEmail),
		},
		Content: domain.Content{
			Subject:      msg.Subject,
			OriginalBody: msg.Body,
		},
		Classification: cls,
		Resolution:     domain.Resolution{Status: domain.ResolutionNoMatch},
		Status:         domain.TicketStatusNew,
		CreatedAt:      now,
	}
	if !enrichOut.degraded && len(enrichOut.value) > 0 {
		ticket.Enrichment = enrichOut.value
	}

	var autoResponse string
	switch match.MatchType {
	case matching.MatchPerfect:
		ticket.Status = domain.TicketStatusAutoReplied
		ticket.Resolution.Status = domain.ResolutionAutoResolved
		faqID := match.Best.ID
		ticket.Resolution.LinkedFAQID = &faqID
		autoResponse = perfectMatchResponse(cls.Category, match)
	case matching.MatchPartial:
		ticket.Status = domain.TicketStatusInProgress
		ticket.Resolution.Status = domain.ResolutionSuggestionSent
		faqID := match.Best.ID
		ticket.Resolution.LinkedFAQID = &faqID
		autoResponse = s.writer.GenerateForPartialMatch(ctx, fullText, match.Best)
	}

	// Escalation is independent of the match decision: an auto-resolved
	// ticket can still be flagged for a human.
	ticket.IsEscalated = cls.Flags.IsYelling ||
		cls.Flags.HasUrgentPunctuation ||
		cls.Severity == domain.SeverityP1

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewDependencyFailure("ticket store", err)
	}

	var thread []domain.ThreadMessage
	if autoResponse != "" {
		seed := &domain.ThreadMessage{
			TicketID:  ticket.TicketID,
			Sender:    domain.SenderAIAgent,
			Message:   autoResponse,
			Timestamp: now,
		}
		if err := s.threads.Append(ctx, seed); err != nil {
			return nil, apperrors.NewDependencyFailure("ticket store", err)
		}
		thread = append(thread, *seed)
	}

	s.publishCreationEvents(ctx, ticket, match, autoResponse)

	analysis := &AIAnalysis{
		ClassifiedAs:  cls.Category,
		Severity:      cls.Severity,
		FAQMatchFound: match.MatchType != matching.MatchNone,
		FAQMatchType:  match.MatchType,
		MatchScore:    match.Score,
	}
	if match.Best != nil {
		analysis.FAQTopic = match.Best.Topic
		analysis.FAQSolution = match.Best.Content
	}

	return &IntakeResult{
		TicketID: ticket.TicketID,
		Ticket:   ticket,
		Thread:   thread,
		Analysis: analysis,
	}, nil
}

// appendToThread handles the short-circuit path: the message continues an
// existing conversation, so classification and matching are skipped entirely.
func (s *IntakeService) appendToThread(ctx context.Context, resolution dedup.Resolution, msg InboundMessage, now time.Time) (*IntakeResult, error) {
	entry := &domain.ThreadMessage{
		TicketID:  resolution.TicketID,
		Sender:    domain.SenderCustomer,
		Message:   msg.Body,
		Timestamp: now,
	}
	if err := s.threads.Append(ctx, entry); err != nil {
		return nil, apperrors.NewDependencyFailure("ticket store", err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventThreadMessageAdded,
		TicketID: resolution.TicketID,
		Payload: events.ThreadMessageAddedPayload{
			Sender:      domain.SenderCustomer,
			BodyPreview: stringPreview(msg.Body, 120),
			Dedup:       true,
		},
	})
	s.logger.Info("inbound message merged into existing thread",
		zap.String("ticket_id", resolution.TicketID),
		zap.String("method", string(resolution.Method)))

	return &IntakeResult{
		Deduplicated: true,
		TicketID:     resolution.TicketID,
		Method:       resolution.Method,
		Reason:       resolution.Reason,
		Thread:       []domain.ThreadMessage{*entry},
	}, nil
}

func (s *IntakeService) publishCreationEvents(ctx context.Context, ticket *domain.Ticket, match matching.Result, autoResponse string) {
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.TicketID,
		Payload: events.TicketCreatedPayload{
			CustomerEmail:    ticket.Customer.Email,
			Subject:          ticket.Content.Subject,
			Category:         ticket.Classification.Category,
			Severity:         ticket.Classification.Severity,
			ResolutionStatus: ticket.Resolution.Status,
			IsEscalated:      ticket.IsEscalated,
		},
	})

	if autoResponse != "" {
		eventType := events.EventSuggestionSent
		if ticket.Resolution.Status == domain.ResolutionAutoResolved {
			eventType = events.EventTicketAutoResolved
		}
		var faqID string
		if ticket.Resolution.LinkedFAQID != nil {
			faqID = *ticket.Resolution.LinkedFAQID
		}
		s.publish(ctx, events.Event{
			Type:     eventType,
			TicketID: ticket.TicketID,
			Payload: events.AutoResponsePayload{
				CustomerEmail: ticket.Customer.Email,
				Subject:       ticket.Content.Subject,
				ResponseText:  autoResponse,
				FAQID:         faqID,
				MatchScore:    match.Score,
			},
		})
	}

	if ticket.IsEscalated {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: ticket.TicketID,
			Payload: events.TicketEscalatedPayload{
				CustomerEmail: ticket.Customer.Email,
				Severity:      ticket.Classification.Severity,
				IsYelling:     ticket.Classification.Flags.IsYelling,
				HasUrgentPunc: ticket.Classification.Flags.HasUrgentPunctuation,
			},
		})
	}
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
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

func perfectMatchResponse(category string, match matching.Result) string {
	return fmt.Sprintf(
		"Hi there,\nBased on your issue regarding %q, we found a solution:\n**%s**\n\n%s\n\n(AI Confidence: %.1f%%)",
		category,
		match.Best.Topic,
		match.Best.Content,
		match.Score*100,
	)
}

func customerDomain(explicit, email string) string {
	if explicit != "" {
		return explicit
	}
	if at := strings.LastIndex(email, "@"); at >= 0 && at+1 < len(email) {
		return email[at+1:]
	}
	return ""
}

func stringPreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
