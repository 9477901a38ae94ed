package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-intake/internal/dedup"
	"github.com/spec-kit/ticket-intake/internal/domain"
	"github.com/spec-kit/ticket-intake/internal/matching"
	"github.com/spec-kit/ticket-intake/internal/repository"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	err     error
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets = append(f.tickets, *ticket)
	return nil
}

func (f *fakeTicketRepo) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].TicketID == ticketID {
			ticket := f.tickets[i]
			return &ticket, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTicketRepo) ListBySenderSince(ctx context.Context, email string, since time.Time) ([]domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.Customer.Email == email && !t.CreatedAt.Before(since) && t.Status != domain.TicketStatusClosed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) List(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Ticket{}, f.tickets...), nil
}

func (f *fakeTicketRepo) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].TicketID == ticketID {
			f.tickets[i].Status = status
			ticket := f.tickets[i]
			return &ticket, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeThreadRepo struct {
	mu       sync.Mutex
	messages []domain.ThreadMessage
	err      error
}

func (f *fakeThreadRepo) Append(ctx context.Context, msg *domain.ThreadMessage) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = uuid.NewString()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeThreadRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ThreadMessage
	for _, m := range f.messages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeClassifier struct {
	result domain.Classification
}

func (f *fakeClassifier) Classify(ctx context.Context, subject, body string) domain.Classification {
	return f.result
}

type fakeMatcher struct {
	result matching.Result
	err    error
}

func (f *fakeMatcher) MatchQuery(ctx context.Context, text string) (matching.Result, error) {
	return f.result, f.err
}

type fakeEnricher struct {
	payload json.RawMessage
	err     error
}

func (f *fakeEnricher) Enrich(ctx context.Context, email, subject, body string) (json.RawMessage, error) {
	return f.payload, f.err
}

type fakeWriter struct{}

func (fakeWriter) GenerateForPartialMatch(ctx context.Context, fullText string, entry *domain.KnowledgeBaseEntry) string {
	return "Would this help? " + entry.Topic
}

func defaultClassification() domain.Classification {
	return domain.Classification{
		Category:  "General Inquiry",
		Severity:  domain.SeverityP3,
		SLA:       "24 Hours",
		Sentiment: "Neutral",
	}
}

func matchResult(score float64) matching.Result {
	entry := domain.KnowledgeBaseEntry{
		ID:        "faq-1",
		Topic:     "Password Reset",
		Content:   "Use the forgot-password link on the login page.",
		Embedding: []float64{1, 0},
	}
	return matching.Result{
		MatchType: matching.MatchTypeForScore(score),
		Score:     score,
		Best:      &entry,
	}
}

type intakeFixture struct {
	tickets *fakeTicketRepo
	threads *fakeThreadRepo
	service *IntakeService
}

func newIntakeFixture(t *testing.T, cls domain.Classification, match matching.Result, matchErr error, enricher Enricher) *intakeFixture {
	t.Helper()
	tickets := &fakeTicketRepo{}
	threads := &fakeThreadRepo{}
	svc := NewIntakeService(IntakeDependencies{
		TicketRepo: tickets,
		ThreadRepo: threads,
		Resolver:   dedup.NewResolver(tickets, nil),
		Classifier: &fakeClassifier{result: cls},
		Matcher:    &fakeMatcher{result: match, err: matchErr},
		Enricher:   enricher,
		Writer:     fakeWriter{},
	})
	return &intakeFixture{tickets: tickets, threads: threads, service: svc}
}

func inbound(subject string) InboundMessage {
	return InboundMessage{
		Subject:       subject,
		Body:          "reset password",
		CustomerEmail: "a@x.com",
	}
}

func TestProcessInboundPerfectMatchAutoResolves(t *testing.T) {
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.95), nil, nil)

	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)
	require.NotNil(t, result.Ticket)

	ticket := result.Ticket
	assert.Equal(t, domain.TicketStatusAutoReplied, ticket.Status)
	assert.Equal(t, domain.ResolutionAutoResolved, ticket.Resolution.Status)
	require.NotNil(t, ticket.Resolution.LinkedFAQID)
	assert.Equal(t, "faq-1", *ticket.Resolution.LinkedFAQID)

	require.Len(t, result.Thread, 1)
	assert.Equal(t, domain.SenderAIAgent, result.Thread[0].Sender)
	assert.Contains(t, result.Thread[0].Message, "Use the forgot-password link on the login page.")
	assert.Contains(t, result.Thread[0].Message, "95.0%")

	assert.True(t, result.Analysis.FAQMatchFound)
	assert.Equal(t, matching.MatchPerfect, result.Analysis.FAQMatchType)
}

func TestProcessInboundPartialMatchSendsSuggestion(t *testing.T) {
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.70), nil, nil)

	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)

	ticket := result.Ticket
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Equal(t, domain.ResolutionSuggestionSent, ticket.Resolution.Status)
	require.NotNil(t, ticket.Resolution.LinkedFAQID)

	require.Len(t, result.Thread, 1)
	assert.Equal(t, domain.SenderAIAgent, result.Thread[0].Sender)
	// Generator output, not the perfect-match template.
	assert.Equal(t, "Would this help? Password Reset", result.Thread[0].Message)
}

func TestProcessInboundNoMatchLeavesTicketForHumans(t *testing.T) {
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.10), nil, nil)

	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)

	ticket := result.Ticket
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.ResolutionNoMatch, ticket.Resolution.Status)
	assert.Nil(t, ticket.Resolution.LinkedFAQID)
	assert.Empty(t, result.Thread)
	assert.False(t, result.Analysis.FAQMatchFound)
}

func TestProcessInboundFollowupJoinsExistingThread(t *testing.T) {
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.95), nil, nil)

	start := time.Now().Add(-2 * time.Hour)
	first, err := fx.service.ProcessInbound(context.Background(), InboundMessage{
		Subject:       "Billing Help",
		Body:          "reset password",
		CustomerEmail: "a@x.com",
		ReceivedAt:    start,
	})
	require.NoError(t, err)

	second, err := fx.service.ProcessInbound(context.Background(), InboundMessage{
		Subject:       "Re: Billing Help",
		Body:          "still broken",
		CustomerEmail: "a@x.com",
		ReceivedAt:    start.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.TicketID, second.TicketID)
	assert.Equal(t, dedup.MethodSubjectExactMatch, second.Method)

	// No new ticket was created.
	assert.Len(t, fx.tickets.tickets, 1)

	thread, err := fx.threads.ListByTicket(context.Background(), first.TicketID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, domain.SenderAIAgent, thread[0].Sender)
	assert.Equal(t, domain.SenderCustomer, thread[1].Sender)
	assert.Equal(t, "still broken", thread[1].Message)
}

func TestProcessInboundEscalationComposition(t *testing.T) {
	cases := []struct {
		name     string
		yelling  bool
		urgent   bool
		severity domain.Severity
		want     bool
	}{
		{"calm P3", false, false, domain.SeverityP3, false},
		{"calm P2", false, false, domain.SeverityP2, false},
		{"yelling P2", true, false, domain.SeverityP2, true},
		{"urgent punctuation P4", false, true, domain.SeverityP4, true},
		{"calm P1", false, false, domain.SeverityP1, true},
		{"everything at once", true, true, domain.SeverityP1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cls := defaultClassification()
			cls.Severity = tc.severity
			cls.Flags.IsYelling = tc.yelling
			cls.Flags.HasUrgentPunctuation = tc.urgent

			fx := newIntakeFixture(t, cls, matchResult(0.10), nil, nil)
			result, err := fx.service.ProcessInbound(context.Background(), inbound("subject "+tc.name))
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Ticket.IsEscalated)
		})
	}
}

func TestProcessInboundEscalationIndependentOfMatch(t *testing.T) {
	cls := defaultClassification()
	cls.Flags.IsYelling = true

	fx := newIntakeFixture(t, cls, matchResult(0.95), nil, nil)
	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)

	// Auto-resolved and still escalated.
	assert.Equal(t, domain.ResolutionAutoResolved, result.Ticket.Resolution.Status)
	assert.True(t, result.Ticket.IsEscalated)
}

func TestProcessInboundMatcherFailureIsFatal(t *testing.T) {
	matchErr := apperrors.NewDependencyFailure("embedding service", errors.New("connection refused"))
	fx := newIntakeFixture(t, defaultClassification(), matching.Result{}, matchErr, nil)

	_, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.Error(t, err)
	assert.True(t, apperrors.IsDependencyFailure(err))
	// Fail closed: no partial ticket persisted.
	assert.Empty(t, fx.tickets.tickets)
	assert.Empty(t, fx.threads.messages)
}

func TestProcessInboundResolverFailureIsFatal(t *testing.T) {
	tickets := &fakeTicketRepo{err: errors.New("store down")}
	svc := NewIntakeService(IntakeDependencies{
		TicketRepo: tickets,
		ThreadRepo: &fakeThreadRepo{},
		Resolver:   dedup.NewResolver(tickets, nil),
		Classifier: &fakeClassifier{result: defaultClassification()},
		Matcher:    &fakeMatcher{result: matchResult(0.95)},
		Writer:     fakeWriter{},
	})

	_, err := svc.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.Error(t, err)
	assert.True(t, apperrors.IsDependencyFailure(err))
}

func TestProcessInboundEnrichmentFailureIsNonFatal(t *testing.T) {
	enricher := &fakeEnricher{err: errors.New("enrichment down")}
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.10), nil, enricher)

	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)
	assert.Nil(t, result.Ticket.Enrichment)
}

func TestProcessInboundEnrichmentStored(t *testing.T) {
	enricher := &fakeEnricher{payload: json.RawMessage(`{"company": "Acme"}`)}
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.10), nil, enricher)

	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"company": "Acme"}`, string(result.Ticket.Enrichment))
}

func TestProcessInboundDegradedClassificationStillCreatesTicket(t *testing.T) {
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.10), nil, nil)

	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)
	assert.Equal(t, "General Inquiry", result.Ticket.Classification.Category)
	assert.Equal(t, 0.0, result.Ticket.Classification.ConfidenceScore)
	assert.Equal(t, domain.SeverityP3, result.Ticket.Classification.Severity)
}

func TestProcessInboundValidatesRequiredFields(t *testing.T) {
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.95), nil, nil)

	cases := []InboundMessage{
		{Body: "b", CustomerEmail: "a@x.com"},
		{Subject: "s", CustomerEmail: "a@x.com"},
		{Subject: "s", Body: "b"},
	}
	for _, msg := range cases {
		_, err := fx.service.ProcessInbound(context.Background(), msg)
		require.Error(t, err)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	}
}

func TestProcessInboundDerivesCustomerDomain(t *testing.T) {
	fx := newIntakeFixture(t, defaultClassification(), matchResult(0.10), nil, nil)

	result, err := fx.service.ProcessInbound(context.Background(), inbound("Billing Help"))
	require.NoError(t, err)
	assert.Equal(t, "x.com", result.Ticket.Customer.Domain)
}

func TestGenerateTicketIDUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	now := time.Now()

	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- generateTicketID(now)
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		assert.Regexp(t, `^TKT-\d{13}$`, id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate ticket id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestGenerateTicketIDSortsByCreationOrder(t *testing.T) {
	base := time.Now()
	var prev string
	for i := 0; i < 10; i++ {
		id := generateTicketID(base.Add(time.Duration(i) * time.Millisecond))
		if prev != "" {
			assert.True(t, prev < id, fmt.Sprintf("%s should sort before %s", prev, id))
		}
		prev = id
	}
}
