package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// defaultSLA is the response window reported when classification degrades.
const defaultSLA = "24 Hours"

// ClassifierClient calls the external classification service and normalizes
// its response into the internal schema. Classification failures never block
// ticket creation: any timeout, transport error, or malformed payload yields
// the safe default classification, labeled truthfully with confidence 0.
type ClassifierClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewClassifierClient constructs the client.
func NewClassifierClient(url string, timeout time.Duration, logger *zap.Logger) *ClassifierClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassifierClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type classifyRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// classifyResponse uses pointers so that absent fields are distinguishable
// from zero values; upstream schema evolution makes partial payloads legal.
type classifyResponse struct {
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
	Severity   *string  `json:"severity"`
	SLA        *string  `json:"sla"`
	Sentiment  *string  `json:"sentiment"`
	Flags      *struct {
		IsYelling            *bool `json:"is_yelling"`
		IsFollowup           *bool `json:"is_followup"`
		HasUrgentPunctuation *bool `json:"has_urgent_punctuation"`
	} `json:"flags"`
}

// DefaultClassification is the fail-safe result used when the classifier is
// unreachable or returns garbage.
func DefaultClassification() domain.Classification {
	return domain.Classification{
		Category:        "General Inquiry",
		ConfidenceScore: 0,
		Severity:        domain.SeverityP3,
		SLA:             defaultSLA,
		Sentiment:       "Neutral",
	}
}

// Classify returns the normalized classification for an inbound message.
// It never returns an error.
func (c *ClassifierClient) Classify(ctx context.Context, subject, body string) domain.Classification {
	payload, err := json.Marshal(classifyRequest{Subject: subject, Body: body})
	if err != nil {
		return DefaultClassification()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return DefaultClassification()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("classifier unreachable, using defaults", zap.Error(err))
		return DefaultClassification()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("classifier rejected request, using defaults", zap.Int("status", resp.StatusCode))
		return DefaultClassification()
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warn("classifier response malformed, using defaults", zap.Error(err))
		return DefaultClassification()
	}
	return normalizeClassification(parsed)
}

// normalizeClassification applies per-field defaults so the rest of the
// pipeline never re-implements default logic.
func normalizeClassification(payload classifyResponse) domain.Classification {
	result := DefaultClassification()

	if payload.Category != nil && *payload.Category != "" {
		result.Category = *payload.Category
	}
	if payload.Confidence != nil {
		result.ConfidenceScore = *payload.Confidence
	}
	if payload.Severity != nil {
		switch sev := domain.Severity(*payload.Severity); sev {
		case domain.SeverityP1, domain.SeverityP2, domain.SeverityP3, domain.SeverityP4:
			result.Severity = sev
		}
	}
	if payload.SLA != nil && *payload.SLA != "" {
		result.SLA = *payload.SLA
	}
	if payload.Sentiment != nil && *payload.Sentiment != "" {
		result.Sentiment = *payload.Sentiment
	}
	if payload.Flags != nil {
		if payload.Flags.IsYelling != nil {
			result.Flags.IsYelling = *payload.Flags.IsYelling
		}
		if payload.Flags.IsFollowup != nil {
			result.Flags.IsFollowup = *payload.Flags.IsFollowup
		}
		if payload.Flags.HasUrgentPunctuation != nil {
			result.Flags.HasUrgentPunctuation = *payload.Flags.HasUrgentPunctuation
		}
	}
	return result
}
