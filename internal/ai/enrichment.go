package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// EnrichmentClient calls the best-effort enrichment service. The payload is
// free-form structured data; it is kept as raw JSON and stored verbatim.
// Failures are reported to the caller, who omits enrichment rather than
// failing the operation.
type EnrichmentClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewEnrichmentClient constructs the client. An empty URL disables enrichment.
func NewEnrichmentClient(url string, timeout time.Duration, logger *zap.Logger) *EnrichmentClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type enrichmentRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Enrich returns the raw enrichment payload, or (nil, nil) when enrichment is
// not configured.
func (c *EnrichmentClient) Enrich(ctx context.Context, email, subject, body string) (json.RawMessage, error) {
	if c.url == "" {
		return nil, nil
	}

	payload, err := json.Marshal(enrichmentRequest{Email: email, Subject: subject, Body: body})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("enrichment request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("enrichment service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("enrichment response is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
