package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Mailer sends outbound email. Fire-and-forget from the pipeline's
// perspective: errors surface to the caller but are never retried here.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// WebhookMailer delivers mail by posting to a relay webhook (the actual SMTP
// hop lives behind it).
type WebhookMailer struct {
	url    string
	from   string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookMailer constructs the mailer. An empty URL yields a mailer that
// only logs, which keeps local development working without a relay.
func NewWebhookMailer(url, from string, timeout time.Duration, logger *zap.Logger) *WebhookMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookMailer{
		url:    url,
		from:   from,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type outboundEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send delivers one message.
func (m *WebhookMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.url == "" {
		m.logger.Info("email relay not configured, dropping message",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	payload, err := json.Marshal(outboundEmail{From: m.from, To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("email relay returned status %d", resp.StatusCode)
	}
	return nil
}
