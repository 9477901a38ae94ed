package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// Embedder turns text into a fixed-length vector for similarity comparison.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbeddingClient calls the external embedding service. A non-2xx response or
// a payload without an embedding field is a dependency failure: the matcher
// cannot run without a query vector.
type EmbeddingClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewEmbeddingClient constructs the client.
func NewEmbeddingClient(url string, timeout time.Duration, logger *zap.Logger) *EmbeddingClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmbeddingClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type embeddingRequest struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed requests a vector for the given text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	payload, err := json.Marshal(embeddingRequest{Text: text})
	if err != nil {
		return nil, apperrors.NewDependencyFailure("embedding service", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewDependencyFailure("embedding service", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("embedding request failed", zap.Error(err))
		return nil, apperrors.NewDependencyFailure("embedding service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("embedding service returned status %d", resp.StatusCode)
		c.logger.Warn("embedding request rejected", zap.Int("status", resp.StatusCode))
		return nil, apperrors.NewDependencyFailure("embedding service", err)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewDependencyFailure("embedding service", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, apperrors.NewDependencyFailure("embedding service", fmt.Errorf("response missing embedding field"))
	}
	return parsed.Embedding, nil
}
