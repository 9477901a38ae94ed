package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-intake/internal/domain"
)

// ResponseGenerator produces the gentler framing used for partial matches,
// where the matched solution is probably but not certainly relevant. It is a
// pure function from (inbound text, entry) to text as far as callers are
// concerned: when the LLM is unavailable the fixed suggestion template is
// used instead, and no error escapes.
type ResponseGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewResponseGenerator constructs the generator. An empty API key disables
// the LLM path; every call then uses the template.
func NewResponseGenerator(apiKey, model string, logger *zap.Logger) *ResponseGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &ResponseGenerator{
		model:       model,
		maxTokens:   400,
		temperature: 0.4,
		logger:      logger,
	}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

// GenerateForPartialMatch writes a suggestion that presents the matched
// solution without asserting it resolves the issue.
func (g *ResponseGenerator) GenerateForPartialMatch(ctx context.Context, fullText string, entry *domain.KnowledgeBaseEntry) string {
	if g.client == nil {
		return suggestionTemplate(entry)
	}

	prompt := fmt.Sprintf(`A customer wrote the following support request:

%s

Our knowledge base has a possibly related solution:
Topic: %s
Solution: %s

Write a short, friendly reply that offers this solution as a suggestion, making
clear a human agent will follow up if it does not help. Reply with the message
text only.`, fullText, entry.Topic, entry.Content)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		g.logger.Warn("response generation failed, using template", zap.Error(err))
		return suggestionTemplate(entry)
	}
	if len(resp.Choices) == 0 {
		return suggestionTemplate(entry)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return suggestionTemplate(entry)
	}
	return text
}

func suggestionTemplate(entry *domain.KnowledgeBaseEntry) string {
	return fmt.Sprintf("Suggested solution based on: %s\n\n%s", entry.Topic, entry.Content)
}
