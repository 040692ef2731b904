package chat

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Completer is the language-model seam of the pipeline. Implementations
// must surface token-limit failures in a way IsTokenLimitError can
// detect.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32, maxTokens int) (string, error)
}

// OpenAICompleter adapts a go-openai client.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter wraps the given client. model defaults to
// gpt-4o-mini when empty.
func NewOpenAICompleter(client *openai.Client, model string) *OpenAICompleter {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAICompleter{client: client, model: model}
}

// effectiveTemperature keeps a zero temperature on the wire. The request
// field is declared omitempty, so a literal 0 vanishes from the payload
// and the provider default (1) applies instead; the smallest positive
// float32 serializes while keeping sampling greedy.
func effectiveTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: effectiveTemperature(temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// IsTokenLimitError reports whether a provider failure indicates an
// oversized context rather than a generic outage.
func IsTokenLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "maximum context length") ||
		strings.Contains(msg, "token limit")
}
