package chat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveTemperatureSurvivesSerialization(t *testing.T) {
	req := openai.ChatCompletionRequest{
		Model:       "gpt-4o-mini",
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "q"}},
		Temperature: effectiveTemperature(0),
		MaxTokens:   512,
	}

	payload, err := json.Marshal(req)
	require.NoError(t, err)

	// a literal 0 would be dropped by omitempty and the provider default
	// would apply; the mapped value must reach the wire
	assert.Contains(t, string(payload), `"temperature":`)
}

func TestEffectiveTemperature(t *testing.T) {
	mapped := effectiveTemperature(0)
	assert.Greater(t, mapped, float32(0))
	assert.Less(t, mapped, float32(1e-37))

	// non-zero values pass through untouched
	assert.Equal(t, float32(0.7), effectiveTemperature(0.7))
	assert.Equal(t, float32(1), effectiveTemperature(1))
}

func TestIsTokenLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{
			name: "api error code",
			err:  &openai.APIError{Code: "context_length_exceeded", Message: "too long"},
			want: true,
		},
		{
			name: "wrapped api error",
			err:  errors.Join(errors.New("outer"), &openai.APIError{Code: "context_length_exceeded"}),
			want: true,
		},
		{
			name: "message mentions maximum context length",
			err:  errors.New("This model's maximum context length is 128000 tokens"),
			want: true,
		},
		{
			name: "message mentions token limit",
			err:  errors.New("request exceeds the token limit"),
			want: true,
		},
		{
			name: "unrelated failure",
			err:  errors.New("connection reset by peer"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTokenLimitError(tt.err))
		})
	}
}
