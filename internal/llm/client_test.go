package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		FinishReason: genai.FinishReasonStop,
		Content:      &genai.Content{Parts: []genai.Part{genai.Text(`{"fit_score": `), genai.Text(`80}`)}},
	}}}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"fit_score": 80}`, text)
}

func TestResponseText_Unusable(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		message string
	}{
		{"nil", nil, "no candidates"},
		{"blocked prompt", &genai.GenerateContentResponse{
			PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
		}, "prompt blocked"},
		{"truncated", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonMaxTokens,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text(`{"tailored_latex": "\\documentclass`)}},
		}}}, "truncated at the output token limit"},
		{"empty content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonSafety,
		}}}, "no content in response"},
		{"no text parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
		}}}, "no text parts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responseText(tt.resp)
			var respErr *ResponseError
			require.True(t, errors.As(err, &respErr))
			assert.Contains(t, respErr.Message, tt.message)
			assert.False(t, IsTransient(err))
		})
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "", nil)
	assert.ErrorContains(t, err, "API key is required")
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "openai"}, "key", nil)
	assert.ErrorContains(t, err, `unsupported LLM provider "openai"`)
}
