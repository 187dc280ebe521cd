package oracle

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"doc-qa-agent/internal/models"
)

// OpenAI is a Completer backed by the OpenAI chat completion API (or any
// compatible endpoint via BaseURL).
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed completer. An empty baseURL uses the
// default API endpoint; an empty model falls back to GPT-4 Turbo.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4TurboPreview
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete issues one chat completion with the system instructions, prior
// conversation turns, and the current user message.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
