// Package assistant drives the hosted OpenAI Assistants API for one user
// conversation: it creates an assistant and a thread, submits user messages,
// polls runs to completion and extracts the assistant's reply.
package assistant

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// API captures the subset of the OpenAI client used by this package.
type API interface {
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// Ensure the real client implements the API interface.
var _ API = (*openai.Client)(nil)

// NewClient creates an OpenAI client for the given API key.
func NewClient(apiKey string) *openai.Client {
	return openai.NewClient(apiKey)
}
