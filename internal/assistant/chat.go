package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/MariaBraganca/immobyte/internal/domain"
)

// Fixed user-facing fallback replies. Remote error detail is only ever
// logged server-side, never shown to the end user.
const (
	ProcessFailedReply = "Immobyte's Assistant failed to process a response. Please try again later."
	ParseFailedReply   = "Immobyte's Assistant failed to parse a response. Please try again later."
)

// Options configures a new chat.
type Options struct {
	Name         string
	Model        string
	Instructions string
	Poll         PollSettings
}

// PollSettings bounds the run-completion polling loop.
type PollSettings struct {
	MaxRetries   int
	BaseInterval time.Duration
	Multiplier   int
	Cap          time.Duration
}

// Chat is one assisted user conversation. It owns one remote assistant and
// one thread for the lifetime of one connection and is never shared.
type Chat struct {
	api         API
	user        domain.User
	assistantID string
	threadID    string
	opts        Options
}

// NewChat creates the remote assistant and conversation thread for a user.
// It fails immediately when either creation call does not succeed, since a
// chat is useless without both.
func NewChat(ctx context.Context, api API, user domain.User, opts Options) (*Chat, error) {
	asst, ok := guard("create assistant", func() (openai.Assistant, error) {
		return api.CreateAssistant(ctx, openai.AssistantRequest{
			Name:         &opts.Name,
			Instructions: &opts.Instructions,
			Tools:        []openai.AssistantTool{{Type: openai.AssistantToolTypeCodeInterpreter}},
			Model:        opts.Model,
		})
	})
	if !ok {
		return nil, errors.New("assistant unavailable")
	}

	thread, ok := guard("create thread", func() (openai.Thread, error) {
		return api.CreateThread(ctx, openai.ThreadRequest{})
	})
	if !ok {
		return nil, errors.New("thread unavailable")
	}

	return &Chat{
		api:         api,
		user:        user,
		assistantID: asst.ID,
		threadID:    thread.ID,
		opts:        opts,
	}, nil
}

// Call submits a user message and resolves it to a reply. Every failure path
// resolves to one of the fixed fallback replies; Call never returns an error.
func (c *Chat) Call(ctx context.Context, content string) string {
	c.addUserMessage(ctx, content)

	run, ok := c.runAssistant(ctx)
	if !ok {
		log.Printf("unable to process assistant's response")
		return ProcessFailedReply
	}

	if !c.waitForRun(ctx, run.ID) {
		return ProcessFailedReply
	}

	reply, ok := c.parseReply(ctx)
	if !ok {
		return ParseFailedReply
	}
	return reply
}

// addUserMessage appends the user's message to the thread.
func (c *Chat) addUserMessage(ctx context.Context, content string) {
	guard("create thread message", func() (openai.Message, error) {
		return c.api.CreateMessage(ctx, c.threadID, openai.MessageRequest{
			Role:    openai.ChatMessageRoleUser,
			Content: content,
		})
	})
}

// runAssistant triggers a processing run on the thread.
func (c *Chat) runAssistant(ctx context.Context) (openai.Run, bool) {
	return guard("create run", func() (openai.Run, error) {
		return c.api.CreateRun(ctx, c.threadID, openai.RunRequest{
			AssistantID:  c.assistantID,
			Instructions: fmt.Sprintf("Please address the user as %s.", c.user.Username),
		})
	})
}

// waitForRun polls the run until it reaches the completed status, retrying
// with exponential backoff. A fetch that fails or comes back without a status
// is inconclusive: it is logged and consumes a normal attempt. Returns false
// once the attempt budget is exhausted or the context is cancelled.
func (c *Chat) waitForRun(ctx context.Context, runID string) bool {
	for attempt := 0; attempt <= c.opts.Poll.MaxRetries; attempt++ {
		run, ok := guard("retrieve run", func() (openai.Run, error) {
			return c.api.RetrieveRun(ctx, c.threadID, runID)
		})
		if !ok || run.Status == "" {
			log.Printf("unable to check run status")
		} else if run.Status == openai.RunStatusCompleted {
			return true
		}

		if !sleep(ctx, backoffInterval(c.opts.Poll, attempt)) {
			return false
		}
	}

	log.Printf("reached maximum retries to check run status")
	return false
}

// parseReply reads the thread messages and extracts the latest reply text,
// tolerating malformed or empty shapes.
func (c *Chat) parseReply(ctx context.Context) (string, bool) {
	list, ok := guard("list thread messages", func() (openai.MessagesList, error) {
		return c.api.ListMessage(ctx, c.threadID, nil, nil, nil, nil, nil)
	})
	if !ok {
		log.Printf("unable to read thread messages")
		return "", false
	}

	if len(list.Messages) == 0 || len(list.Messages[0].Content) == 0 || list.Messages[0].Content[0].Text == nil {
		log.Printf("unexpected thread message structure")
		return "", false
	}
	return list.Messages[0].Content[0].Text.Value, true
}

// backoffInterval returns min(base * multiplier^attempt, cap).
func backoffInterval(p PollSettings, attempt int) time.Duration {
	interval := p.BaseInterval
	for i := 0; i < attempt; i++ {
		interval *= time.Duration(p.Multiplier)
		if interval >= p.Cap {
			return p.Cap
		}
	}
	if interval > p.Cap {
		return p.Cap
	}
	return interval
}

// sleep waits for the given interval unless the context is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
