// Package agent implements the tool-calling orchestration loop and the
// dispatcher that executes model-requested tools against the quoting backend.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmarkell/quotebot/internal/convo"
	"github.com/tmarkell/quotebot/internal/domain"
	"github.com/tmarkell/quotebot/internal/llm"
	"github.com/tmarkell/quotebot/internal/logging"
)

// maxToolRounds bounds how many completion/tool rounds one request may take.
// Exceeding it aborts the request; the webhook handler sends a fallback reply.
const maxToolRounds = 8

// ErrToolLoopExceeded is returned when the backend keeps requesting tools
// past the round cap.
var ErrToolLoopExceeded = errors.New("tool loop exceeded maximum rounds")

// Config holds the sampling parameters and instruction text for the loop.
type Config struct {
	Model        string
	MaxTokens    int
	Temperature  *float64
	SystemPrompt string
}

// Runner drives one inbound message through the completion backend until the
// backend returns a plain answer with no further tool requests.
type Runner struct {
	cfg        Config
	client     llm.Client
	store      *convo.Store
	dispatcher *Dispatcher
	log        *logging.Logger
}

// NewRunner creates an orchestration loop runner.
func NewRunner(cfg Config, client llm.Client, store *convo.Store, dispatcher *Dispatcher, log *logging.Logger) *Runner {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &Runner{
		cfg:        cfg,
		client:     client,
		store:      store,
		dispatcher: dispatcher,
		log:        log.Sub("agent"),
	}
}

// Run processes one user message for a conversation and returns the final
// reply text. Operations for the same conversation are serialized; different
// conversations run in parallel.
//
// A failed tool call does not abort the loop - its structured error payload
// is fed back to the backend, which reacts conversationally. A failure of
// the completion call itself is fatal for the request.
func (r *Runner) Run(ctx context.Context, convID, userText string) (string, error) {
	start := time.Now()

	unlock := r.store.Lock(convID)
	defer unlock()

	history := r.store.History(convID)
	r.log.Info().
		Str("conversation", convID).
		Int("historyLen", len(history)).
		Msg("processing message")

	// Instruction turn, replayed history verbatim, then the new user turn.
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: r.cfg.SystemPrompt})
	for _, t := range history {
		msgs = append(msgs, turnToMessage(t))
	}

	userTurn := domain.UserTurn(userText)
	msgs = append(msgs, turnToMessage(userTurn))
	r.store.Append(convID, userTurn)

	catalog := r.dispatcher.Catalog()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := r.client.Complete(ctx, llm.ChatRequest{
			Model:       r.cfg.Model,
			Messages:    msgs,
			Tools:       catalog,
			MaxTokens:   r.cfg.MaxTokens,
			Temperature: r.cfg.Temperature,
		})
		if err != nil {
			return "", fmt.Errorf("completion backend: %w", err)
		}

		if len(resp.Message.ToolCalls) == 0 {
			r.store.Append(convID, domain.AssistantTurn(resp.Message.Content, nil))
			r.log.Info().
				Str("conversation", convID).
				Int("rounds", round+1).
				Int("inputTokens", resp.Usage.InputTokens).
				Int("outputTokens", resp.Usage.OutputTokens).
				Dur("duration", time.Since(start)).
				Msg("reply generated")
			return resp.Message.Content, nil
		}

		r.log.Info().
			Str("conversation", convID).
			Int("toolCalls", len(resp.Message.ToolCalls)).
			Msg("executing tool calls")

		calls := make([]domain.ToolCall, 0, len(resp.Message.ToolCalls))
		for _, tc := range resp.Message.ToolCalls {
			calls = append(calls, domain.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: []byte(tc.Arguments)})
		}

		// Persist the assistant turn with its call list (content may be
		// empty), then one tool-result turn per call, into both the store
		// and the working sequence.
		assistantTurn := domain.AssistantTurn(resp.Message.Content, calls)
		r.store.Append(convID, assistantTurn)
		msgs = append(msgs, turnToMessage(assistantTurn))

		for _, call := range calls {
			result := r.dispatcher.Dispatch(ctx, convID, call)
			if result.Failed() {
				r.log.Warn().
					Str("conversation", convID).
					Str("tool", call.Name).
					Str("kind", result.ErrKind()).
					Msg("tool call failed")
			}
			toolTurn := domain.ToolTurn(call, result.JSON())
			r.store.Append(convID, toolTurn)
			msgs = append(msgs, turnToMessage(toolTurn))
		}
	}

	r.log.Error().
		Str("conversation", convID).
		Int("rounds", maxToolRounds).
		Msg("aborting request: backend kept requesting tools")
	return "", ErrToolLoopExceeded
}

// turnToMessage maps a stored turn to the completion-backend wire shape,
// preserving tool-call / tool-result linkage.
func turnToMessage(t domain.Turn) llm.Message {
	msg := llm.Message{
		Role:       t.Role,
		Content:    t.Content,
		ToolCallID: t.ToolCallID,
		Name:       t.ToolName,
	}
	for _, tc := range t.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Name,
			Arguments: string(tc.Arguments),
		})
	}
	return msg
}
