// Package llm defines the completion-backend client interface and the
// OpenAI-compatible HTTP implementation quotebot uses.
package llm

import (
	"context"
	"time"
)

// Role constants for messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single turn in the sequence replayed to the backend.
// Assistant messages may carry tool calls; tool messages answer one call
// and carry its id and tool name.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is the backend's request to invoke a tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolDefinition declares a tool in the catalog sent to the backend.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"` // JSON Schema string
}

// ChatRequest is the input to a Complete call.
type ChatRequest struct {
	Model       string           `json:"model,omitempty"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// ChatResponse is one assistant message plus metadata.
type ChatResponse struct {
	Message  Message       `json:"message"`
	Model    string        `json:"model,omitempty"`
	Usage    Usage         `json:"usage"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Client is the interface the orchestration loop depends on.
type Client interface {
	// Complete sends the message sequence and tool catalog and returns the
	// backend's next assistant message.
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Name returns the provider name (e.g. "openai").
	Name() string
}
