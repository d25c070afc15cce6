// Package domain holds the core conversation types shared across quotebot.
package domain

import (
	"encoding/json"
	"time"
)

// Role constants for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model-issued request to invoke a named tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Turn is one unit in a conversation's replay sequence: a user message,
// an assistant message (optionally carrying tool calls), or a tool result.
//
// A tool-result turn carries the ToolCallID and ToolName of the call it
// answers; the call id must have been emitted by the immediately preceding
// assistant turn.
type Turn struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	ToolName   string     `json:"toolName,omitempty"`
}

// UserTurn builds a user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// AssistantTurn builds an assistant turn. calls may be nil for a plain reply.
func AssistantTurn(content string, calls []ToolCall) Turn {
	return Turn{Role: RoleAssistant, Content: content, Timestamp: time.Now(), ToolCalls: calls}
}

// ToolTurn builds a tool-result turn answering the given call.
func ToolTurn(call ToolCall, payload string) Turn {
	return Turn{
		Role:       RoleTool,
		Content:    payload,
		Timestamp:  time.Now(),
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}
}
