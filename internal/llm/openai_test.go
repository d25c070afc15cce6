package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompletePlainAnswer(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "cmpl-1",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4}
		}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", srv.URL)
	temp := 0.7
	resp, err := c.Complete(context.Background(), ChatRequest{
		Model:       "gpt-4o-mini",
		Messages:    []Message{{Role: RoleSystem, Content: "be nice"}, {Role: RoleUser, Content: "hi"}},
		Tools:       []ToolDefinition{{Name: "get_vehicle_makes", Description: "makes", Parameters: `{"type":"object"}`}},
		Temperature: &temp,
		MaxTokens:   500,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello!", resp.Message.Content)
	assert.Empty(t, resp.Message.ToolCalls)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 4, resp.Usage.OutputTokens)

	// Request wire shape: tools declared with auto tool choice.
	assert.Equal(t, "auto", gotBody["tool_choice"])
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	tools := gotBody["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "get_vehicle_makes", fn["name"])
}

func TestOpenAICompleteToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"model": "gpt-4o-mini",
			"choices": [{"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{"id": "call_1", "type": "function",
					"function": {"name": "get_vehicle_makes", "arguments": "{\"year\":\"2023\"}"}}]
			}, "finish_reason": "tool_calls"}],
			"usage": {"prompt_tokens": 30, "completion_tokens": 8}
		}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL)
	resp, err := c.Complete(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "2023 honda"}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Message.ToolCalls, 1)
	call := resp.Message.ToolCalls[0]
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "get_vehicle_makes", call.Name)
	assert.JSONEq(t, `{"year":"2023"}`, call.Arguments)
}

func TestOpenAICompleteReplaysToolLinkage(t *testing.T) {
	var gotBody openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}],"usage":{}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL)
	_, err := c.Complete(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_9", Name: "get_vehicle_models", Arguments: `{"year":"2023","make":"Honda"}`}}},
			{Role: RoleTool, Content: `{"models":["Civic"]}`, ToolCallID: "call_9", Name: "get_vehicle_models"},
		},
	})
	require.NoError(t, err)

	require.Len(t, gotBody.Messages, 2)
	require.Len(t, gotBody.Messages[0].ToolCalls, 1)
	assert.Equal(t, "call_9", gotBody.Messages[0].ToolCalls[0].ID)
	assert.Equal(t, "function", gotBody.Messages[0].ToolCalls[0].Type)
	assert.Equal(t, "call_9", gotBody.Messages[1].ToolCallID)
	assert.Equal(t, "get_vehicle_models", gotBody.Messages[1].Name)
}

func TestOpenAICompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL)
	_, err := c.Complete(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
