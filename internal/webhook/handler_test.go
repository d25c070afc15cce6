package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmarkell/quotebot/internal/agent"
	"github.com/tmarkell/quotebot/internal/domain"
	"github.com/tmarkell/quotebot/internal/logging"
)

type agentFunc func(ctx context.Context, convID, userText string) (string, error)

func (f agentFunc) Run(ctx context.Context, convID, userText string) (string, error) {
	return f(ctx, convID, userText)
}

// fakeMessenger records helpdesk calls in order.
type fakeMessenger struct {
	mu        sync.Mutex
	calls     []string
	sent      []string
	sendErr   error
	lastEcho  string
	lastConv  int64
	lastAcct  int64
	statusSet string
}

func (m *fakeMessenger) SendMessage(ctx context.Context, accountID, conversationID int64, content, echoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "send")
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, content)
	m.lastEcho = echoID
	m.lastAcct = accountID
	m.lastConv = conversationID
	return nil
}

func (m *fakeMessenger) ToggleTyping(ctx context.Context, accountID, conversationID int64, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("typing=%v", on))
	return nil
}

func (m *fakeMessenger) ToggleStatus(ctx context.Context, accountID, conversationID int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "status")
	m.statusSet = status
	return nil
}

func (m *fakeMessenger) snapshot() fakeMessenger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fakeMessenger{
		calls:     append([]string(nil), m.calls...),
		sent:      append([]string(nil), m.sent...),
		lastEcho:  m.lastEcho,
		lastConv:  m.lastConv,
		lastAcct:  m.lastAcct,
		statusSet: m.statusSet,
	}
}

func customerMessage(conv int64, content string) domain.WebhookEvent {
	return domain.WebhookEvent{
		Event:        domain.EventMessageCreated,
		MessageType:  domain.MessageTypeIncoming,
		Content:      content,
		Conversation: domain.Conversation{ID: conv},
		Account:      domain.Account{ID: 7},
	}
}

func newTestHandler(cfg HandlerConfig, ag Agent, chat Messenger) *Handler {
	return NewHandler(cfg, ag, chat, nil, logging.New(nil, "silent"))
}

func post(t *testing.T, h *Handler, ev domain.WebhookEvent) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/chatwoot", bytes.NewReader(body))
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEligibility(t *testing.T) {
	h := newTestHandler(HandlerConfig{BotSenderID: 99}, nil, nil)

	assignee := &domain.Assignee{ID: 5, Name: "Dana"}
	tests := []struct {
		name string
		ev   domain.WebhookEvent
		want bool
	}{
		{"incoming customer message", customerMessage(42, "hi"), true},
		{"wrong event", domain.WebhookEvent{Event: "conversation_updated", MessageType: domain.MessageTypeIncoming}, false},
		{"assigned conversation", domain.WebhookEvent{
			Event:        domain.EventMessageCreated,
			MessageType:  domain.MessageTypeIncoming,
			Conversation: domain.Conversation{ID: 42, Meta: &domain.ConversationMeta{Assignee: assignee}},
		}, false},
		{"outgoing from bot sender", domain.WebhookEvent{
			Event:        domain.EventMessageCreated,
			MessageType:  domain.MessageTypeOutgoing,
			Conversation: domain.Conversation{ID: 42, Sender: &domain.Sender{ID: 99}},
		}, true},
		{"outgoing from human agent", domain.WebhookEvent{
			Event:        domain.EventMessageCreated,
			MessageType:  domain.MessageTypeOutgoing,
			Conversation: domain.Conversation{ID: 42, Sender: &domain.Sender{ID: 12}},
		}, false},
		{"template message type", domain.WebhookEvent{
			Event:       domain.EventMessageCreated,
			MessageType: "template",
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Eligible(tt.ev))
		})
	}
}

func TestDeliveryProducesReply(t *testing.T) {
	chat := &fakeMessenger{}
	ag := agentFunc(func(ctx context.Context, convID, userText string) (string, error) {
		assert.Equal(t, "42", convID)
		assert.Equal(t, "quote my civic", userText)
		return "Happy to help! What year is your Civic?", nil
	})
	h := newTestHandler(HandlerConfig{BotSenderID: 99, TypingIndicator: true, AutoOpen: true}, ag, chat)

	rec := post(t, h, customerMessage(42, "quote my civic"))
	require.Equal(t, http.StatusOK, rec.Code)

	var ack struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.True(t, ack.Success)

	h.Wait()
	got := chat.snapshot()
	assert.Equal(t, []string{"typing=true", "typing=false", "send", "status"}, got.calls)
	require.Len(t, got.sent, 1)
	assert.Equal(t, "Happy to help! What year is your Civic?", got.sent[0])
	assert.Equal(t, "req-1", got.lastEcho)
	assert.Equal(t, int64(7), got.lastAcct)
	assert.Equal(t, int64(42), got.lastConv)
	assert.Equal(t, "open", got.statusSet)
}

func TestIneligibleDeliveryIsAckedAndIgnored(t *testing.T) {
	chat := &fakeMessenger{}
	ag := agentFunc(func(ctx context.Context, convID, userText string) (string, error) {
		t.Fatal("agent must not run for ineligible deliveries")
		return "", nil
	})
	h := newTestHandler(HandlerConfig{BotSenderID: 99}, ag, chat)

	ev := customerMessage(42, "hi")
	ev.Conversation.Meta = &domain.ConversationMeta{Assignee: &domain.Assignee{ID: 5}}
	rec := post(t, h, ev)

	require.Equal(t, http.StatusOK, rec.Code)
	h.Wait()
	assert.Empty(t, chat.snapshot().calls)
}

func TestUndecodablePayload(t *testing.T) {
	h := newTestHandler(HandlerConfig{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chatwoot", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid payload")
}

func TestToolLoopExceededSendsFallback(t *testing.T) {
	chat := &fakeMessenger{}
	ag := agentFunc(func(ctx context.Context, convID, userText string) (string, error) {
		return "", agent.ErrToolLoopExceeded
	})
	h := newTestHandler(HandlerConfig{BotSenderID: 99}, ag, chat)

	post(t, h, customerMessage(42, "loop"))
	h.Wait()

	got := chat.snapshot()
	require.Len(t, got.sent, 1)
	assert.Equal(t, fallbackReply, got.sent[0])
}

func TestAgentFailureSendsNothing(t *testing.T) {
	chat := &fakeMessenger{}
	ag := agentFunc(func(ctx context.Context, convID, userText string) (string, error) {
		return "", fmt.Errorf("completion backend: 503")
	})
	h := newTestHandler(HandlerConfig{BotSenderID: 99}, ag, chat)

	rec := post(t, h, customerMessage(42, "hello"))
	require.Equal(t, http.StatusOK, rec.Code, "failures stay behind the ack")
	h.Wait()
	assert.Empty(t, chat.snapshot().sent)
}
