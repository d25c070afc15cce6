package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/tmarkell/quotebot/internal/agent"
	"github.com/tmarkell/quotebot/internal/domain"
	"github.com/tmarkell/quotebot/internal/logging"
	"github.com/tmarkell/quotebot/internal/translog"
)

// replyTimeout bounds the background processing of one delivery, covering
// the whole completion/tool loop plus the outbound send.
const replyTimeout = 5 * time.Minute

// fallbackReply is sent when the request had to be aborted.
const fallbackReply = "I'm sorry, I ran into a problem handling that. Could you rephrase or try again in a moment?"

// Agent produces a reply for one inbound message. *agent.Runner satisfies it.
type Agent interface {
	Run(ctx context.Context, convID, userText string) (string, error)
}

// Messenger is the slice of the helpdesk API the handler uses to respond.
// *chatwoot.Client satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, accountID, conversationID int64, content, echoID string) error
	ToggleTyping(ctx context.Context, accountID, conversationID int64, on bool) error
	ToggleStatus(ctx context.Context, accountID, conversationID int64, status string) error
}

// HandlerConfig controls delivery filtering and reply behavior.
type HandlerConfig struct {
	// BotSenderID is the helpdesk agent-bot sender id. Outgoing messages from
	// this sender are treated as bot turns rather than human-agent replies.
	BotSenderID int64
	// AutoOpen re-opens the conversation after each bot reply.
	AutoOpen bool
	// TypingIndicator toggles the typing status around processing.
	TypingIndicator bool
}

// Handler validates webhook deliveries, acknowledges them immediately and
// processes eligible ones in the background.
type Handler struct {
	cfg   HandlerConfig
	agent Agent
	chat  Messenger
	trans *translog.Writer
	log   *logging.Logger

	// wg tracks in-flight background deliveries so tests can drain them.
	wg sync.WaitGroup
}

// NewHandler creates a webhook delivery handler.
func NewHandler(cfg HandlerConfig, ag Agent, chat Messenger, trans *translog.Writer, log *logging.Logger) *Handler {
	return &Handler{
		cfg:   cfg,
		agent: ag,
		chat:  chat,
		trans: trans,
		log:   log.Sub("handler"),
	}
}

// Eligible reports whether a delivery should produce a bot reply: a created
// message that is either a customer message or an agent-bot echo, in a
// conversation with no human assignee.
func (h *Handler) Eligible(ev domain.WebhookEvent) bool {
	if ev.Event != domain.EventMessageCreated {
		return false
	}
	if ev.Conversation.Meta != nil && ev.Conversation.Meta.Assignee != nil {
		return false
	}
	switch ev.MessageType {
	case domain.MessageTypeIncoming:
		return true
	case domain.MessageTypeOutgoing:
		return ev.Conversation.Sender != nil && ev.Conversation.Sender.ID == h.cfg.BotSenderID
	default:
		return false
	}
}

// ServeHTTP decodes one webhook delivery, acks it with 200 and hands eligible
// deliveries to a background goroutine. The helpdesk retries non-2xx
// responses, so every decodable delivery is acknowledged.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var ev domain.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.log.Warn().Err(err).Msg("undecodable webhook payload")
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "invalid payload",
		})
		return
	}

	requestID := r.Header.Get("X-Request-ID")

	if !h.Eligible(ev) {
		h.log.Debug().
			Str("event", ev.Event).
			Str("messageType", ev.MessageType).
			Msg("ignoring webhook delivery")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "ignored",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "processing",
	})

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.process(ev, requestID)
	}()
}

// Wait blocks until all in-flight deliveries are done.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// process runs one eligible delivery through the agent and replies in the
// source conversation. Everything here is best-effort except the reply
// itself; a failed reply is logged and dropped, the helpdesk has already
// been acked.
func (h *Handler) process(ev domain.WebhookEvent, requestID string) {
	start := time.Now()
	convID := ev.ConversationKey()
	accountID := ev.Account.ID
	conversationID := ev.Conversation.ID

	log := h.log.Sub("delivery")
	log.Info().
		Str("requestId", requestID).
		Str("conversation", convID).
		Msg("processing webhook delivery")

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	if h.cfg.TypingIndicator {
		if err := h.chat.ToggleTyping(ctx, accountID, conversationID, true); err != nil {
			log.Warn().Err(err).Msg("typing on failed")
		}
	}

	reply, err := h.agent.Run(ctx, convID, ev.Content)
	if err != nil {
		log.Error().Err(err).Str("conversation", convID).Msg("agent run failed")
		if errors.Is(err, agent.ErrToolLoopExceeded) {
			reply = fallbackReply
		}
	}

	if h.cfg.TypingIndicator {
		if err := h.chat.ToggleTyping(ctx, accountID, conversationID, false); err != nil {
			log.Warn().Err(err).Msg("typing off failed")
		}
	}

	if reply == "" {
		return
	}

	if err := h.chat.SendMessage(ctx, accountID, conversationID, reply, requestID); err != nil {
		log.Error().Err(err).Str("conversation", convID).Msg("sending reply failed")
		return
	}

	if h.cfg.AutoOpen {
		if err := h.chat.ToggleStatus(ctx, accountID, conversationID, "open"); err != nil {
			log.Warn().Err(err).Msg("re-opening conversation failed")
		}
	}

	if h.trans != nil {
		h.trans.Append(translog.Record{
			Timestamp:        start,
			RequestID:        requestID,
			ConversationID:   convID,
			UserMessage:      ev.Content,
			AIResponse:       reply,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		})
	}

	log.Info().
		Str("requestId", requestID).
		Str("conversation", convID).
		Dur("duration", time.Since(start)).
		Msg("reply delivered")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
