package domain

import "fmt"

// Webhook event names and message types delivered by Chatwoot.
const (
	EventMessageCreated = "message_created"

	MessageTypeIncoming = "incoming"
	MessageTypeOutgoing = "outgoing"
)

// Sender identifies who authored a message.
type Sender struct {
	ID int64 `json:"id"`
}

// Assignee is the human agent a conversation is assigned to, if any.
type Assignee struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// ConversationMeta carries conversation-level metadata from the webhook payload.
type ConversationMeta struct {
	Assignee *Assignee `json:"assignee,omitempty"`
}

// Conversation is the conversation block of a webhook event.
type Conversation struct {
	ID     int64             `json:"id"`
	Sender *Sender           `json:"sender,omitempty"`
	Meta   *ConversationMeta `json:"meta,omitempty"`
}

// Account is the account block of a webhook event.
type Account struct {
	ID int64 `json:"id"`
}

// WebhookEvent is the inbound Chatwoot webhook payload, scoped to the
// fields quotebot inspects.
type WebhookEvent struct {
	Event        string       `json:"event"`
	MessageType  string       `json:"message_type"`
	Content      string       `json:"content"`
	Conversation Conversation `json:"conversation"`
	Account      Account      `json:"account"`
}

// ConversationKey returns the store key for the event's conversation.
func (e WebhookEvent) ConversationKey() string {
	if e.Conversation.ID == 0 {
		return ""
	}
	return fmt.Sprintf("%d", e.Conversation.ID)
}
