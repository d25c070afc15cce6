// Package chatwoot is the REST client for the Chatwoot helpdesk platform:
// message posting, typing indicator, and conversation status toggling.
package chatwoot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tmarkell/quotebot/internal/logging"
)

// Config holds the Chatwoot connection settings.
type Config struct {
	BaseURL     string // e.g. https://app.chatwoot.com
	AccessToken string
}

// Statuses accepted by ToggleStatus.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Client talks to the Chatwoot account/conversation-scoped API.
type Client struct {
	cfg  Config
	http *retryablehttp.Client
	log  *logging.Logger
}

// New creates a Chatwoot client with bounded retry on send calls.
func New(cfg Config, log *logging.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 15 * time.Second
	rc.Logger = nil

	return &Client{cfg: cfg, http: rc, log: log.Sub("chatwoot")}
}

// SendMessage posts an outgoing reply to a conversation. echoID lets the
// eligibility filter recognize the bot's own messages on webhook redelivery.
func (c *Client) SendMessage(ctx context.Context, accountID, conversationID int64, content, echoID string) error {
	body := map[string]any{
		"content":      content,
		"message_type": "outgoing",
		"private":      false,
		"echo_id":      echoID,
	}
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%d/conversations/%d/messages",
		c.cfg.BaseURL, accountID, conversationID)
	return c.post(ctx, endpoint, body)
}

// ToggleTyping flips the typing indicator for a conversation.
func (c *Client) ToggleTyping(ctx context.Context, accountID, conversationID int64, on bool) error {
	status := "off"
	if on {
		status = "on"
	}
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%d/conversations/%d/toggle_typing_status",
		c.cfg.BaseURL, accountID, conversationID)
	return c.post(ctx, endpoint, map[string]any{"typing_status": status})
}

// ToggleStatus sets the conversation status (open/resolved).
func (c *Client) ToggleStatus(ctx context.Context, accountID, conversationID int64, status string) error {
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%d/conversations/%d/toggle_status",
		c.cfg.BaseURL, accountID, conversationID)
	return c.post(ctx, endpoint, map[string]any{"status": status})
}

func (c *Client) post(ctx context.Context, endpoint string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_access_token", c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chatwoot API error (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
