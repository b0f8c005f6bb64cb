package platform

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// AgentMail is the client for the AgentMail message relay API.
type AgentMail struct {
	c *Client
}

func NewAgentMail(c *Client) *AgentMail {
	return &AgentMail{c: c}
}

// Message is a relay message. Body is empty in inbox listings and only
// populated by ReadMessage.
type Message struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body,omitempty"`
	Unread  bool      `json:"unread"`
	SentAt  time.Time `json:"sent_at"`
}

// Inbox lists messages, newest first. unreadOnly narrows to unread ones.
func (a *AgentMail) Inbox(ctx context.Context, limit int, unreadOnly bool) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if unreadOnly {
		params.Set("unread", "true")
	}
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := a.c.get(ctx, "/api/v1/inbox", params, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// ReadMessage fetches a full message and marks it read server-side.
func (a *AgentMail) ReadMessage(ctx context.Context, id string) (*Message, error) {
	var m Message
	if err := a.c.get(ctx, "/api/v1/messages/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Send delivers a message and returns it with its assigned ID.
func (a *AgentMail) Send(ctx context.Context, to, subject, body string) (*Message, error) {
	var out struct {
		Message *Message `json:"message"`
	}
	payload := map[string]string{"to": to, "subject": subject, "body": body}
	if _, err := a.c.post(ctx, "/api/v1/messages", payload, &out); err != nil {
		return nil, err
	}
	return out.Message, nil
}
