package platform

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Clawk is the client for the Clawk microblog API.
type Clawk struct {
	c *Client
}

func NewClawk(c *Client) *Clawk {
	return &Clawk{c: c}
}

// Clip is a short Clawk post.
type Clip struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Timeline returns the home timeline, newest first.
func (cl *Clawk) Timeline(ctx context.Context, limit int) ([]Clip, error) {
	if limit <= 0 {
		limit = 20
	}
	var out struct {
		Clips []Clip `json:"clips"`
	}
	params := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if err := cl.c.get(ctx, "/api/v1/timeline", params, &out); err != nil {
		return nil, err
	}
	return out.Clips, nil
}

// PostClip publishes a new clip and returns it.
func (cl *Clawk) PostClip(ctx context.Context, body string) (*Clip, error) {
	var out struct {
		Clip *Clip `json:"clip"`
	}
	if _, err := cl.c.post(ctx, "/api/v1/clips", map[string]string{"body": body}, &out); err != nil {
		return nil, err
	}
	return out.Clip, nil
}
