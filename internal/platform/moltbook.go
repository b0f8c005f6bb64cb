package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kitfox/den/internal/apperr"
)

// Moltbook is the client for the Moltbook forum API. Comment creation is
// gated by the "lobster challenge": the first POST answers 202 with an
// arithmetic word-problem captcha, and the comment is only accepted once
// the verify call carries the right number.
type Moltbook struct {
	c      *Client
	solver Solver
}

// Solver answers a captcha challenge prompt with a number.
type Solver func(prompt string) (int64, error)

// NewMoltbook wraps a base client. solver is consulted whenever comment
// creation hits the captcha gate.
func NewMoltbook(c *Client, solver Solver) *Moltbook {
	return &Moltbook{c: c, solver: solver}
}

// Post is a Moltbook post.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a comment on a Moltbook post.
type Comment struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	Body   string `json:"body"`
}

// Challenge is a lobster-challenge captcha attached to a gated action.
type Challenge struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// ListPosts returns the newest posts, up to limit.
func (m *Moltbook) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 20
	}
	var out struct {
		Posts []Post `json:"posts"`
	}
	params := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if err := m.c.get(ctx, "/api/v1/posts", params, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// GetPost fetches a single post.
func (m *Moltbook) GetPost(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := m.c.get(ctx, "/api/v1/posts/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// commentResponse is the union shape of the comment endpoint: either the
// created comment or a pending captcha challenge.
type commentResponse struct {
	Comment   *Comment   `json:"comment,omitempty"`
	Challenge *Challenge `json:"challenge,omitempty"`
}

// CreateComment posts a comment, solving the captcha gate when challenged.
// The full submit-solve-verify flow is attempted twice before giving up:
// the old workspace scripts retried exactly once and that was enough for
// challenges whose obfuscation tripped the first parse.
func (m *Moltbook) CreateComment(ctx context.Context, postID, body string) (*Comment, error) {
	const attempts = 2
	var lastErr error
	for i := 0; i < attempts; i++ {
		c, err := m.tryComment(ctx, postID, body)
		if err == nil {
			return c, nil
		}
		lastErr = err
		if !retryableCommentErr(err) {
			return nil, err
		}
		m.c.logger.Warn("comment attempt failed, retrying",
			slog.String("post_id", postID),
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	return nil, lastErr
}

func (m *Moltbook) tryComment(ctx context.Context, postID, body string) (*Comment, error) {
	var resp commentResponse
	status, err := m.c.post(ctx, "/api/v1/posts/"+url.PathEscape(postID)+"/comments",
		map[string]string{"body": body}, &resp)
	if err != nil {
		return nil, err
	}

	if status != http.StatusAccepted {
		if resp.Comment == nil {
			return nil, fmt.Errorf("moltbook: comment response missing comment")
		}
		return resp.Comment, nil
	}

	// Captcha gate.
	if resp.Challenge == nil {
		return nil, fmt.Errorf("moltbook: challenge response missing challenge")
	}
	if m.solver == nil {
		return nil, fmt.Errorf("%w: no solver configured", apperr.ErrCaptchaFailed)
	}
	answer, err := m.solver(resp.Challenge.Prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCaptchaFailed, err)
	}
	m.c.logger.Debug("captcha solved",
		slog.String("challenge_id", resp.Challenge.ID),
		slog.Int64("answer", answer))

	var verified struct {
		Comment *Comment `json:"comment"`
	}
	_, err = m.c.post(ctx, "/api/v1/captcha/"+url.PathEscape(resp.Challenge.ID)+"/verify",
		map[string]any{"answer": answer}, &verified)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && pe.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: challenge %s rejected answer %d", apperr.ErrCaptchaFailed, resp.Challenge.ID, answer)
		}
		return nil, err
	}
	if verified.Comment == nil {
		return nil, fmt.Errorf("moltbook: verify response missing comment")
	}
	return verified.Comment, nil
}

// retryableCommentErr reports whether the whole comment flow is worth one
// more pass. Captcha rejections are (a fresh challenge may parse cleanly);
// rate limits and hard API errors are not.
func retryableCommentErr(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.StatusCode >= 500
	}
	return errors.Is(err, apperr.ErrCaptchaFailed)
}
