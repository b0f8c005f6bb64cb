// Package heartbeat runs the recurring engagement cycle: sync the index,
// probe platforms, check mail, look for fresh posts, comment where the
// persona has not yet, and journal a summary.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kitfox/den/internal/models"
	"github.com/kitfox/den/internal/persona"
	"github.com/kitfox/den/internal/platform"
	"github.com/kitfox/den/internal/tracker"
)

// Summary describes one completed cycle.
type Summary struct {
	StartedAt  time.Time         `json:"started_at"`
	Took       time.Duration     `json:"took_ms"`
	Statuses   []platform.Status `json:"statuses,omitempty"`
	UnreadMail int               `json:"unread_mail"`
	PostsSeen  int               `json:"posts_seen"`
	NewReplies int               `json:"new_replies"`
	Commented  []string          `json:"commented,omitempty"`
	Problems   []string          `json:"problems,omitempty"`
}

// moltbookAPI is the slice of the Moltbook client the cycle uses.
type moltbookAPI interface {
	ListPosts(ctx context.Context, limit int) ([]platform.Post, error)
	CreateComment(ctx context.Context, postID, body string) (*platform.Comment, error)
}

type mailAPI interface {
	Inbox(ctx context.Context, limit int, unreadOnly bool) ([]platform.Message, error)
}

type statusAPI interface {
	Check(ctx context.Context) ([]platform.Status, error)
}

type journalAPI interface {
	Append(kind, body string) (*models.JournalEntry, error)
}

type syncFunc func(ctx context.Context) error

// Options wires a heartbeat. Nil platform fields are skipped, matching a
// config that leaves those platforms out.
type Options struct {
	Sync     syncFunc
	Statuses statusAPI
	Moltbook moltbookAPI
	Mail     mailAPI
	Tracker  *tracker.Tracker
	Journal  journalAPI
	Persona  persona.Card

	MaxComments int // per cycle; 0 disables commenting
	PostLimit   int

	OnEngagement func(platform, postID, kind string)
}

// Heartbeat runs cycles.
type Heartbeat struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func New(opts Options, logger *slog.Logger) *Heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PostLimit <= 0 {
		opts.PostLimit = 20
	}
	return &Heartbeat{
		opts:   opts,
		logger: logger.With(slog.String("subsystem", "heartbeat")),
		now:    time.Now,
	}
}

// RunCycle executes one full cycle. Individual step failures are collected
// into the summary rather than aborting the cycle; only context
// cancellation stops it early.
func (h *Heartbeat) RunCycle(ctx context.Context) (*Summary, error) {
	start := h.now()
	sum := &Summary{StartedAt: start}

	if h.opts.Sync != nil {
		if err := h.opts.Sync(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			sum.Problems = append(sum.Problems, fmt.Sprintf("sync: %v", err))
		}
	}

	// Probes and the inbox fetch are independent, run them together. Each
	// goroutine writes only its own variables; results merge after Wait.
	var (
		statuses            []platform.Status
		inbox               []platform.Message
		statusErr, inboxErr error
	)
	g, gCtx := errgroup.WithContext(ctx)
	if h.opts.Statuses != nil {
		g.Go(func() error {
			statuses, statusErr = h.opts.Statuses.Check(gCtx)
			return nil
		})
	}
	if h.opts.Mail != nil {
		g.Go(func() error {
			inbox, inboxErr = h.opts.Mail.Inbox(gCtx, 50, true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if statusErr != nil {
		sum.Problems = append(sum.Problems, fmt.Sprintf("status: %v", statusErr))
	}
	sum.Statuses = statuses
	if inboxErr != nil {
		sum.Problems = append(sum.Problems, fmt.Sprintf("inbox: %v", inboxErr))
	}
	sum.UnreadMail = len(inbox)

	if h.opts.Moltbook != nil {
		if err := h.engageMoltbook(ctx, sum); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			sum.Problems = append(sum.Problems, fmt.Sprintf("moltbook: %v", err))
		}
	}

	sum.Took = h.now().Sub(start)

	if h.opts.Journal != nil {
		if _, err := h.opts.Journal.Append("heartbeat", h.summaryBody(sum)); err != nil {
			sum.Problems = append(sum.Problems, fmt.Sprintf("journal: %v", err))
		}
	}

	h.logger.Info("cycle complete",
		slog.Int("posts_seen", sum.PostsSeen),
		slog.Int("commented", len(sum.Commented)),
		slog.Int("new_replies", sum.NewReplies),
		slog.Int("unread_mail", sum.UnreadMail),
		slog.Int("problems", len(sum.Problems)),
		slog.Duration("took", sum.Took))
	return sum, nil
}

// engageMoltbook lists fresh posts and comments on ones not yet engaged,
// up to the per-cycle budget.
func (h *Heartbeat) engageMoltbook(ctx context.Context, sum *Summary) error {
	posts, err := h.opts.Moltbook.ListPosts(ctx, h.opts.PostLimit)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	sum.PostsSeen = len(posts)

	budget := h.opts.MaxComments
	for _, p := range posts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if h.opts.Tracker != nil {
			// Track comment-count movement on every listed post so reply
			// activity since the last cycle shows up in the summary.
			delta, err := h.opts.Tracker.CommentDelta("moltbook", p.ID, p.Comments)
			if err != nil {
				return fmt.Errorf("tracker delta: %w", err)
			}
			sum.NewReplies += delta
		}
		if budget <= 0 {
			continue
		}
		if h.opts.Tracker != nil {
			seen, err := h.opts.Tracker.Seen("moltbook", p.ID, tracker.KindComment)
			if err != nil {
				return fmt.Errorf("tracker: %w", err)
			}
			if seen {
				continue
			}
		}
		if h.ownPost(p) {
			continue
		}

		body := h.composeComment(p)
		if _, err := h.opts.Moltbook.CreateComment(ctx, p.ID, body); err != nil {
			// One failed comment should not starve the rest of the cycle.
			sum.Problems = append(sum.Problems, fmt.Sprintf("comment %s: %v", p.ID, err))
			h.logger.Warn("comment failed", slog.String("post_id", p.ID), slog.String("error", err.Error()))
			continue
		}
		if h.opts.Tracker != nil {
			if _, err := h.opts.Tracker.Mark("moltbook", p.ID, tracker.KindComment); err != nil {
				return fmt.Errorf("tracker mark: %w", err)
			}
		}
		if h.opts.OnEngagement != nil {
			h.opts.OnEngagement("moltbook", p.ID, tracker.KindComment)
		}
		sum.Commented = append(sum.Commented, p.ID)
		budget--
	}
	return nil
}

func (h *Heartbeat) ownPost(p platform.Post) bool {
	return p.Author != "" && p.Author == h.opts.Persona.Handle("moltbook")
}

// composeComment builds a short, on-voice comment for a post.
func (h *Heartbeat) composeComment(p platform.Post) string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "this"
	}
	return fmt.Sprintf("%s here. %q caught my eye while tidying the den. What surprised you most about it?",
		h.opts.Persona.Name, title)
}

// summaryBody renders the journal entry for a cycle.
func (h *Heartbeat) summaryBody(sum *Summary) string {
	var b strings.Builder
	healthy := 0
	for _, st := range sum.Statuses {
		if st.Healthy {
			healthy++
		}
	}
	fmt.Fprintf(&b, "Platforms healthy: %d/%d. ", healthy, len(sum.Statuses))
	fmt.Fprintf(&b, "Unread mail: %d. ", sum.UnreadMail)
	fmt.Fprintf(&b, "Posts seen: %d, commented: %d.", sum.PostsSeen, len(sum.Commented))
	if sum.NewReplies > 0 {
		fmt.Fprintf(&b, " New replies since last cycle: %d.", sum.NewReplies)
	}
	if len(sum.Commented) > 0 {
		fmt.Fprintf(&b, " Commented on: %s.", strings.Join(sum.Commented, ", "))
	}
	for _, p := range sum.Problems {
		fmt.Fprintf(&b, "\n- problem: %s", p)
	}
	return b.String()
}

// RunPeriodic runs cycles every interval until ctx is cancelled. The first
// cycle runs immediately.
func (h *Heartbeat) RunPeriodic(ctx context.Context, interval time.Duration, onComplete func(*Summary)) error {
	if interval <= 0 {
		return fmt.Errorf("heartbeat: interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sum, err := h.RunCycle(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			h.logger.Error("cycle failed", slog.String("error", err.Error()))
		} else if onComplete != nil {
			onComplete(sum)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
