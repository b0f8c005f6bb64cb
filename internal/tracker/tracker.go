// Package tracker records which platform posts the persona has already
// engaged with, so heartbeat cycles never double-comment. State lives in the
// index database rather than flat files so concurrent marks stay consistent.
package tracker

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kitfox/den/internal/index"
	"github.com/kitfox/den/internal/models"
)

// Known engagement kinds. Kind is free-form in storage but the service
// validates against these to catch caller typos.
const (
	KindComment  = "comment"
	KindUpvote   = "upvote"
	KindFollow   = "follow"
	KindReply    = "reply"
	KindMailRead = "mail_read"
)

var knownKinds = []any{KindComment, KindUpvote, KindFollow, KindReply, KindMailRead}

// Tracker is the engagement bookkeeping service.
type Tracker struct {
	store  index.EngagementStore
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a tracker over the given store.
func New(store index.EngagementStore, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  store,
		logger: logger.With(slog.String("subsystem", "tracker")),
		now:    time.Now,
	}
}

func validateMark(platform, postID, kind string) error {
	return validation.Errors{
		"platform": validation.Validate(platform, validation.Required, validation.Length(1, 64)),
		"post_id":  validation.Validate(postID, validation.Required, validation.Length(1, 128)),
		"kind":     validation.Validate(kind, validation.Required, validation.In(knownKinds...)),
	}.Filter()
}

// Mark records an engagement. It returns true when the engagement was new
// and false when it had already been recorded; marking twice is not an
// error.
func (t *Tracker) Mark(platform, postID, kind string) (bool, error) {
	if err := validateMark(platform, postID, kind); err != nil {
		return false, fmt.Errorf("tracker: %w", err)
	}
	fresh, err := t.store.RecordEngagement(models.Engagement{
		Platform: platform,
		PostID:   postID,
		Kind:     kind,
		At:       t.now(),
	})
	if err != nil {
		return false, fmt.Errorf("tracker: record: %w", err)
	}
	if fresh {
		t.logger.Debug("engagement recorded",
			slog.String("platform", platform),
			slog.String("post_id", postID),
			slog.String("kind", kind))
	}
	return fresh, nil
}

// Seen reports whether the engagement has already been recorded.
func (t *Tracker) Seen(platform, postID, kind string) (bool, error) {
	if err := validateMark(platform, postID, kind); err != nil {
		return false, fmt.Errorf("tracker: %w", err)
	}
	seen, err := t.store.Engaged(platform, postID, kind)
	if err != nil {
		return false, fmt.Errorf("tracker: lookup: %w", err)
	}
	return seen, nil
}

// Recent returns the latest engagements, newest first.
func (t *Tracker) Recent(limit int) ([]models.Engagement, error) {
	if limit <= 0 {
		limit = 50
	}
	list, err := t.store.RecentEngagements(limit)
	if err != nil {
		return nil, fmt.Errorf("tracker: recent: %w", err)
	}
	return list, nil
}

// CommentDelta compares a post's current comment count against the last
// observed one, stores the new count, and returns how many comments arrived
// since the previous observation. The first observation returns zero.
func (t *Tracker) CommentDelta(platform, postID string, comments int) (int, error) {
	prev, seen, err := t.store.CommentCount(platform, postID)
	if err != nil {
		return 0, fmt.Errorf("tracker: comment count: %w", err)
	}
	if err := t.store.SetCommentCount(platform, postID, comments); err != nil {
		return 0, fmt.Errorf("tracker: set comment count: %w", err)
	}
	if !seen {
		return 0, nil
	}
	delta := comments - prev
	if delta < 0 {
		// Deleted comments. Treat shrinkage as no news.
		delta = 0
	}
	return delta, nil
}
