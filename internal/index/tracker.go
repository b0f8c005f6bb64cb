package index

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kitfox/den/internal/models"
)

// Engagement tracking. The shell-era workspace kept commented-posts.md and
// post-comment-counts.json as unsynchronized flat files; these tables give
// the same bookkeeping transactional semantics.

// RecordEngagement inserts an engagement, returning false when the same
// (platform, post, kind) was already recorded. Idempotent by design: the
// heartbeat uses the return value to decide whether a post is fresh.
func (db *DB) RecordEngagement(e models.Engagement) (bool, error) {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	res, err := db.conn.Exec(
		`INSERT OR IGNORE INTO engagements (platform, post_id, kind, at) VALUES (?, ?, ?, ?)`,
		e.Platform, e.PostID, e.Kind, at)
	if err != nil {
		return false, fmt.Errorf("index: record engagement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("index: record engagement: %w", err)
	}
	return n > 0, nil
}

// Engaged reports whether an engagement of the given kind exists for the post.
func (db *DB) Engaged(platform, postID, kind string) (bool, error) {
	var one int
	err := db.conn.QueryRow(
		`SELECT 1 FROM engagements WHERE platform = ? AND post_id = ? AND kind = ?`,
		platform, postID, kind).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("index: engaged: %w", err)
	}
	return true, nil
}

// RecentEngagements returns the newest engagements, most recent first.
func (db *DB) RecentEngagements(limit int) ([]models.Engagement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(
		`SELECT platform, post_id, kind, at FROM engagements ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: recent engagements: %w", err)
	}
	defer rows.Close()

	var out []models.Engagement
	for rows.Next() {
		var e models.Engagement
		if err := rows.Scan(&e.Platform, &e.PostID, &e.Kind, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetCommentCount records the observed comment total for a post.
func (db *DB) SetCommentCount(platform, postID string, comments int) error {
	_, err := db.conn.Exec(`
		INSERT INTO post_counts (platform, post_id, comments, seen_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(platform, post_id) DO UPDATE SET
			comments = excluded.comments,
			seen_at  = excluded.seen_at
	`, platform, postID, comments, time.Now())
	if err != nil {
		return fmt.Errorf("index: set comment count: %w", err)
	}
	return nil
}

// CommentCount returns the last observed comment total for a post.
// ok is false when the post has never been seen.
func (db *DB) CommentCount(platform, postID string) (int, bool, error) {
	var n int
	err := db.conn.QueryRow(
		`SELECT comments FROM post_counts WHERE platform = ? AND post_id = ?`,
		platform, postID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("index: comment count: %w", err)
	}
	return n, true, nil
}
