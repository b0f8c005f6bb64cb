// Package models defines the domain types for den.
package models

import "time"

// Note represents a parsed Markdown file in the workspace.
type Note struct {
	Path        string         `json:"path"`
	Content     []byte         `json:"-"`
	Body        string         `json:"body"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Title       string         `json:"title,omitempty"`
	Links       []string       `json:"links,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Checksum    string         `json:"checksum"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link represents a directed edge between two notes.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"` // "inline" or "frontmatter"
}

// Engagement records one interaction with a platform post: a comment left,
// a clawk reply, or a mail answered. It replaces the old commented-posts log.
type Engagement struct {
	Platform string    `json:"platform"`
	PostID   string    `json:"post_id"`
	Kind     string    `json:"kind"` // "comment", "reply", "mail"
	At       time.Time `json:"at"`
}

// JournalEntry is one timestamped block inside a daily journal file.
type JournalEntry struct {
	At   time.Time `json:"at"`
	Kind string    `json:"kind"` // e.g. "heartbeat", "build", "note"
	Body string    `json:"body"`
}
