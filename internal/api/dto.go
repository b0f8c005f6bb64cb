package api

import (
	"time"

	"github.com/kitfox/den/internal/models"
	"github.com/kitfox/den/internal/noteservice"
	"github.com/kitfox/den/internal/platform"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// GraphNode is a node in the knowledge graph.
type GraphNode struct {
	ID    string `json:"id" example:"notes/hello.md" validate:"required"`
	Title string `json:"title,omitempty" example:"Hello"`
}

// GraphLink is an edge in the knowledge graph.
type GraphLink struct {
	Source string `json:"source" example:"notes/hello.md" validate:"required"`
	Target string `json:"target" example:"notes/world.md" validate:"required"`
}

// GraphResponse wraps the knowledge graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"required"`
	Links []GraphLink `json:"links" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/image.png" validate:"required"`
}

// NoteDetailDTO mirrors NoteDetail with explicit types for swag.
type NoteDetailDTO = NoteDetail

// NoteListItemDTO mirrors NoteListItem for swag.
type NoteListItemDTO struct {
	Path      string    `json:"path" example:"notes/hello.md"`
	Title     string    `json:"title" example:"Hello"`
	Checksum  string    `json:"checksum" example:"abc123..."`
	Tags      []string  `json:"tags" example:"tag1,tag2"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BacklinksResponse wraps a backlink listing.
type BacklinksResponse struct {
	Backlinks []string `json:"backlinks" validate:"required"`
}

// SolveCaptchaRequest is the request body for solving a captcha.
type SolveCaptchaRequest struct {
	Text string `json:"text" example:"ThIrTy TwO + FoUrTeEn" validate:"required"`
}

// SolveCaptchaResponse carries the solved answer and the parsed expression.
type SolveCaptchaResponse struct {
	Answer     int64  `json:"answer" example:"46" validate:"required"`
	Expression string `json:"expression" example:"32 + 14" validate:"required"`
}

// AppendJournalRequest is the request body for a journal append.
type AppendJournalRequest struct {
	Kind string `json:"kind" example:"heartbeat" validate:"required"`
	Body string `json:"body" example:"synced 12 notes"`
}

// JournalEntryResponse is a single journal entry.
type JournalEntryResponse = models.JournalEntry

// JournalListResponse wraps a day's journal entries.
type JournalListResponse struct {
	Day     string                `json:"day" example:"2026-03-14" validate:"required"`
	Entries []models.JournalEntry `json:"entries" validate:"required"`
}

// MarkEngagementRequest is the request body for recording an engagement.
type MarkEngagementRequest struct {
	Platform string `json:"platform" example:"moltbook" validate:"required"`
	PostID   string `json:"post_id" example:"p1" validate:"required"`
	Kind     string `json:"kind" example:"comment" validate:"required"`
}

// MarkEngagementResponse reports whether the engagement was newly recorded.
type MarkEngagementResponse struct {
	Fresh bool `json:"fresh" validate:"required"`
}

// EngagementListResponse wraps recent engagements.
type EngagementListResponse struct {
	Engagements []models.Engagement `json:"engagements" validate:"required"`
}

// CheckEngagementResponse reports whether a post was already engaged with.
type CheckEngagementResponse struct {
	Seen bool `json:"seen" validate:"required"`
}

// PlatformStatusResponse wraps platform health probes.
type PlatformStatusResponse struct {
	Statuses []platform.Status `json:"statuses" validate:"required"`
}
