// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes den tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kitfox/den/internal/captcha"
	"github.com/kitfox/den/internal/index"
	"github.com/kitfox/den/internal/journal"
	"github.com/kitfox/den/internal/parser"
	"github.com/kitfox/den/internal/persona"
	"github.com/kitfox/den/internal/platform"
	"github.com/kitfox/den/internal/tracker"
	"github.com/kitfox/den/internal/workspace"
)

// Options carries the collaborators an MCP server needs. Statuses may be
// nil when no platforms are configured.
type Options struct {
	Workspace workspace.Provider
	DB        *index.DB
	Journal   *journal.Service
	Tracker   *tracker.Tracker
	Statuses  *platform.StatusChecker
	Persona   persona.Card
}

// Server wraps the MCP server with den tools.
type Server struct {
	mcp      *server.MCPServer
	ws       workspace.Provider
	db       *index.DB
	journal  *journal.Service
	tracker  *tracker.Tracker
	statuses *platform.StatusChecker
	card     persona.Card
}

// New creates a new MCP server with all den tools registered.
func New(opts Options) *Server {
	s := &Server{
		ws:       opts.Workspace,
		db:       opts.DB,
		journal:  opts.Journal,
		tracker:  opts.Tracker,
		statuses: opts.Statuses,
		card:     opts.Persona,
	}

	s.mcp = server.NewMCPServer(
		"den",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through notes content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. knowledge/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Create a new Markdown note at the specified path. "+
			"Content MUST follow the canonical note format (YAML frontmatter with title, "+
			"optional tags, Markdown body with [[wikilinks]]). Read the contract first via "+
			"the get_note_contract tool or the den://note-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new note (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the den note format contract")),
	), s.writeNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical den note format contract. "+
			"Call this before creating or updating notes to ensure correct structure."),
	), s.getNoteContract)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes or notes in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the note to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download an image or document and store it under attachments/. "+
			"Accepts http(s) URLs and base64 data: URIs."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source URL or data: URI")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadAsset)

	s.mcp.AddTool(mcp.NewTool("append_journal",
		mcp.WithDescription("Append a timestamped entry to today's journal in memory/."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Entry kind (e.g. heartbeat, observation, reply)")),
		mcp.WithString("body", mcp.Description("Entry body in Markdown")),
	), s.appendJournal)

	s.mcp.AddTool(mcp.NewTool("solve_captcha",
		mcp.WithDescription("Solve an arithmetic word-problem captcha prompt and return the numeric answer."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The captcha prompt text")),
	), s.solveCaptcha)

	s.mcp.AddTool(mcp.NewTool("platform_status",
		mcp.WithDescription("Probe the health of all configured social platforms."),
	), s.platformStatus)

	s.mcp.AddTool(mcp.NewTool("mark_commented",
		mcp.WithDescription("Record an engagement with a post so it is not engaged twice."),
		mcp.WithString("platform", mcp.Required(), mcp.Description("Platform name (moltbook, clawk, shellmates, agentmail)")),
		mcp.WithString("post_id", mcp.Required(), mcp.Description("Platform-local post identifier")),
		mcp.WithString("kind", mcp.Description("Engagement kind, defaults to comment")),
	), s.markCommented)

	s.mcp.AddTool(mcp.NewTool("check_commented",
		mcp.WithDescription("Check whether a post was already engaged with."),
		mcp.WithString("platform", mcp.Required(), mcp.Description("Platform name")),
		mcp.WithString("post_id", mcp.Required(), mcp.Description("Platform-local post identifier")),
		mcp.WithString("kind", mcp.Description("Engagement kind, defaults to comment")),
	), s.checkCommented)

	s.mcp.AddTool(mcp.NewTool("get_persona",
		mcp.WithDescription("Return the persona card: who this agent is and how it speaks."),
	), s.getPersona)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("den://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format that all notes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	// Resource: persona card.
	s.mcp.AddResource(
		mcp.NewResource("den://persona", "Persona Card",
			mcp.WithResourceDescription("The persona this workspace belongs to."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPersonaResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.ws.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) writeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Check existence.
	if _, readErr := s.ws.Read(path); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("note already exists: %s", path)), nil
	}

	data := []byte(content)
	if err := s.ws.Write(path, data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Index the new note.
	res, _ := parser.Parse(data)
	if res != nil {
		tags := res.Tags
		if tags == nil {
			tags = []string{}
		}
		_ = s.db.UpsertNote(index.NoteRow{
			Path:     path,
			Title:    res.Title,
			Checksum: "",
			Tags:     tags,
		}, res.Body, res.Links)
	}

	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.ws.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "den://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func (s *Server) readPersonaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "den://persona",
			MIMEType: "text/markdown",
			Text:     s.card.Render(),
		},
	}, nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) appendJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := ""
	if b, bErr := req.RequireString("body"); bErr == nil {
		body = b
	}

	entry, err := s.journal.Append(kind, body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entry, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) solveCaptcha(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	expr, err := captcha.Parse(prompt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot solve: %v", err)), nil
	}
	answer, err := expr.Eval()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot solve: %v", err)), nil
	}

	out, _ := json.Marshal(map[string]any{
		"answer":     answer,
		"expression": expr.String(),
	})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) platformStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.statuses == nil {
		return mcp.NewToolResultText("no platforms configured"), nil
	}
	statuses, err := s.statuses.Check(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(statuses, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) markCommented(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	platformName, err := req.RequireString("platform")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	postID, err := req.RequireString("post_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind := tracker.KindComment
	if k, kErr := req.RequireString("kind"); kErr == nil && k != "" {
		kind = k
	}

	fresh, err := s.tracker.Mark(platformName, postID, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !fresh {
		return mcp.NewToolResultText("already recorded"), nil
	}
	return mcp.NewToolResultText("recorded"), nil
}

func (s *Server) checkCommented(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	platformName, err := req.RequireString("platform")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	postID, err := req.RequireString("post_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind := tracker.KindComment
	if k, kErr := req.RequireString("kind"); kErr == nil && k != "" {
		kind = k
	}

	seen, err := s.tracker.Seen(platformName, postID, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if seen {
		return mcp.NewToolResultText("seen"), nil
	}
	return mcp.NewToolResultText("not seen"), nil
}

func (s *Server) getPersona(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.card.Render()), nil
}
