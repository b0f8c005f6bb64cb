package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kitfox/den/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// agent carries the agent-facing handlers (captcha, journal, tracker,
// statuses, persona); sseHandler, if non-nil, is mounted at GET /events
// inside the auth group. workspaceRoot resolves the attachments directory.
func NewRouter(svc *noteservice.Service, agent *AgentHandler, authEnabled bool, token string, sseHandler http.Handler, workspaceRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(workspaceRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Search and graph.
	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)
	r.Get("/backlinks", h.Backlinks)

	// Agent surface.
	if agent != nil {
		r.Post("/captcha/solve", agent.SolveCaptcha)
		r.Get("/journal", agent.ListJournal)
		r.Post("/journal", agent.AppendJournal)
		r.Get("/engagements", agent.ListEngagements)
		r.Post("/engagements", agent.MarkEngagement)
		r.Get("/engagements/check", agent.CheckEngagement)
		r.Get("/platforms/status", agent.PlatformStatus)
		r.Get("/persona", agent.GetPersona)
	}

	// Attachments (auth-protected).
	r.Post("/attachments", ah.Upload)
	r.Get("/attachments/{filename}", ah.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
