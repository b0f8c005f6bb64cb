package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kitfox/den/internal/captcha"
	"github.com/kitfox/den/internal/journal"
	"github.com/kitfox/den/internal/persona"
	"github.com/kitfox/den/internal/platform"
	"github.com/kitfox/den/internal/tracker"
)

// AgentHandler holds the agent-facing routes: captcha solving, journaling,
// engagement tracking, platform status, and the persona card.
type AgentHandler struct {
	journal  *journal.Service
	tracker  *tracker.Tracker
	statuses *platform.StatusChecker
	persona  persona.Card
}

// NewAgentHandler creates the agent handler. statuses may be nil when no
// platforms are configured.
func NewAgentHandler(jr *journal.Service, tr *tracker.Tracker, sc *platform.StatusChecker, card persona.Card) *AgentHandler {
	return &AgentHandler{journal: jr, tracker: tr, statuses: sc, persona: card}
}

// SolveCaptcha handles POST /api/captcha/solve.
//
//	@Summary		Solve an arithmetic word-problem captcha
//	@Tags			captcha
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SolveCaptchaRequest	true	"Challenge text"
//	@Success		200		{object}	SolveCaptchaResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captcha/solve [post]
func (h *AgentHandler) SolveCaptcha(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	expr, err := captcha.Parse(req.Text)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	answer, err := expr.Eval()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"answer":     answer,
		"expression": expr.String(),
	})
}

// AppendJournal handles POST /api/journal.
//
//	@Summary		Append an entry to today's journal
//	@Tags			journal
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AppendJournalRequest	true	"Entry"
//	@Success		201		{object}	JournalEntryResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journal [post]
func (h *AgentHandler) AppendJournal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	entry, err := h.journal.Append(req.Kind, req.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ListJournal handles GET /api/journal.
//
//	@Summary		List a day's journal entries
//	@Tags			journal
//	@Produce		json
//	@Param			day	query		string	false	"Day (YYYY-MM-DD), defaults to today"
//	@Success		200	{object}	JournalListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journal [get]
func (h *AgentHandler) ListJournal(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if q := r.URL.Query().Get("day"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("day must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}
	entries, err := h.journal.Entries(day)
	if err != nil {
		slog.Error("list journal failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"day":     day.Format("2006-01-02"),
		"entries": entries,
	})
}

// MarkEngagement handles POST /api/engagements.
//
//	@Summary		Record an engagement with a platform post
//	@Tags			tracker
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MarkEngagementRequest	true	"Engagement"
//	@Success		201		{object}	MarkEngagementResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/engagements [post]
func (h *AgentHandler) MarkEngagement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Platform string `json:"platform"`
		PostID   string `json:"post_id"`
		Kind     string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	fresh, err := h.tracker.Mark(req.Platform, req.PostID, req.Kind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"fresh": fresh,
	})
}

// ListEngagements handles GET /api/engagements.
//
//	@Summary		List recent engagements
//	@Tags			tracker
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{object}	EngagementListResponse
//	@Security		BearerAuth
//	@Router			/engagements [get]
func (h *AgentHandler) ListEngagements(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.tracker.Recent(limit)
	if err != nil {
		slog.Error("list engagements failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engagements": list,
	})
}

// CheckEngagement handles GET /api/engagements/check.
//
//	@Summary		Check whether a post has been engaged with
//	@Tags			tracker
//	@Produce		json
//	@Param			platform	query		string	true	"Platform name"
//	@Param			post_id		query		string	true	"Post ID"
//	@Param			kind		query		string	true	"Engagement kind"
//	@Success		200			{object}	CheckEngagementResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/engagements/check [get]
func (h *AgentHandler) CheckEngagement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seen, err := h.tracker.Seen(q.Get("platform"), q.Get("post_id"), q.Get("kind"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"seen": seen,
	})
}

// PlatformStatus handles GET /api/platforms/status.
//
//	@Summary		Probe configured platform health endpoints
//	@Tags			platforms
//	@Produce		json
//	@Success		200	{object}	PlatformStatusResponse
//	@Security		BearerAuth
//	@Router			/platforms/status [get]
func (h *AgentHandler) PlatformStatus(w http.ResponseWriter, r *http.Request) {
	if h.statuses == nil {
		writeJSON(w, http.StatusOK, map[string]any{"statuses": []platform.Status{}})
		return
	}
	sts, err := h.statuses.Check(r.Context())
	if err != nil {
		slog.Error("platform status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statuses": sts,
	})
}

// GetPersona handles GET /api/persona.
//
//	@Summary		Get the persona card
//	@Tags			persona
//	@Produce		json
//	@Success		200	{object}	persona.Card
//	@Security		BearerAuth
//	@Router			/persona [get]
func (h *AgentHandler) GetPersona(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.persona)
}
