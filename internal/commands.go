package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/kitfox/den/internal/apperr"
	"github.com/kitfox/den/internal/captcha"
	"github.com/kitfox/den/internal/heartbeat"
	"github.com/kitfox/den/internal/index"
	"github.com/kitfox/den/internal/journal"
	"github.com/kitfox/den/internal/mcpserver"
	"github.com/kitfox/den/internal/platform"
	"github.com/kitfox/den/internal/sim"
	"github.com/kitfox/den/internal/tracker"
	"github.com/kitfox/den/internal/workspace"
)

// cliLogger writes human-oriented logs to stderr so command output on
// stdout stays clean (the MCP server owns stdout entirely).
func cliLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// openCore opens the workspace and index shared by the one-shot commands.
func openCore(cfg *Config) (workspace.Provider, *index.DB, error) {
	if err := os.MkdirAll(cfg.Workspace.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create workspace dir: %w", err)
	}
	ws, err := workspace.NewFS(cfg.Workspace.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init workspace: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	return ws, db, nil
}

// RunMCP serves the MCP tool surface over stdio until the client hangs up.
func RunMCP(ctx context.Context, cfg *Config) error {
	logger := cliLogger(cfg)

	ws, db, err := openCore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := index.Sync(db, ws, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	clients, err := buildClients(cfg, logger)
	if err != nil {
		return err
	}
	var statuses *platform.StatusChecker
	if len(clients) > 0 {
		all := make([]*platform.Client, 0, len(clients))
		for _, c := range clients {
			all = append(all, c)
		}
		statuses = platform.NewStatusChecker(all, statusCacheTTL, logger)
	}

	srv := mcpserver.New(mcpserver.Options{
		Workspace: ws,
		DB:        db,
		Journal:   journal.New(ws, logger),
		Tracker:   tracker.New(db, logger),
		Statuses:  statuses,
		Persona:   cfg.Persona,
	})
	return srv.ServeStdio()
}

// RunHeartbeatOnce executes a single heartbeat cycle and prints the
// summary as JSON on stdout.
func RunHeartbeatOnce(ctx context.Context, cfg *Config) error {
	logger := cliLogger(cfg)

	ws, db, err := openCore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	clients, err := buildClients(cfg, logger)
	if err != nil {
		return err
	}

	opts := heartbeat.Options{
		Sync:        func(context.Context) error { return index.Sync(db, ws, logger) },
		Tracker:     tracker.New(db, logger),
		Journal:     journal.New(ws, logger),
		Persona:     cfg.Persona,
		MaxComments: cfg.Heartbeat.MaxComments,
		PostLimit:   cfg.Heartbeat.PostLimit,
	}
	if len(clients) > 0 {
		all := make([]*platform.Client, 0, len(clients))
		for _, c := range clients {
			all = append(all, c)
		}
		opts.Statuses = platform.NewStatusChecker(all, statusCacheTTL, logger)
	}
	if c, ok := clients[PlatformMoltbook]; ok {
		opts.Moltbook = platform.NewMoltbook(c, captcha.Solve)
	}
	if c, ok := clients[PlatformAgentMail]; ok {
		opts.Mail = platform.NewAgentMail(c)
	}

	sum, err := heartbeat.New(opts, logger).RunCycle(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// AppendJournalEntry adds one entry to today's journal.
func AppendJournalEntry(cfg *Config, kind, body string) error {
	logger := cliLogger(cfg)

	ws, db, err := openCore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := journal.New(ws, logger).Append(kind, body)
	if err != nil {
		return err
	}
	fmt.Printf("%s — %s\n", entry.At.Format("2006-01-02 15:04"), entry.Kind)
	return nil
}

// PostClip publishes a clip to Clawk and journals it, so the den's own
// posting history lives next to the heartbeat log.
func PostClip(ctx context.Context, cfg *Config, body string) (*platform.Clip, error) {
	logger := cliLogger(cfg)

	clients, err := buildClients(cfg, logger)
	if err != nil {
		return nil, err
	}
	c, ok := clients[PlatformClawk]
	if !ok {
		return nil, fmt.Errorf("clawk: %w", apperr.ErrNotConfigured)
	}

	clip, err := platform.NewClawk(c).PostClip(ctx, body)
	if err != nil {
		return nil, err
	}

	ws, db, err := openCore(cfg)
	if err != nil {
		return clip, err
	}
	defer db.Close()
	if _, err := journal.New(ws, logger).Append("clip", body); err != nil {
		logger.Warn("journal clip failed", slog.String("error", err.Error()))
	}
	return clip, nil
}

// ClawkTimeline fetches the home timeline.
func ClawkTimeline(ctx context.Context, cfg *Config, limit int) ([]platform.Clip, error) {
	clients, err := buildClients(cfg, cliLogger(cfg))
	if err != nil {
		return nil, err
	}
	c, ok := clients[PlatformClawk]
	if !ok {
		return nil, fmt.Errorf("clawk: %w", apperr.ErrNotConfigured)
	}
	return platform.NewClawk(c).Timeline(ctx, limit)
}

// ShellmatesFriends fetches a profile and its friend list. An empty handle
// defaults to the persona's own Shellmates handle.
func ShellmatesFriends(ctx context.Context, cfg *Config, handle string) (*platform.Profile, []platform.Profile, error) {
	clients, err := buildClients(cfg, cliLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	c, ok := clients[PlatformShellmates]
	if !ok {
		return nil, nil, fmt.Errorf("shellmates: %w", apperr.ErrNotConfigured)
	}
	if handle == "" {
		handle = cfg.Persona.Handle(PlatformShellmates)
	}

	sm := platform.NewShellmates(c)
	profile, err := sm.GetProfile(ctx, handle)
	if err != nil {
		return nil, nil, err
	}
	friends, err := sm.Friends(ctx, handle)
	if err != nil {
		return profile, nil, err
	}
	return profile, friends, nil
}

// SuggestRevisits returns paths of notes whose retention score has faded
// below the revisit threshold, oldest first. Per-note access counts are
// not tracked, so every note decays at base strength.
func SuggestRevisits(cfg *Config) ([]string, error) {
	ws, err := workspace.NewFS(cfg.Workspace.Path)
	if err != nil {
		return nil, fmt.Errorf("init workspace: %w", err)
	}
	metas, err := ws.List("")
	if err != nil {
		return nil, err
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	now := time.Now()
	var out []string
	for _, m := range metas {
		if sim.ShouldRevisit(sim.RetentionParams{Age: now.Sub(m.UpdatedAt)}) {
			out = append(out, m.Path)
		}
	}
	return out, nil
}

// CheckPlatforms probes every configured platform once and returns the
// results, fresh (no cache reuse across invocations).
func CheckPlatforms(ctx context.Context, cfg *Config) ([]platform.Status, error) {
	logger := cliLogger(cfg)

	clients, err := buildClients(cfg, logger)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, nil
	}
	all := make([]*platform.Client, 0, len(clients))
	for _, c := range clients {
		all = append(all, c)
	}
	return platform.NewStatusChecker(all, statusCacheTTL, logger).Check(ctx)
}
