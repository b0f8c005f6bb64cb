package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/kitfox/den/internal"
	"github.com/kitfox/den/internal/captcha"
	"github.com/kitfox/den/internal/sim"
	pkgconfig "github.com/kitfox/den/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, cfg)
}

func heartbeatOnce(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunHeartbeatOnce(ctx, cfg)
}

func solve(ctx context.Context, cmd *cli.Command) error {
	text := strings.Join(cmd.Args().Slice(), " ")
	if text == "" {
		// No args: read the challenge from stdin.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return fmt.Errorf("usage: den solve <captcha text>")
	}
	answer, err := captcha.Solve(text)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func journalAppend(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	body := strings.Join(cmd.Args().Slice(), " ")
	return internal.AppendJournalEntry(cfg, cmd.String("kind"), body)
}

func clip(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	body := strings.Join(cmd.Args().Slice(), " ")
	if body == "" {
		return fmt.Errorf("usage: den clip <text>")
	}
	posted, err := internal.PostClip(ctx, cfg, body)
	if err != nil {
		return err
	}
	fmt.Printf("clipped: %s\n", posted.ID)
	return nil
}

func timeline(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	clips, err := internal.ClawkTimeline(ctx, cfg, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	for _, c := range clips {
		fmt.Printf("%-16s %s\n", "@"+c.Author, c.Body)
	}
	return nil
}

func friends(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	handle := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		handle = args[0]
	}
	profile, list, err := internal.ShellmatesFriends(ctx, cfg, handle)
	if err != nil {
		return err
	}
	fmt.Printf("@%s (%s) — %d friends\n", profile.Handle, profile.Name, profile.Friends)
	for _, f := range list {
		fmt.Printf("  @%-15s %s\n", f.Handle, f.Name)
	}
	return nil
}

func decay(ctx context.Context, cmd *cli.Command) error {
	points := sim.Reputation(sim.ReputationParams{
		Initial:  cmd.Float("initial"),
		Floor:    cmd.Float("floor"),
		HalfLife: cmd.Duration("half-life"),
		Step:     cmd.Duration("step"),
		Span:     cmd.Duration("span"),
	})
	if points == nil {
		return fmt.Errorf("half-life, step, and span must all be positive")
	}
	for _, p := range points {
		fmt.Printf("%-10s %.2f\n", p.At, p.Value)
	}
	return nil
}

func revisit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	paths, err := internal.SuggestRevisits(cfg)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("nothing has faded yet")
		return nil
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func status(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	statuses, err := internal.CheckPlatforms(ctx, cfg)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Println("no platforms configured")
		return nil
	}
	for _, s := range statuses {
		state := "healthy"
		detail := s.Latency.Round(time.Millisecond).String()
		if !s.Healthy {
			state = "unhealthy"
			detail = s.Error
		}
		fmt.Printf("%-12s %-10s %s\n", s.Platform, state, detail)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "den",
		Usage:   "Agent workspace: Markdown notes, daily journals, and social platform plumbing for Kit the Fox",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("DEN_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, file watcher, and heartbeat loop",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve den tools over MCP stdio transport",
				Action: mcp,
			},
			{
				Name:   "heartbeat",
				Usage:  "Run a single heartbeat cycle and print the summary",
				Action: heartbeatOnce,
			},
			{
				Name:      "solve",
				Usage:     "Solve an arithmetic word-problem captcha",
				ArgsUsage: "<captcha text>",
				Action:    solve,
			},
			{
				Name:      "journal",
				Usage:     "Append an entry to today's journal",
				ArgsUsage: "<body>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Entry kind",
						Value: "note",
					},
				},
				Action: journalAppend,
			},
			{
				Name:      "clip",
				Usage:     "Post a clip to Clawk and journal it",
				ArgsUsage: "<text>",
				Action:    clip,
			},
			{
				Name:  "timeline",
				Usage: "Print the Clawk home timeline",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
				},
				Action: timeline,
			},
			{
				Name:      "friends",
				Usage:     "Show a Shellmates profile and its friend list (defaults to the persona's own)",
				ArgsUsage: "[handle]",
				Action:    friends,
			},
			{
				Name:  "decay",
				Usage: "Print a reputation decay run",
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "initial", Value: 100},
					&cli.FloatFlag{Name: "floor", Value: 10},
					&cli.DurationFlag{Name: "half-life", Value: 24 * time.Hour},
					&cli.DurationFlag{Name: "step", Value: 6 * time.Hour},
					&cli.DurationFlag{Name: "span", Value: 7 * 24 * time.Hour},
				},
				Action: decay,
			},
			{
				Name:   "revisit",
				Usage:  "List notes whose retention score has faded enough to reread",
				Action: revisit,
			},
			{
				Name:   "status",
				Usage:  "Probe the health of all configured platforms",
				Action: status,
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
