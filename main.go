// Command grid-client plays a server-authoritative grid game from the terminal.
//
// It supports four commands:
//  1. "stream" (default) – joins once, renders the map pushed over the websocket
//     stream and sends a move plus a world refresh for every arrow/WASD key
//  2. "poll" – a button-style client: nothing is sent until a digit key asks for it
//  3. "mcp" – the polling client exposed as MCP tools over stdio
//  4. "init-config" – writes the effective configuration to a JSON file
//
// Flags and GRID_* environment variables (optionally from a .env file) select
// the server, request timeout, log file and the optional local inspection API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/grid-client/api"
	"github.com/wricardo/grid-client/game/config"
	"github.com/wricardo/grid-client/game/intent"
	"github.com/wricardo/grid-client/game/service"
	"github.com/wricardo/grid-client/game/session"
	"github.com/wricardo/grid-client/logging"
	"github.com/wricardo/grid-client/metrics"
	"github.com/wricardo/grid-client/transport/mcp"
	"github.com/wricardo/grid-client/transport/rest"
	"github.com/wricardo/grid-client/transport/websocket"
	"github.com/wricardo/grid-client/ui/terminal"
	"go.uber.org/zap"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Game Client"
)

const (
	streamHelp = "Arrows/WASD move   q quit"
	pollHelp   = "1 add player  2 fetch map  3 up  4 down  5 left  6 right  7 update world   q quit"
)

// pollButtons maps the poll-mode digit keys to panel actions
var pollButtons = map[string]func(ctx context.Context, p *session.Panel) error{
	"1": func(ctx context.Context, p *session.Panel) error { _, err := p.AddPlayer(ctx); return err },
	"2": func(ctx context.Context, p *session.Panel) error { _, err := p.FetchCurrentMap(ctx); return err },
	"3": func(ctx context.Context, p *session.Panel) error { _, err := p.MovePlayer(ctx, intent.Up); return err },
	"4": func(ctx context.Context, p *session.Panel) error { _, err := p.MovePlayer(ctx, intent.Down); return err },
	"5": func(ctx context.Context, p *session.Panel) error { _, err := p.MovePlayer(ctx, intent.Left); return err },
	"6": func(ctx context.Context, p *session.Panel) error { _, err := p.MovePlayer(ctx, intent.Right); return err },
	"7": func(ctx context.Context, p *session.Panel) error { return p.UpdateWorld(ctx) },
}

// main loads .env, then hands off to the command tree.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		stop()
		log.Fatalf("%s: %v", AppName, err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "grid-client",
		Usage:   "terminal client for a server-authoritative grid game",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "JSON configuration file"},
			&cli.StringFlag{Name: "host", Usage: "game server host"},
			&cli.IntFlag{Name: "port", Usage: "game server HTTP port"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-file", Usage: "log file path (empty discards logs)"},
			&cli.StringFlag{Name: "inspect-addr", Usage: "serve the local inspection API on this address"},
		},
		Action: runStream,
		Commands: []*cli.Command{
			{
				Name:   "stream",
				Usage:  "stream the map and move with arrow keys or WASD (default)",
				Action: runStream,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "strict", Usage: "mount, unmount and remount at startup to exercise teardown"},
				},
			},
			{
				Name:   "poll",
				Usage:  "button-driven client without the stream",
				Action: runPoll,
			},
			{
				Name:   "mcp",
				Usage:  "serve the polling client as MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:      "init-config",
				Usage:     "write the effective configuration to a file",
				ArgsUsage: "[path]",
				Action:    runInitConfig,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
			},
		},
	}
}

// loadConfig layers file, environment and flags, in that order
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		cfg.ServerHost = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.HTTPPort = int(cmd.Int("port"))
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}
	if cmd.IsSet("inspect-addr") {
		cfg.InspectAddr = cmd.String("inspect-addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cli.Command) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(logging.Options{File: cfg.LogFile, Debug: cfg.Debug})
	logger.Infow("starting", "app", AppName, "version", Version, "command", cmd.Name,
		"server", cfg.BaseURL(), "stream", cfg.StreamURL())
	return cfg, logger, nil
}

// runStream runs the streaming client until the user quits
func runStream(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	stats := metrics.New()
	client := rest.NewClient(cfg.BaseURL(), cfg.Timeout(), logger)
	dialer := websocket.NewDialer(cfg.StreamURL(), logger)
	dialer.OnError(func(error) { stats.IncStreamErrors() })

	keys := intent.NewBus()
	screen := terminal.NewScreen(AppName, streamHelp)
	sess := session.New(client, dialer, keys, screen,
		session.WithLogger(logger),
		session.WithMetrics(stats),
	)
	sess.Subscribe(screen.Render)
	screen.Render(sess.View())

	stopInspect := startInspect(cfg, sess, keys, stats, logger)
	defer stopInspect()

	if cmd.Bool("strict") {
		sess.Mount()
		sess.Unmount()
	}
	sess.Mount()

	err = screen.Run(ctx, keys.Press)
	sess.Unmount()
	sess.Wait()
	logger.Infow("stopped", "metrics", stats.Snapshot())
	return err
}

// runPoll runs the button-driven client
func runPoll(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	stats := metrics.New()
	client := rest.NewClient(cfg.BaseURL(), cfg.Timeout(), logger)
	screen := terminal.NewScreen(AppName, pollHelp)
	panel := session.NewPanel(client, screen,
		session.WithLogger(logger),
		session.WithMetrics(stats),
	)
	panel.Subscribe(screen.Render)
	screen.Render(panel.View())

	stopInspect := startInspect(cfg, panel, nil, stats, logger)
	defer stopInspect()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	err = screen.Run(runCtx, func(key string) {
		action, ok := pollButtons[key]
		if !ok {
			return
		}
		// Requests run off the UI loop; failures are already logged by the panel
		go action(runCtx, panel)
	})
	logger.Infow("stopped", "metrics", stats.Snapshot())
	return err
}

// runMCP serves the polling client as MCP tools over stdio
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	stats := metrics.New()
	client := rest.NewClient(cfg.BaseURL(), cfg.Timeout(), logger)
	notices := service.NotifierFunc(func(message string) {
		logger.Infow("notice", "message", message)
	})
	panel := session.NewPanel(client, notices,
		session.WithLogger(logger),
		session.WithMetrics(stats),
	)

	stopInspect := startInspect(cfg, panel, nil, stats, logger)
	defer stopInspect()

	mcpClient := mcp.NewClient(panel, Version)
	logger.Infow("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

// runInitConfig writes the effective configuration, refusing to overwrite
// unless --force is given
func runInitConfig(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := cmd.Args().First()
	if path == "" {
		path = "grid-client.json"
	}
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Wrote %s\n", path)
	return nil
}

// startInspect serves the inspection API when an address is configured. The
// returned function shuts it down.
func startInspect(cfg *config.Config, views api.ViewSource, keys api.KeyPresser, stats *metrics.Counters, logger *zap.SugaredLogger) func() {
	if cfg.InspectAddr == "" {
		return func() {}
	}

	httpServer := &http.Server{
		Addr:         cfg.InspectAddr,
		Handler:      api.NewServer(views, keys, stats),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infow("inspection API listening", "addr", cfg.InspectAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("inspection API failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("inspection API shutdown", "error", err)
		}
	}
}
