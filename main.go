package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/api"
	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/input"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/terminal"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics, driven by a timer and a scripted pointer")
	term := flag.Bool("terminal", false, "Render in the terminal instead of a window")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stdout")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	exportPath := flag.String("export", "", "Write the final canvas to this JPEG path on exit")
	apiAddr := flag.String("api-addr", "", "HTTP API listen address (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging). The terminal
	// renderer owns stdout, so it logs to a file or nowhere.
	var logOut io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else if *term {
		logOut = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	opts := game.Options{
		Seed:           *seed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case *headless:
		err = runHeadless(ctx, cfg, opts, *apiAddr, *maxTicks, *exportPath)
	case *term:
		err = runTerminal(ctx, cfg, opts, *apiAddr, *maxTicks, *exportPath)
	default:
		err = runWindow(cfg, opts, *apiAddr, *maxTicks, *exportPath)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless drives the session from a fixed-period timer with a scripted pointer.
func runHeadless(ctx context.Context, cfg *config.Config, opts game.Options, apiAddr string, maxTicks int, exportPath string) error {
	h := cfg.Headless
	sched := game.NewIntervalScheduler(time.Duration(h.IntervalMS) * time.Millisecond)
	opts.Scheduler = sched
	opts.Pointer = input.NewScripted(float64(cfg.Screen.Width), float64(cfg.Screen.Height), h.PeriodTicks, h.PressTicks)

	session, err := game.NewSession(cfg, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	srv, err := startAPI(cfg, apiAddr, session)
	if err != nil {
		return err
	}
	defer shutdownAPI(srv)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if maxTicks > 0 {
		session.OnFrame(func(info game.FrameInfo) {
			if info.Frame >= uint64(maxTicks) {
				slog.Info("max ticks reached", "tick", info.Frame)
				cancel()
			}
		})
	}

	slog.Info("starting headless run",
		"seed", session.Seed(),
		"interval", sched.Interval(),
		"max_ticks", maxTicks,
	)

	session.Loop().Start()
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return finish(session, cfg, exportPath)
}

// runTerminal renders the session into the terminal with tcell.
func runTerminal(ctx context.Context, cfg *config.Config, opts game.Options, apiAddr string, maxTicks int, exportPath string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	sig := game.NewFrameSignal()
	handler := input.NewHandler(float64(cfg.Screen.Width), float64(cfg.Screen.Height))
	opts.Scheduler = sig
	opts.Pointer = handler

	session, err := game.NewSession(cfg, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	srv, err := startAPI(cfg, apiAddr, session)
	if err != nil {
		return err
	}
	defer shutdownAPI(srv)

	app := terminal.New(screen, cfg, session, sig, handler)
	if err := app.Run(ctx, maxTicks); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return finish(session, cfg, exportPath)
}

// runWindow opens a raylib window and presents one tick per displayed frame.
func runWindow(cfg *config.Config, opts game.Options, apiAddr string, maxTicks int, exportPath string) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Drift")
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyEscape)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	sig := game.NewFrameSignal()
	handler := input.NewHandler(float64(cfg.Screen.Width), float64(cfg.Screen.Height))
	opts.Scheduler = sig
	opts.Pointer = handler

	session, err := game.NewSession(cfg, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	srv, err := startAPI(cfg, apiAddr, session)
	if err != nil {
		return err
	}
	defer shutdownAPI(srv)

	host := renderer.NewHost(cfg, session, sig, handler)
	defer host.Unload()

	host.Run(maxTicks)
	return finish(session, cfg, exportPath)
}

// startAPI starts the HTTP API when an address is configured.
func startAPI(cfg *config.Config, addr string, session *game.Session) (*api.Server, error) {
	if addr == "" {
		addr = cfg.API.Addr
	}
	if addr == "" {
		return nil, nil
	}
	srv := api.NewServer(addr, cfg.API.AllowedOrigins, session)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return srv, nil
}

func shutdownAPI(srv *api.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("api shutdown", "error", err)
	}
}

// finish writes the final canvas when an export path was requested.
func finish(session *game.Session, cfg *config.Config, exportPath string) error {
	loop := session.Loop()
	slog.Info("run finished",
		"frames", loop.Frame(),
		"particles", loop.Particles().Count(),
		"exports", session.Exporter().Count(),
	)
	if exportPath == "" {
		return nil
	}
	if err := game.WriteJPEG(exportPath, loop.Canvas(), cfg.Export.Quality); err != nil {
		return err
	}
	slog.Info("final canvas written", "path", exportPath)
	return nil
}
