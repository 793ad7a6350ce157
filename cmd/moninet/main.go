// Package main provides the entry point for moninet, a small always-visible
// network speed and data usage overlay for Linux.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shini4i/moninet/internal/config"
	"github.com/shini4i/moninet/internal/control/client"
	"github.com/shini4i/moninet/internal/control/protocol"
	"github.com/shini4i/moninet/internal/control/server"
	"github.com/shini4i/moninet/internal/counters"
	"github.com/shini4i/moninet/internal/display"
	"github.com/shini4i/moninet/internal/logging"
	"github.com/shini4i/moninet/internal/metrics"
	"github.com/shini4i/moninet/internal/stats"
	"github.com/shini4i/moninet/internal/tui"
	"github.com/shini4i/moninet/internal/ui"
	"github.com/shini4i/moninet/internal/usage"
)

const restoreTimeout = 2 * time.Second

func main() {
	useTUI := flag.Bool("tui", false, "Render the overlay in the terminal instead of a window")
	configDir := flag.String("config", "", "Configuration directory (default $XDG_CONFIG_HOME/moninet)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("moninet %s\n", ui.Version)
		os.Exit(0)
	}

	logging.SetupFromEnv()

	os.Exit(run(*useTUI, *configDir))
}

func run(useTUI bool, configDir string) int {
	manager, err := newConfigManager(configDir)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	cfg := manager.GetConfig()

	if useTUI {
		// The terminal belongs to the overlay; logs go next to the usage file.
		closeLog, err := logToFile(filepath.Join(filepath.Dir(manager.UsageFile()), "moninet.log"))
		if err != nil {
			slog.Error("Failed to open log file", "error", err)
			return 1
		}
		defer closeLog()
	}

	source, err := counters.NewSource(cfg.Interfaces)
	if err != nil {
		slog.Error("Failed to select network interfaces", "error", err)
		return 1
	}

	collector, err := stats.NewCollector(source, usage.NewStore(manager.UsageFile()), stats.Options{
		Period: cfg.SamplePeriod(),
		Unit:   cfg.Unit(),
	})
	if err != nil {
		slog.Error("Failed to create collector", "error", err)
		return 1
	}
	controller := display.NewController(collector, manager)

	var (
		app  *ui.App
		feed *tui.Feed
	)
	restore := func() { slog.Info("Restore requested") }
	if useTUI {
		feed = tui.NewFeed()
	} else {
		app = ui.NewApp(&ui.AppDeps{Config: manager, Controller: controller})
		restore = app.Restore
	}

	srv := server.NewServer(server.DefaultSocketPath(), server.NewHandler(controller, restore))
	if err := srv.Start(); err != nil {
		if errors.Is(err, server.ErrAlreadyRunning) {
			handOver(srv.SocketPath())
			return 0
		}
		slog.Error("Failed to start control server", "error", err)
		return 1
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			slog.Warn("Failed to stop control server", "error", err)
		}
	}()

	collector.OnReading(metrics.Observe)
	collector.OnReading(func(r stats.Reading) {
		event, err := protocol.NewEvent(protocol.EventReading, server.StatusFromReading(r))
		if err != nil {
			slog.Error("Failed to build reading event", "error", err)
			return
		}
		srv.Broadcast(event)
	})
	if app != nil {
		collector.OnReading(app.HandleReading)
	} else {
		collector.OnReading(feed.Publish)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := collector.Start(ctx); err != nil {
		slog.Error("Failed to start collector", "error", err)
		return 1
	}
	defer collector.Stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				slog.Error("Metrics endpoint stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	slog.Info("Starting moninet", "version", ui.Version, "tui", useTUI, "socket", srv.SocketPath())

	if useTUI {
		if err := tui.Run(ctx, controller, feed); err != nil {
			slog.Error("Terminal overlay failed", "error", err)
			return 1
		}
		return 0
	}

	// Quit the GTK main loop on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	// GTK must not see our own flags.
	return app.Run(os.Args[:1])
}

// handOver asks the running instance to show itself.
func handOver(socketPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	if err := client.Restore(ctx, socketPath); err != nil {
		slog.Warn("Failed to ask the running instance to restore", "error", err)
	}
	slog.Info("Another instance is already running")
}

func newConfigManager(configDir string) (*config.Manager, error) {
	if configDir == "" {
		return config.NewManager()
	}
	paths, err := config.GetPaths()
	if err != nil {
		return nil, err
	}
	return config.NewManagerWithPaths(config.NewPaths(configDir, paths.DataDir))
}

// logToFile redirects the global logger to path and returns its closer.
func logToFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := logging.LevelInfo
	if os.Getenv(logging.EnvDebug) == "1" {
		level = logging.LevelDebug
	}
	slog.SetDefault(logging.New(f, level, logging.FormatText))

	return func() { _ = f.Close() }, nil
}
