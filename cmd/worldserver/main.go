// Command worldserver runs the framed world protocol service: it accepts
// client connections that already hold a session key from the login
// service, drives the header-cipher handshake, character selection, and
// the post-login packet sequence that puts the client's avatar on screen.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/retcode/AshEmu/internal/config"
	"github.com/retcode/AshEmu/internal/lifecycle"
	"github.com/retcode/AshEmu/internal/logging"
	"github.com/retcode/AshEmu/internal/protocol"
	"github.com/retcode/AshEmu/internal/store"
	"github.com/retcode/AshEmu/internal/world"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional; built-in defaults are used if omitted)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger := logging.New(logging.LevelError, logging.FormatJSON)
		logger.Error("world service failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	logger := logging.New(parseLogLevel(cfg.Logging.Level), parseLogFormat(cfg.Logging.Format))

	build, err := cfg.GetBuild()
	if err != nil {
		return fmt.Errorf("invalid build flavor: %w", err)
	}

	logger.Info("world service starting", map[string]any{
		"version": version,
		"commit":  commit,
		"address": cfg.World.Address,
		"build":   build.String(),
	})

	st, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	listener, err := net.Listen("tcp", cfg.World.Address)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", cfg.World.Address, err)
	}

	shutdownManager := lifecycle.NewShutdownManager()
	ctx := shutdownManager.Start(context.Background())

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	logger.Info("world service ready to accept connections")
	acceptLoop(ctx, listener, st, logger, build)

	drainTimeout, err := cfg.GetDrainTimeout()
	if err != nil {
		drainTimeout = 10 * time.Second
	}
	_ = lifecycle.GracefulShutdown(context.Background(), func(context.Context) error { return nil }, drainTimeout)

	logger.Info("world service stopped", map[string]any{"reason": shutdownManager.Reason()})
	shutdownManager.Stop()

	return nil
}

func acceptLoop(ctx context.Context, listener net.Listener, st store.Store, logger *logging.Logger, build protocol.Build) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Error("accept failed", map[string]any{"error": err.Error()})
				return
			}
		}

		session := world.NewSession(conn, st, logger, build)
		go session.Run(ctx)
	}
}

func openStore(cfg config.StoreSettings) (store.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.OpenSQLiteStore(cfg.Path)
	default:
		return store.NewMemoryStore(), nil
	}
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseLogFormat(format string) logging.LogFormat {
	if format == "human" {
		return logging.FormatHuman
	}
	return logging.FormatJSON
}
