// Command loginserver runs the SRP-6 login service: it accepts client
// connections on the configured port, drives each through the
// LOGON_CHALLENGE/LOGON_PROOF/REALM_LIST exchange, and persists session
// keys for the world service to pick up on reconnect.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/retcode/AshEmu/internal/config"
	"github.com/retcode/AshEmu/internal/lifecycle"
	"github.com/retcode/AshEmu/internal/login"
	"github.com/retcode/AshEmu/internal/logging"
	"github.com/retcode/AshEmu/internal/provisioning"
	"github.com/retcode/AshEmu/internal/store"
)

var (
	version = "dev"
	commit  = "none"
)

// acceptRate caps how fast the login listener hands new connections off
// to a session goroutine, a guard against connection-flood abuse the
// reference has no equivalent for.
const acceptRate = 50 // connections/sec

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional; built-in defaults are used if omitted)")
	bootstrapPath := flag.String("bootstrap-credential", "", "path to write a generated admin credential (optional)")
	flag.Parse()

	if err := run(*configPath, *bootstrapPath); err != nil {
		logger := logging.New(logging.LevelError, logging.FormatJSON)
		logger.Error("login service failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(configPath, bootstrapPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	logger := logging.New(parseLogLevel(cfg.Logging.Level), parseLogFormat(cfg.Logging.Format))
	logger.Info("login service starting", map[string]any{
		"version": version,
		"commit":  commit,
		"address": cfg.Login.Address,
		"realm":   cfg.Login.RealmName,
	})

	st, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if bootstrapPath != "" {
		if err := bootstrapAdmin(st, bootstrapPath, logger); err != nil {
			logger.Warn("admin bootstrap skipped", map[string]any{"error": err.Error()})
		}
	}

	listener, err := net.Listen("tcp", cfg.Login.Address)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", cfg.Login.Address, err)
	}

	shutdownManager := lifecycle.NewShutdownManager()
	ctx := shutdownManager.Start(context.Background())

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	logger.Info("login service ready to accept connections")
	acceptLoop(ctx, listener, st, cfg.Login, logger)

	drainTimeout, err := cfg.GetDrainTimeout()
	if err != nil {
		drainTimeout = 10 * time.Second
	}
	_ = lifecycle.GracefulShutdown(context.Background(), func(context.Context) error { return nil }, drainTimeout)

	logger.Info("login service stopped", map[string]any{"reason": shutdownManager.Reason()})
	shutdownManager.Stop()

	return nil
}

func acceptLoop(ctx context.Context, listener net.Listener, st store.Store, loginCfg config.LoginSettings, logger *logging.Logger) {
	limiter := rate.NewLimiter(rate.Limit(acceptRate), acceptRate)

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

		if err := limiter.Wait(ctx); err != nil {
			_ = conn.Close()
			return
		}

		go login.NewSession(conn, st, logger, loginCfg).Run(ctx)
	}
}

func bootstrapAdmin(st store.Store, credentialPath string, logger *logging.Logger) error {
	ctx := context.Background()
	if _, result, _ := st.GetAccount(ctx, provisioning.AdminUsername); result == store.OK {
		return nil
	}

	cred, err := provisioning.GenerateAdminCredential()
	if err != nil {
		return err
	}

	if _, _, err := st.CreateAccount(ctx, cred.Username, cred.Salt, cred.Verifier); err != nil {
		return err
	}

	if err := provisioning.WriteOnce(credentialPath, cred); err != nil {
		return err
	}

	logger.Info("admin account bootstrapped", map[string]any{"credential_file": credentialPath})
	return nil
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
