package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

// Validate performs comprehensive validation on the configuration,
// one validateX function per concern, and returns the first failure
// wrapped with the name of its concern.
func Validate(cfg *Config) error {
	if err := validateLogin(cfg); err != nil {
		return fmt.Errorf("login validation failed: %w", err)
	}

	if err := validateWorld(cfg); err != nil {
		return fmt.Errorf("world validation failed: %w", err)
	}

	if err := validateStore(cfg); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	if err := validateShutdown(cfg); err != nil {
		return fmt.Errorf("shutdown validation failed: %w", err)
	}

	return nil
}

func validateLogin(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Login.Address); err != nil {
		return fmt.Errorf("login.address is invalid: %w", err)
	}

	if cfg.Login.RealmName == "" {
		return fmt.Errorf("login.realm_name is required")
	}

	if cfg.Login.RealmHost == "" {
		return fmt.Errorf("login.realm_host is required")
	}

	if cfg.Login.RealmPort <= 0 || cfg.Login.RealmPort > 65535 {
		return fmt.Errorf("login.realm_port must be between 1 and 65535")
	}

	return nil
}

func validateWorld(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.World.Address); err != nil {
		return fmt.Errorf("world.address is invalid: %w", err)
	}

	if _, err := cfg.GetBuild(); err != nil {
		return fmt.Errorf("world.build is invalid: %w", err)
	}

	return nil
}

func validateStore(cfg *Config) error {
	switch cfg.Store.Driver {
	case "memory":
		return nil
	case "sqlite":
		if strings.TrimSpace(cfg.Store.Path) == "" {
			return fmt.Errorf("store.path is required when store.driver is sqlite")
		}
		return nil
	default:
		return fmt.Errorf("store.driver must be one of: memory, sqlite")
	}
}

func validateLogging(cfg *Config) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %s", strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "human"}
	if !slices.Contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}

func validateShutdown(cfg *Config) error {
	if _, err := cfg.GetDrainTimeout(); err != nil {
		return err
	}
	return nil
}
