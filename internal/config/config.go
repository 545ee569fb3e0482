// Package config provides configuration loading and validation for the
// login and world services.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/retcode/AshEmu/internal/protocol"
)

// Config represents the combined login/world service configuration. A
// single file drives both `cmd/loginserver` and `cmd/worldserver`; each
// binary reads only the section it needs.
type Config struct {
	Login    LoginSettings    `yaml:"login"`
	World    WorldSettings    `yaml:"world"`
	Store    StoreSettings    `yaml:"store"`
	Logging  LoggingSettings  `yaml:"logging"`
	Shutdown ShutdownSettings `yaml:"shutdown"`
}

// LoginSettings configures the SRP6 login listener.
type LoginSettings struct {
	Address          string `yaml:"address"`
	RealmName        string `yaml:"realm_name"`
	RealmHost        string `yaml:"realm_host"`
	RealmPort        int    `yaml:"realm_port"`
	AutoCreateAccount bool  `yaml:"auto_create_account"`
}

// WorldSettings configures the framed world-protocol listener.
type WorldSettings struct {
	Address string `yaml:"address"`
	Build   string `yaml:"build"`
}

// StoreSettings selects and configures the persistence backend.
type StoreSettings struct {
	Driver string `yaml:"driver"` // "memory" or "sqlite"
	Path   string `yaml:"path"`   // sqlite file path, ignored for memory
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ShutdownSettings controls the graceful-stop drain window.
type ShutdownSettings struct {
	DrainTimeout string `yaml:"drain_timeout"`
}

// Load reads and parses the configuration file, applying defaults for any
// field the file omits, then validates the result.
//
//nolint:gosec // G304: config path is an operator-supplied command-line argument
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration the spec calls for out of the box:
// two listeners on their well-known ports and an in-memory store, so a
// fresh checkout runs with no configuration file at all.
func Default() *Config {
	return &Config{
		Login: LoginSettings{
			Address:           ":3724",
			RealmName:         "AshEmu",
			RealmHost:         "127.0.0.1",
			RealmPort:         8085,
			AutoCreateAccount: true,
		},
		World: WorldSettings{
			Address: ":8085",
			Build:   "tbc",
		},
		Store: StoreSettings{
			Driver: "memory",
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
		Shutdown: ShutdownSettings{
			DrainTimeout: "10s",
		},
	}
}

// GetDrainTimeout parses the graceful-shutdown drain window.
func (c *Config) GetDrainTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Shutdown.DrainTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown.drain_timeout: %w", err)
	}
	return d, nil
}

// GetBuild parses the configured world-protocol build flavor.
func (c *Config) GetBuild() (protocol.Build, error) {
	return protocol.ParseBuild(c.World.Build)
}
