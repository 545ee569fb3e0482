package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retcode/AshEmu/internal/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()

	configYAML := `
login:
  address: ":3724"
  realm_name: "AshEmu"
  realm_host: "127.0.0.1"
  realm_port: 8085
  auto_create_account: true

world:
  address: ":8085"
  build: "tbc"

store:
  driver: "memory"

logging:
  level: "info"
  format: "json"

shutdown:
  drain_timeout: "10s"
`

	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(configYAML), 0o644))

	cfg, err := config.Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":3724", cfg.Login.Address)
	assert.Equal(t, "AshEmu", cfg.Login.RealmName)
	assert.Equal(t, 8085, cfg.Login.RealmPort)
	assert.True(t, cfg.Login.AutoCreateAccount)
	assert.Equal(t, "tbc", cfg.World.Build)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("invalid: [yaml"), 0o644))

	cfg, err := config.Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, config.Validate(config.Default()))
}

func TestGetDrainTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Shutdown.DrainTimeout = "15s"

	d, err := cfg.GetDrainTimeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)
}

func TestGetDrainTimeout_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Shutdown.DrainTimeout = "not-a-duration"

	_, err := cfg.GetDrainTimeout()
	assert.Error(t, err)
}

func TestGetBuild(t *testing.T) {
	cfg := config.Default()
	cfg.World.Build = "vanilla"

	b, err := cfg.GetBuild()
	require.NoError(t, err)
	assert.Equal(t, "vanilla", b.String())
}

func TestValidate_InvalidListenerAddress(t *testing.T) {
	cfg := config.Default()
	cfg.World.Address = "not-an-address"

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "world.address is invalid")
}

func TestValidate_MissingRealmName(t *testing.T) {
	cfg := config.Default()
	cfg.Login.RealmName = ""

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "realm_name is required")
}

func TestValidate_InvalidRealmPort(t *testing.T) {
	cfg := config.Default()
	cfg.Login.RealmPort = 99999

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "realm_port must be between 1 and 65535")
}

func TestValidate_SqliteRequiresPath(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = ""

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")
}

func TestValidate_UnknownStoreDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "postgres"

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be one of")
}

func TestValidate_InvalidLoggingLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "verbose"

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level must be one of")
}
