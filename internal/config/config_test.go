package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SHAREIT_DB_PATH", "shareit.db")

	yamlContent := `
app:
  name: shareit-test
database:
  path: "${SHAREIT_DB_PATH}"
gateway:
  server_url: "http://server:9090"
  request_timeout: 3s
  rate_limit:
    rps: 20
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "shareit-test", cfg.App.Name)
	assert.Equal(t, "shareit.db", cfg.Database.Path)
	assert.Equal(t, "http://server:9090", cfg.Gateway.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, 20, cfg.Gateway.RateLimit.Burst)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := Config{Database: DatabaseConfig{Path: "path"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "relative server url", mutate: func(c *Config) { c.Gateway.ServerURL = "server:9090" }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Gateway.Retry.MaxAttempts = 0 }, wantErr: true},
		{
			name: "backup without path",
			mutate: func(c *Config) {
				c.Backup.Enabled = true
				c.Backup.StoragePath = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Backup: BackupConfig{Enabled: true}, Monitoring: MonitoringConfig{PrometheusEnabled: true}}
	cfg.applyDefaults()

	assert.Equal(t, "shareit", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, "http://localhost:9090", cfg.Gateway.ServerURL)
	assert.Equal(t, 3, cfg.Gateway.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Gateway.RateLimit.Window)
	assert.Equal(t, 0, cfg.Gateway.RateLimit.Burst)
	assert.Equal(t, 9100, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval)
	assert.Equal(t, 7, cfg.Backup.RetentionDays)
	assert.Empty(t, cfg.Events.Exchange)
}
