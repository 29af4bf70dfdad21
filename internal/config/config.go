package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Redis      RedisConfig      `yaml:"redis"`
	Events     EventsConfig     `yaml:"events"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Backup     BackupConfig     `yaml:"backup"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type GatewayConfig struct {
	Port           int             `yaml:"port"`
	ServerURL      string          `yaml:"server_url"`
	RequestTimeout time.Duration   `yaml:"request_timeout"`
	Retry          RetryConfig     `yaml:"retry"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// RateLimitConfig applies per actor. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS    float64       `yaml:"rps"`
	Burst  int           `yaml:"burst"`
	Window time.Duration `yaml:"window"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
	StoragePath   string        `yaml:"storage_path"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Подставляем переменные окружения до разбора YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Gateway.ServerURL != "" {
		u, err := url.Parse(c.Gateway.ServerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("gateway server_url %q is not an absolute URL", c.Gateway.ServerURL)
		}
	}

	if c.Gateway.Retry.MaxAttempts < 1 {
		return errors.New("gateway retry max_attempts must be at least 1")
	}

	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		return errors.New("backup storage_path is required when backups are enabled")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9090
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Gateway.ServerURL == "" {
		c.Gateway.ServerURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Gateway.RequestTimeout == 0 {
		c.Gateway.RequestTimeout = 5 * time.Second
	}
	if c.Gateway.Retry.MaxAttempts == 0 {
		c.Gateway.Retry.MaxAttempts = 3
	}
	if c.Gateway.Retry.BaseDelay == 0 {
		c.Gateway.Retry.BaseDelay = 100 * time.Millisecond
	}
	if c.Gateway.Retry.MaxDelay == 0 {
		c.Gateway.Retry.MaxDelay = 2 * time.Second
	}
	if c.Gateway.RateLimit.Window == 0 {
		c.Gateway.RateLimit.Window = time.Second
	}
	if c.Gateway.RateLimit.RPS > 0 && c.Gateway.RateLimit.Burst == 0 {
		c.Gateway.RateLimit.Burst = int(c.Gateway.RateLimit.RPS)
		if c.Gateway.RateLimit.Burst < 1 {
			c.Gateway.RateLimit.Burst = 1
		}
	}

	if c.Events.AMQPURL != "" && c.Events.Exchange == "" {
		c.Events.Exchange = "shareit.events"
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9100
	}

	if c.Backup.Enabled {
		if c.Backup.Interval == 0 {
			c.Backup.Interval = 24 * time.Hour
		}
		if c.Backup.RetentionDays == 0 {
			c.Backup.RetentionDays = 7
		}
	}
}
