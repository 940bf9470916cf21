package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	History   HistoryConfig   `yaml:"history"`
	Strength  StrengthConfig  `yaml:"strength"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// DevUserID is the user attributed to requests when Tailscale is off.
	DevUserID int `yaml:"dev_user_id"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// HistoryConfig tunes PR history fetching.
type HistoryConfig struct {
	CacheEnabled     bool          `yaml:"cache_enabled"`
	CacheSizeMB      int           `yaml:"cache_size_mb"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	FetchConcurrency int           `yaml:"fetch_concurrency"`
}

type StrengthConfig struct {
	// StandardsFile replaces the built-in standards table when set.
	StandardsFile string `yaml:"standards_file"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, loads an optional .env file next to the
// working directory, then applies environment variable overrides.
// Env vars use the prefix IRONLOG_ and underscore-separated paths:
//
//	IRONLOG_SERVER_HOST, IRONLOG_SERVER_PORT, IRONLOG_SERVER_DEV_USER_ID,
//	IRONLOG_DB_HOST, IRONLOG_DB_PORT, IRONLOG_DB_NAME,
//	IRONLOG_DB_USER, IRONLOG_DB_PASSWORD, IRONLOG_DB_SSLMODE,
//	IRONLOG_AUTH_API_KEY,
//	IRONLOG_TAILSCALE_ENABLED, IRONLOG_TAILSCALE_HOSTNAME, IRONLOG_TAILSCALE_STATE_DIR,
//	IRONLOG_HISTORY_CACHE_ENABLED, IRONLOG_HISTORY_CACHE_SIZE_MB,
//	IRONLOG_HISTORY_CACHE_TTL, IRONLOG_HISTORY_FETCH_CONCURRENCY,
//	IRONLOG_STRENGTH_STANDARDS_FILE, IRONLOG_METRICS_ENABLED
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{DevUserID: 1},
		Tailscale: TailscaleConfig{
			Hostname: "ironlog",
			StateDir: "tsnet-state",
		},
		History: HistoryConfig{
			CacheEnabled:     true,
			CacheSizeMB:      16,
			CacheTTL:         10 * time.Minute,
			FetchConcurrency: 4,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// loadDotEnv populates unset environment variables from path. A missing file
// is not an error. Variables already set in the environment win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func applyEnvOverrides(cfg *Config) {
	setString("IRONLOG_SERVER_HOST", &cfg.Server.Host)
	setInt("IRONLOG_SERVER_PORT", &cfg.Server.Port)
	setInt("IRONLOG_SERVER_DEV_USER_ID", &cfg.Server.DevUserID)

	setString("IRONLOG_DB_HOST", &cfg.Database.Host)
	setInt("IRONLOG_DB_PORT", &cfg.Database.Port)
	setString("IRONLOG_DB_NAME", &cfg.Database.Name)
	setString("IRONLOG_DB_USER", &cfg.Database.User)
	setString("IRONLOG_DB_PASSWORD", &cfg.Database.Password)
	setString("IRONLOG_DB_SSLMODE", &cfg.Database.SSLMode)

	setString("IRONLOG_AUTH_API_KEY", &cfg.Auth.APIKey)

	setBool("IRONLOG_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	setString("IRONLOG_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("IRONLOG_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)

	setBool("IRONLOG_HISTORY_CACHE_ENABLED", &cfg.History.CacheEnabled)
	setInt("IRONLOG_HISTORY_CACHE_SIZE_MB", &cfg.History.CacheSizeMB)
	if v := os.Getenv("IRONLOG_HISTORY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.History.CacheTTL = d
		}
	}
	setInt("IRONLOG_HISTORY_FETCH_CONCURRENCY", &cfg.History.FetchConcurrency)

	setString("IRONLOG_STRENGTH_STANDARDS_FILE", &cfg.Strength.StandardsFile)
	setBool("IRONLOG_METRICS_ENABLED", &cfg.Metrics.Enabled)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.History.FetchConcurrency < 1 {
		return fmt.Errorf("history.fetch_concurrency must be at least 1")
	}
	if c.History.CacheEnabled && c.History.CacheSizeMB < 1 {
		return fmt.Errorf("history.cache_size_mb must be at least 1")
	}
	if c.History.CacheTTL < 0 {
		return fmt.Errorf("history.cache_ttl must not be negative")
	}
	return nil
}
