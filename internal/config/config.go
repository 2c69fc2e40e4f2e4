package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName               string        `mapstructure:"app_name"`
	Env                   string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	BaseURL               string        `mapstructure:"base_url"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	ProbesFile            string        `mapstructure:"probes_file"`
	PublishersFile        string        `mapstructure:"publishers_file"`
	ProbeIntervalSeconds  int64         `mapstructure:"probe_interval"`
	ProbeInterval         time.Duration `mapstructure:"-"`
	RunOnce               bool          `mapstructure:"run_once"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "envelope-prober")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("probes_file", "./configs/probes.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("probe_interval", 60) // seconds
	v.SetDefault("run_once", false)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/outcomes.db")
	v.SetDefault("storage_ttl_seconds", int64((6*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("invalid base_url %q (must be an absolute URL)", cfg.BaseURL)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.ProbeIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid probe_interval (must be positive seconds)")
	}
	cfg.ProbeInterval = time.Duration(cfg.ProbeIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
