package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	LTIaaSBaseURL      string        `mapstructure:"ltiaas_base_url"`
	LTIaaSAPIKey       string        `mapstructure:"ltiaas_api_key"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	DeploymentsFile    string        `mapstructure:"deployments_file"`
	PublishersFile     string        `mapstructure:"publishers_file"`

	HTTPAddr           string   `mapstructure:"http_addr"`
	CORSAllowedOrigins []string `mapstructure:"-"`
	CORSOriginsRaw     string   `mapstructure:"cors_allowed_origins"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	LaunchTTLSeconds       int64         `mapstructure:"launch_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	LaunchTTL              time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "ltiaas-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("ltiaas_base_url", "")
	v.SetDefault("ltiaas_api_key", "")
	v.SetDefault("http_timeout_seconds", 0) // transport default
	v.SetDefault("deployments_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/launches.db")
	v.SetDefault("launch_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64(time.Hour/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.LTIaaSBaseURL = strings.TrimSpace(cfg.LTIaaSBaseURL)
	cfg.LTIaaSAPIKey = strings.TrimSpace(cfg.LTIaaSAPIKey)

	if cfg.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.LaunchTTLSeconds <= 0 {
		return fmt.Errorf("invalid launch_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.LaunchTTL = time.Duration(cfg.LaunchTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	cfg.CORSAllowedOrigins = splitList(cfg.CORSOriginsRaw)
	return nil
}

// HasDefaultDeployment reports whether a single deployment is configured via env.
func (cfg *Config) HasDefaultDeployment() bool {
	return cfg.LTIaaSBaseURL != "" && cfg.LTIaaSAPIKey != ""
}

// LogSafe returns a copy with secrets masked, for startup logging.
func (cfg Config) LogSafe() Config {
	if cfg.LTIaaSAPIKey != "" {
		cfg.LTIaaSAPIKey = "***"
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
