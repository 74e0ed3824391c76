package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the service.
type Config struct {
	ListenAddr    string `yaml:"listen_addr"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	Headless  bool   `yaml:"headless"`
	UserAgent string `yaml:"user_agent"`

	MaxConcurrentJobs int64 `yaml:"max_concurrent_jobs"`
	DefaultMaxResults int   `yaml:"default_max_results"`

	// Timing
	NavTimeout    time.Duration `yaml:"nav_timeout"`
	AuditTimeout  time.Duration `yaml:"audit_timeout"`
	PanelTimeout  time.Duration `yaml:"panel_timeout"`
	GlobalTimeout time.Duration `yaml:"global_timeout"`

	// Geocoder (Nominatim)
	GeocoderBaseURL   string `yaml:"geocoder_base_url"`
	GeocoderUserAgent string `yaml:"geocoder_user_agent"`
	GeocoderEmail     string `yaml:"geocoder_email"`

	// Audit
	VerifyEmailMX bool `yaml:"verify_email_mx"`

	// PostgreSQL archive (optional; empty host disables archiving)
	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		ListenAddr:    ":3000",
		ScreenshotDir: "screenshots",
		Headless:      true,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",

		MaxConcurrentJobs: 2,
		DefaultMaxResults: 50,

		NavTimeout:    60 * time.Second,
		AuditTimeout:  25 * time.Second,
		PanelTimeout:  10 * time.Second,
		GlobalTimeout: 90 * time.Minute,

		GeocoderBaseURL:   "https://nominatim.openstreetmap.org/search",
		GeocoderUserAgent: "bizradar/1.0",

		DBPort:    5432,
		DBSSLMode: "disable",
	}
}

// Load builds the effective configuration: defaults, then the optional YAML
// file at path (empty path skips it), then environment variables on top.
// A .env file in the working directory is honoured.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.ScreenshotDir = getEnv("SCREENSHOT_DIR", cfg.ScreenshotDir)
	cfg.Headless = getEnvBool("HEADLESS", cfg.Headless)
	cfg.UserAgent = getEnv("USER_AGENT", cfg.UserAgent)
	cfg.MaxConcurrentJobs = int64(getEnvInt("MAX_CONCURRENT_JOBS", int(cfg.MaxConcurrentJobs)))
	cfg.DefaultMaxResults = getEnvInt("DEFAULT_MAX_RESULTS", cfg.DefaultMaxResults)
	cfg.GeocoderBaseURL = getEnv("GEOCODER_BASE_URL", cfg.GeocoderBaseURL)
	cfg.GeocoderUserAgent = getEnv("GEOCODER_USER_AGENT", cfg.GeocoderUserAgent)
	cfg.GeocoderEmail = getEnv("GEOCODER_EMAIL", cfg.GeocoderEmail)
	cfg.VerifyEmailMX = getEnvBool("VERIFY_EMAIL_MX", cfg.VerifyEmailMX)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnvInt("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnv("DB_SSLMODE", cfg.DBSSLMode)

	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}

	return cfg, nil
}

// ArchiveEnabled reports whether a Postgres archive target is configured.
func (c Config) ArchiveEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
