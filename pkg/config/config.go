package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Offline store (SQLite)
	SQLitePath string

	// Redis
	Redis RedisConfig

	// Statistics feeds
	Feed FeedConfig

	// Engine defaults
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// FeedConfig holds statistics feed endpoints (CBS 물가지수, BOI 환율)
type FeedConfig struct {
	CBSBaseURL     string
	BOIBaseURL     string
	RequestsPerSec int
	Timeout        time.Duration
	LastMonths     int // 최근 N개월 재수집
}

// EngineConfig holds the user-level defaults passed into every deadline call
type EngineConfig struct {
	DefaultNoticeDays       int
	DefaultOptionNoticeDays int
	SafetyBufferDays        int
	AlertLeadDays           int
	PolicyFile              string // optional YAML override
	RecomputeWorkers        int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "rentix"),
			User:            getEnv("DB_USER", "rentix"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		SQLitePath: getEnv("SQLITE_PATH", ""),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Feed: FeedConfig{
			CBSBaseURL:     getEnv("CBS_BASE_URL", "https://api.cbs.gov.il"),
			BOIBaseURL:     getEnv("BOI_BASE_URL", "https://edge.boi.org.il"),
			RequestsPerSec: getEnvAsInt("FEED_REQUESTS_PER_SEC", 2),
			Timeout:        getEnvAsDuration("FEED_TIMEOUT", "30s"),
			LastMonths:     getEnvAsInt("FEED_LAST_MONTHS", 3),
		},

		Engine: EngineConfig{
			DefaultNoticeDays:       getEnvAsInt("DEFAULT_NOTICE_DAYS", 100),
			DefaultOptionNoticeDays: getEnvAsInt("DEFAULT_OPTION_NOTICE_DAYS", 60),
			SafetyBufferDays:        getEnvAsInt("SAFETY_BUFFER_DAYS", 10),
			AlertLeadDays:           getEnvAsInt("ALERT_LEAD_DAYS", 30),
			PolicyFile:              getEnv("ENGINE_POLICY_FILE", ""),
			RecomputeWorkers:        getEnvAsInt("RECOMPUTE_WORKERS", 8),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Engine defaults feed straight into deadline math, so they must be usable
	if c.Engine.DefaultNoticeDays < 1 {
		return fmt.Errorf("DEFAULT_NOTICE_DAYS must be >= 1")
	}
	if c.Engine.DefaultOptionNoticeDays < 1 {
		return fmt.Errorf("DEFAULT_OPTION_NOTICE_DAYS must be >= 1")
	}
	if c.Engine.SafetyBufferDays < 1 {
		return fmt.Errorf("SAFETY_BUFFER_DAYS must be >= 1")
	}
	if c.Engine.AlertLeadDays < 0 {
		return fmt.Errorf("ALERT_LEAD_DAYS must be >= 0")
	}
	if c.Engine.RecomputeWorkers < 1 {
		return fmt.Errorf("RECOMPUTE_WORKERS must be >= 1")
	}

	return nil
}

// RequireDatabase checks that a PostgreSQL URL is configured.
// DB는 api/scheduler 에서만 필수 (calc, deadline 은 DB 없이 동작)
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
