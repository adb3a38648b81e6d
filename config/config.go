package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Checkin  CheckinConfig
	AWS      AWSConfig
	Worker   WorkerConfig
	Locale   LocaleConfig
	Limits   LimitsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	Environment        string // "development" or "production"
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// IsProduction reports whether the server runs with production settings (secure cookies etc.).
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/event_master?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig holds auth session cookie settings.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// CheckinConfig holds signing settings for attendance check-in tokens.
type CheckinConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the bucket used for dashboard report exports.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ReportsBucket        string
	PresignExpireMinutes int
}

// WorkerConfig controls the dashboard refresh worker.
type WorkerConfig struct {
	InProcess   bool   // run the worker loop inside the HTTP server process
	RefreshCron string // cron spec for the full dashboard sweep; empty disables it
}

// LocaleConfig holds the default message locale.
type LocaleConfig struct {
	Default string
}

// LimitsConfig holds request limits.
type LimitsConfig struct {
	LoginAttempts int // per client IP per window
	LoginWindow   time.Duration
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			Environment:        getEnv("APP_ENV", "development"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "event_master"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "event_master_session"),
			TTL:        time.Duration(getEnvInt("SESSION_TTL_DAYS", 30)) * 24 * time.Hour,
		},
		Checkin: CheckinConfig{
			Secret:      getEnv("CHECKIN_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("CHECKIN_EXPIRE_HOURS", 24*30),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ReportsBucket:        getEnv("AWS_S3_REPORTS_BUCKET", "event-master-reports"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Worker: WorkerConfig{
			InProcess:   getEnvBool("WORKER_IN_PROCESS", true),
			RefreshCron: getEnv("DASHBOARD_REFRESH_CRON", "@every 15m"),
		},
		Locale: LocaleConfig{
			Default: getEnv("DEFAULT_LOCALE", "en"),
		},
		Limits: LimitsConfig{
			LoginAttempts: getEnvInt("LOGIN_ATTEMPTS_PER_WINDOW", 10),
			LoginWindow:   time.Duration(getEnvInt("LOGIN_WINDOW_SEC", 60)) * time.Second,
		},
	}
	if cfg.Server.IsProduction() && cfg.Checkin.Secret == "change-me-in-production" {
		return nil, fmt.Errorf("CHECKIN_SECRET must be set in production")
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
