package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	Database  DatabaseConfig
	RedisURL  string
	Auth      AuthConfig
	Mail      MailConfig
	Search    SearchConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	CodeTTL   time.Duration
}

type MailConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	UseTLS      bool
	SendTimeout time.Duration
}

type SearchConfig struct {
	MeiliHost      string
	MeiliMasterKey string
}

type StorageConfig struct {
	CloudinaryURL          string
	CloudinaryUploadFolder string
}

type RateLimitConfig struct {
	SignupResend time.Duration
	Review       time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "yamdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me"),
		},

		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("EMAIL_FROM_ADDRESS", "noreply@yamdb.local"),
		},

		Search: SearchConfig{
			MeiliHost:      os.Getenv("MEILISEARCH_HOST"),
			MeiliMasterKey: os.Getenv("MEILI_MASTER_KEY"),
		},

		Storage: StorageConfig{
			CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
			CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "yamdb"),
		},
	}

	var err error
	if cfg.Database.MaxOpenConns, err = parseInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = parseInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = parseDuration("DB_CONN_MAX_LIFETIME", "5m"); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenTTL, err = parseDuration("JWT_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.Auth.CodeTTL, err = parseDuration("AUTH_CODE_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.Mail.Port, err = parseInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.Mail.UseTLS, err = parseBool("SMTP_USE_TLS", true); err != nil {
		return nil, err
	}
	if cfg.Mail.SendTimeout, err = parseDuration("SMTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.SignupResend, err = parseDuration("RATE_LIMIT_SIGNUP", "0s"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Review, err = parseDuration("RATE_LIMIT_REVIEW", "0s"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations that cannot run outside development.
func (c *Config) Validate() error {
	if c.AppEnv == "production" && c.Auth.JWTSecret == "change-me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
