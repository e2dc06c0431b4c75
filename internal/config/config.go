package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBURL      string

	AppPort string
	AppEnv  string

	JWTSecret    string
	JWTExpiresIn time.Duration

	RedisURL string
	CacheTTL time.Duration

	RateLimitWindow      time.Duration
	RateLimitMaxRequests int
	AuthRateLimitMax     int

	CORSAllowedOrigin string
	// TrustProxy takes the client address from X-Forwarded-For and friends.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// LoadConfig loads the configuration or stops the process.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	return cfg
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := databaseFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.AppPort = getEnv("APP_PORT", "3000")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RedisURL = getEnv("REDIS_URL", "redis://localhost:6379")
	cfg.CORSAllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", "*")

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	if cfg.JWTExpiresIn, err = ParseDuration(getEnv("JWT_EXPIRES_IN", "7d")); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	if cfg.CacheTTL, err = ParseDuration(getEnv("CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}

	windowMS, err := getInt("RATE_LIMIT_WINDOW_MS", 900000)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowMS) * time.Millisecond

	if cfg.RateLimitMaxRequests, err = getInt("RATE_LIMIT_MAX_REQUESTS", 100); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimitMax, err = getInt("AUTH_RATE_LIMIT_MAX", 5); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = getBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the connection settings, for tools that never
// serve HTTP.
func LoadDatabase() (*Config, error) {
	_ = godotenv.Load()
	return databaseFromEnv()
}

func databaseFromEnv() (*Config, error) {
	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBURL:      os.Getenv("DB_URL"),
		AppEnv:     getEnv("APP_ENV", "development"),
	}
	if cfg.DBHost == "" && cfg.DBURL == "" {
		return nil, errors.New("DB_HOST or DB_URL must be set")
	}
	return cfg, nil
}

// ParseDuration accepts Go durations ("15m", "24h") and day counts ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}
