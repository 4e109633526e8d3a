package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	Addr string
	Env  string

	// DatabaseURL is a postgres DSN; when empty the relay falls back to a
	// local SQLite file at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// RedisURL is optional; without it presence tracking is disabled.
	RedisURL string

	JWTSecret      string
	AllowedOrigins []string

	// StoreTimeout bounds every conversation-store round trip issued on
	// behalf of one join/send/history operation.
	StoreTimeout time.Duration

	RateLimitPerMinute int
}

// Load reads configuration from environment variables, with a .env file for
// development. Production requires an explicit JWT secret.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:               getEnv("ADDR", ":8080"),
		Env:                getEnv("ENV", "development"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         getEnv("SQLITE_PATH", "chatapp.db"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		StoreTimeout:       time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 5)) * time.Second,
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
	}

	for _, o := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		o = strings.TrimSpace(o)
		if o != "" { cfg.AllowedOrigins = append(cfg.AllowedOrigins, o) }
	}

	if cfg.Env == "production" {
		if os.Getenv("JWT_SECRET") == "" { panic("JWT_SECRET is required in production") }
		if cfg.DatabaseURL == "" { panic("DATABASE_URL is required in production") }
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil { return i }
	}
	return def
}
