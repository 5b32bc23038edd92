package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the server configuration, loaded from the environment with
// optional .env support. Command-line flags override these values.
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
	CSRFKey   string
	Language  string
	LogLevel  slog.Level
}

// Load reads configuration from a .env file (if present) and the
// environment, applying defaults for everything unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		Addr:      getEnv("TILESTOCK_ADDR", ":8080"),
		DBPath:    getEnv("TILESTOCK_DB", "tilestock.sqlite3"),
		JWTSecret: getEnv("TILESTOCK_JWT_SECRET", ""),
		CSRFKey:   getEnv("TILESTOCK_CSRF_KEY", ""),
		Language:  getEnv("TILESTOCK_LANG", "en"),
		LogLevel:  parseLogLevel(getEnv("TILESTOCK_LOG_LEVEL", "info")),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
