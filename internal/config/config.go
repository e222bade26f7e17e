package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	// DatabasePath is the sqlite file. Empty keeps the store in memory.
	DatabasePath string
	// RedisURL enables the QR PNG cache when set.
	RedisURL string

	PublicBaseURL string
	AdminPassword string
	DefaultViewer string
	TemplatesDir  string

	QRPNGSize      int
	QRCacheTTL     time.Duration
	MaxUploadBytes int64
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file is loaded when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:           getEnv("ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		DatabasePath:   getEnv("DATABASE_PATH", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "https://shikho.com"), "/"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
		DefaultViewer:  getEnv("DEFAULT_VIEWER", "demo"),
		TemplatesDir:   getEnv("TEMPLATES_DIR", "templates"),
		QRPNGSize:      getEnvInt("QR_PNG_SIZE", 256),
		QRCacheTTL:     time.Duration(getEnvInt("QR_CACHE_TTL_MINUTES", 60)) * time.Minute,
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 5)) * 1024 * 1024,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
