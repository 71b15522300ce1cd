package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// DatabaseURL is optional: when empty the audit ledger is disabled and
	// the service runs fully in memory.
	DatabaseURL string
	GeoIPDBPath string

	AllowedOrigins []string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiImageModel string
	GeminiTextModel  string
	OutfitProvider   string

	// DefaultLocale is used when no locale can be detected from the request.
	DefaultLocale string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	RateLimitPerMin     int
	GenerateConcurrency int
	SessionTTL          time.Duration
	SessionCapacity     int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The Gemini API key has no default: the service
// refuses to start without it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		GeminiAPIKey:        strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiImageModel:    getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
		GeminiTextModel:     getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		OutfitProvider:      strings.ToLower(getEnv("OUTFIT_PROVIDER", "gemini")),
		DefaultLocale:       strings.ToLower(getEnv("DEFAULT_LOCALE", "id")),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		GenerateConcurrency: getEnvInt("GENERATE_CONCURRENCY", 2),
		SessionTTL:          time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)),
		SessionCapacity:     getEnvInt("SESSION_CAPACITY", 128),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	if cfg.OutfitProvider != "gemini" && cfg.OutfitProvider != "static" {
		return nil, fmt.Errorf("OUTFIT_PROVIDER must be gemini or static, got %q", cfg.OutfitProvider)
	}

	if cfg.GenerateConcurrency < 1 {
		cfg.GenerateConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return values
}
