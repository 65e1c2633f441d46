package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Export    ExportConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// MaxBodyBytes caps raw payloads posted to /normalize and /export.
	MaxBodyBytes int64 // default: 10 MiB
}

// UpstreamConfig points at the remote scrape service.
type UpstreamConfig struct {
	// BaseURL is the service root; the category is appended as a path segment.
	BaseURL string // default: "https://webpage-fetcher-backend.vercel.app/api"

	// Timeout bounds one fetch round trip.
	Timeout time.Duration // default: 30s

	// APIKey, when set, is sent as X-API-Key.
	APIKey string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// StoreConfig controls how long all-details bundles stay downloadable.
type StoreConfig struct {
	MaxEntries int           // default: 1000
	TTL        time.Duration // default: 1h
}

// ExportConfig controls workbook assembly.
type ExportConfig struct {
	// IncludeSecondaryContent keeps the Video Details and Page Properties sheets.
	IncludeSecondaryContent bool // default: true

	// HeaderStyle is "keys" (field names) or "titles" (display names).
	HeaderStyle string // default: "keys"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         envOr("SCRAPESHEET_HOST", "0.0.0.0"),
			Port:         envIntOr("SCRAPESHEET_PORT", 8080),
			Mode:         envOr("SCRAPESHEET_MODE", "release"),
			MaxBodyBytes: int64(envIntOr("SCRAPESHEET_MAX_BODY_BYTES", 10*1024*1024)),
		},
		Upstream: UpstreamConfig{
			BaseURL: strings.TrimRight(envOr("SCRAPESHEET_UPSTREAM_URL", "https://webpage-fetcher-backend.vercel.app/api"), "/"),
			Timeout: envDurationOr("SCRAPESHEET_UPSTREAM_TIMEOUT", 30*time.Second),
			APIKey:  os.Getenv("SCRAPESHEET_UPSTREAM_API_KEY"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SCRAPESHEET_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SCRAPESHEET_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCRAPESHEET_RATE_RPS", 5.0),
			Burst:             envIntOr("SCRAPESHEET_RATE_BURST", 10),
		},
		Store: StoreConfig{
			MaxEntries: envIntOr("SCRAPESHEET_STORE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("SCRAPESHEET_STORE_TTL", time.Hour),
		},
		Export: ExportConfig{
			IncludeSecondaryContent: envBoolOr("SCRAPESHEET_INCLUDE_SECONDARY", true),
			HeaderStyle:             envOr("SCRAPESHEET_HEADER_STYLE", "keys"),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPESHEET_LOG_LEVEL", "info"),
			Format: envOr("SCRAPESHEET_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
