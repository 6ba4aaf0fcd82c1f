// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for the Redis-backed cache, token denylist and task queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// GeocodingConfig provides settings for the reverse geocoding and search providers.
type GeocodingConfig interface {
	GetGeocoderProvider() string
	GetNominatimBaseURL() string
	GetNominatimUserAgent() string
	GetGoogleMapsAPIKey() string
	GetGoogleMapsBaseURL() string
	GetGeocodeCacheTTL() time.Duration
	GetGeocoderTimeout() time.Duration
	GetSearchResultLimit() int
	GetIPLocatorURL() string
	IsIPLocatorEnabled() bool
}

// SessionConfig provides settings for the in-memory application session stores.
type SessionConfig interface {
	GetSessionIdleTTL() time.Duration
	GetSessionSweepInterval() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTAccessSecret      string
	AccessTokenTTL       time.Duration
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	GeocoderProvider     string
	NominatimBaseURL     string
	NominatimUserAgent   string
	GoogleMapsAPIKey     string
	GoogleMapsBaseURL    string
	GeocodeCacheTTL      time.Duration
	GeocoderTimeout      time.Duration
	SearchResultLimit    int
	IPLocatorURL         string
	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig / AuthServiceConfig implementation
func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) IsRedisEnabled() bool      { return c.RedisURL != "" }

// GeocodingConfig implementation
func (c *Config) GetGeocoderProvider() string       { return c.GeocoderProvider }
func (c *Config) GetNominatimBaseURL() string       { return c.NominatimBaseURL }
func (c *Config) GetNominatimUserAgent() string     { return c.NominatimUserAgent }
func (c *Config) GetGoogleMapsAPIKey() string       { return c.GoogleMapsAPIKey }
func (c *Config) GetGoogleMapsBaseURL() string      { return c.GoogleMapsBaseURL }
func (c *Config) GetGeocodeCacheTTL() time.Duration { return c.GeocodeCacheTTL }
func (c *Config) GetGeocoderTimeout() time.Duration { return c.GeocoderTimeout }
func (c *Config) GetSearchResultLimit() int         { return c.SearchResultLimit }
func (c *Config) GetIPLocatorURL() string           { return c.IPLocatorURL }
func (c *Config) IsIPLocatorEnabled() bool          { return c.IPLocatorURL != "" }

// SessionConfig implementation
func (c *Config) GetSessionIdleTTL() time.Duration       { return c.SessionIdleTTL }
func (c *Config) GetSessionSweepInterval() time.Duration { return c.SessionSweepInterval }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}
	corsCredsDefault := "true"
	if corsAllowAll {
		corsCredsDefault = "false"
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:       mustDuration(getEnv("JWT_ACCESS_TTL", "24h")),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", corsCredsDefault), "true"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "addresses"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		GeocoderProvider:     strings.ToLower(getEnv("GEOCODER_PROVIDER", "nominatim")),
		NominatimBaseURL:     getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent:   getEnv("NOMINATIM_USER_AGENT", "LocationSaver/1.0"),
		GoogleMapsAPIKey:     getEnv("GOOGLE_MAPS_API_KEY", ""),
		GoogleMapsBaseURL:    getEnv("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com/maps/api"),
		GeocodeCacheTTL:      mustDuration(getEnv("GEOCODE_CACHE_TTL", "168h")),
		GeocoderTimeout:      mustDuration(getEnv("GEOCODER_TIMEOUT", "5s")),
		SearchResultLimit:    mustInt(getEnv("SEARCH_RESULT_LIMIT", "5")),
		IPLocatorURL:         getEnv("IP_LOCATOR_URL", ""),
		SessionIdleTTL:       mustDuration(getEnv("SESSION_IDLE_TTL", "2h")),
		SessionSweepInterval: mustDuration(getEnv("SESSION_SWEEP_INTERVAL", "5m")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL must be a positive duration")
	}
	switch cfg.GeocoderProvider {
	case "nominatim":
	case "google":
		if cfg.GoogleMapsAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required when GEOCODER_PROVIDER is google")
		}
	default:
		return nil, fmt.Errorf("unsupported GEOCODER_PROVIDER %q", cfg.GeocoderProvider)
	}
	if !cfg.CORSAllowAll && len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin unless CORS_ALLOW_ALL is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
