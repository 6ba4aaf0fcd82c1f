package http

import (
	"context"

	"location_saver_backend/platform/config"
	"location_saver_backend/platform/httpkit"
	"location_saver_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health entries are pinged by the readiness probe, keyed by name.
	Health map[string]HealthChecker
	// Revocations rejects logged-out tokens. Nil disables the check.
	Revocations httpkit.RevocationChecker
	Modules     []Module
}
