// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"location_saver_backend/internal/auth/handler"
	"location_saver_backend/internal/auth/repository"
	"location_saver_backend/internal/auth/service"
	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/platform/config"
	"location_saver_backend/platform/logger"
	"location_saver_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the auth module. hooks may be nil.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, revoked RevocationStore, hooks SessionHooks, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, revoked, hooks, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	public := ctx.V1.Group("/auth")
	public.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)

	m.handler.RegisterProtectedRoutes(ctx.Protected.Group("/auth"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
