package session

import (
	"context"

	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/platform/config"
	"location_saver_backend/platform/logger"
)

// Module owns the per-user session registry and its janitor.
type Module struct {
	registry *Registry
	handler  *Handler
}

func NewModule(cfg config.SessionConfig, log *logger.Logger) *Module {
	registry := NewRegistry(cfg.GetSessionIdleTTL(), cfg.GetSessionSweepInterval(), log)
	return &Module{
		registry: registry,
		handler:  NewHandler(registry),
	}
}

func (m *Module) Registry() *Registry {
	return m.registry
}

// RunJanitor evicts idle sessions until ctx is cancelled.
func (m *Module) RunJanitor(ctx context.Context) error {
	m.registry.Run(ctx)
	return nil
}

func (m *Module) Name() string {
	return "session"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/session", m.handler.Get)
}

var _ apphttp.Module = (*Module)(nil)
