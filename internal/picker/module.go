package picker

import (
	"location_saver_backend/internal/geocoding"
	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/logger"
	"location_saver_backend/platform/validator"
)

// Module wires the selection flow routes.
type Module struct {
	machines *Manager
	handler  *Handler
}

// NewModule builds the module. persister may be nil to keep commits
// session-only.
func NewModule(sessions *session.Registry, geo *geocoding.Module, persister Persister, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := RegisterValidators(val); err != nil {
		return nil, err
	}
	machines := NewManager(sessions, geo.Gateway(), geo.Locator(), persister, log)
	return &Module{
		machines: machines,
		handler:  NewHandler(machines, val),
	}, nil
}

// Machines exposes the per-user machines, e.g. to drop them on logout.
func (m *Module) Machines() *Manager {
	return m.machines
}

func (m *Module) Name() string {
	return "picker"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/picker")
	group.GET("", m.handler.Get)
	group.GET("/categories", m.handler.Categories)
	group.POST("/click", m.handler.Click)
	group.POST("/locate", m.handler.Locate)
	group.POST("/search", m.handler.Search)
	group.PATCH("/details", m.handler.UpdateDetails)
	group.POST("/save", m.handler.Save)
	group.POST("/back", m.handler.Back)
}

var _ apphttp.Module = (*Module)(nil)
