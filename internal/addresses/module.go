// Package addresses provides the saved-address bounded context module.
package addresses

import (
	"location_saver_backend/internal/addresses/handler"
	"location_saver_backend/internal/addresses/repository"
	"location_saver_backend/internal/addresses/service"
	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/internal/picker"
	"location_saver_backend/platform/logger"
	"location_saver_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the addresses bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the addresses module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := picker.RegisterValidators(val); err != nil {
		return nil, err
	}

	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "addresses"
}

// Service returns the service layer; it doubles as the picker's persister.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts address routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/addresses", m.handler.Create)
	ctx.Protected.GET("/addresses", m.handler.List)
}

var _ apphttp.Module = (*Module)(nil)
