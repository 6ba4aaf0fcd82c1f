package geocoding

import (
	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/platform/config"
	"location_saver_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module wires the geocoding gateway, the position locator and the maps routes.
type Module struct {
	gateway *Gateway
	locator Locator
	handler *Handler
}

// NewModule builds the configured provider. redisClient may be nil, in which
// case reverse lookups are not cached.
func NewModule(cfg config.GeocodingConfig, redisClient *redis.Client, log *logger.Logger) *Module {
	var provider Provider
	switch cfg.GetGeocoderProvider() {
	case ProviderGoogle:
		provider = NewGoogleProvider(cfg.GetGoogleMapsBaseURL(), cfg.GetGoogleMapsAPIKey(), cfg.GetGeocoderTimeout())
	default:
		provider = NewNominatimProvider(cfg.GetNominatimBaseURL(), cfg.GetNominatimUserAgent(), cfg.GetGeocoderTimeout())
	}

	var cache ReverseCache
	if redisClient != nil {
		cache = NewRedisReverseCache(redisClient, cfg.GetGeocodeCacheTTL())
	}

	var fallback Locator
	if cfg.IsIPLocatorEnabled() {
		fallback = NewIPLocator(cfg.GetIPLocatorURL(), cfg.GetGeocoderTimeout())
	}

	gateway := NewGateway(provider, cache, cfg.GetSearchResultLimit(), log)
	log.Info("geocoding provider configured", "provider", provider.Name(), "cache", cache != nil, "ipFallback", fallback != nil)

	return &Module{
		gateway: gateway,
		locator: NewReportedLocator(fallback),
		handler: NewHandler(gateway),
	}
}

// Gateway returns the never-failing geocoding gateway for other modules.
func (m *Module) Gateway() *Gateway {
	return m.gateway
}

// Locator returns the device position locator for other modules.
func (m *Module) Locator() Locator {
	return m.locator
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/maps")
	group.GET("/reverse", m.handler.Reverse)
	group.GET("/search", m.handler.Search)
}

var _ apphttp.Module = (*Module)(nil)
