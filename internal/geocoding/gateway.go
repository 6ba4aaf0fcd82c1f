// Package geocoding wraps reverse geocoding, forward search and device
// position lookup behind a gateway that never fails its callers.
package geocoding

import (
	"context"
	"strings"

	"location_saver_backend/platform/logger"
)

// Provider is a raw geocoding backend. Unlike Gateway it reports failures.
type Provider interface {
	Name() string
	Reverse(ctx context.Context, c Coordinate) (string, error)
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

// Gateway applies the degrade-gracefully policy on top of a Provider:
// reverse lookups fall back to the coordinate label, searches to no results.
type Gateway struct {
	provider    Provider
	cache       ReverseCache
	searchLimit int
	log         *logger.Logger
}

// NewGateway creates a gateway. cache may be nil.
func NewGateway(provider Provider, cache ReverseCache, searchLimit int, log *logger.Logger) *Gateway {
	return &Gateway{
		provider:    provider,
		cache:       cache,
		searchLimit: searchLimit,
		log:         log,
	}
}

// ProviderName returns the active backend.
func (g *Gateway) ProviderName() string {
	return g.provider.Name()
}

// ReverseGeocode returns a display label for c. It never returns an empty
// string: any failure yields FallbackLabel(c).
func (g *Gateway) ReverseGeocode(ctx context.Context, c Coordinate) string {
	if err := c.Validate(); err != nil {
		g.log.GeocodeFallback("reverse", g.provider.Name(), err)
		return FallbackLabel(c)
	}

	if g.cache != nil {
		label, ok, err := g.cache.Get(ctx, g.provider.Name(), c)
		if err != nil {
			g.log.Warn("geocode cache read failed", "error", err)
		} else if ok && label != "" {
			return label
		}
	}

	label, err := g.provider.Reverse(ctx, c)
	if err == nil && strings.TrimSpace(label) == "" {
		err = errNoResult
	}
	if err != nil {
		g.log.GeocodeFallback("reverse", g.provider.Name(), err)
		return FallbackLabel(c)
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, g.provider.Name(), c, label); err != nil {
			g.log.Warn("geocode cache write failed", "error", err)
		}
	}
	return label
}

// SearchPlaces returns candidates in provider relevance order, or an empty
// slice on a blank query or any failure.
func (g *Gateway) SearchPlaces(ctx context.Context, query string) []Place {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Place{}
	}

	places, err := g.provider.Search(ctx, query, g.searchLimit)
	if err != nil {
		g.log.GeocodeFallback("search", g.provider.Name(), err)
		return []Place{}
	}
	if places == nil {
		return []Place{}
	}
	return places
}
