package geocoding

import (
	"context"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// Locator resolves the user's current device position.
// It returns ErrLocationUnavailable when no position can be obtained.
type Locator interface {
	CurrentPosition(ctx context.Context, report PositionReport) (Coordinate, error)
}

// ReportedLocator trusts the position the browser obtained. When the browser
// had no geolocation capability it defers to an optional fallback; an explicit
// permission denial is final.
type ReportedLocator struct {
	fallback Locator
}

// NewReportedLocator creates a locator. fallback may be nil.
func NewReportedLocator(fallback Locator) *ReportedLocator {
	return &ReportedLocator{fallback: fallback}
}

func (l *ReportedLocator) CurrentPosition(ctx context.Context, report PositionReport) (Coordinate, error) {
	if report.Denied {
		return Coordinate{}, ErrLocationUnavailable
	}

	if report.HasPosition() {
		c := Coordinate{Latitude: *report.Latitude, Longitude: *report.Longitude}
		if err := c.Validate(); err != nil {
			return Coordinate{}, err
		}
		return c, nil
	}

	if l.fallback == nil {
		return Coordinate{}, ErrLocationUnavailable
	}
	return l.fallback.CurrentPosition(ctx, report)
}

// IPLocator approximates a position from the client IP using an ip-api.com
// compatible endpoint ({base}/{ip}).
type IPLocator struct {
	baseURL string
	api     *upstream
}

func NewIPLocator(baseURL string, timeout time.Duration) *IPLocator {
	return &IPLocator{
		baseURL: strings.TrimRight(baseURL, "/"),
		api:     newUpstream(timeout, "", nil),
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (l *IPLocator) CurrentPosition(ctx context.Context, report PositionReport) (Coordinate, error) {
	reqURL := l.baseURL
	// Private and loopback addresses mean we sit behind a local proxy; let the
	// service resolve the egress address instead.
	if addr, err := netip.ParseAddr(report.ClientIP); err == nil && addr.IsGlobalUnicast() && !addr.IsPrivate() {
		reqURL += "/" + url.PathEscape(addr.String())
	}
	reqURL += "?fields=status,message,lat,lon"

	var raw ipLookupResponse
	if err := l.api.getJSON(ctx, reqURL, &raw); err != nil {
		return Coordinate{}, fmt.Errorf("%w: ip lookup: %v", ErrLocationUnavailable, err)
	}
	if raw.Status != "success" {
		return Coordinate{}, fmt.Errorf("%w: ip lookup: %s", ErrLocationUnavailable, raw.Message)
	}

	c := Coordinate{Latitude: raw.Lat, Longitude: raw.Lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return c, nil
}
