package geocoding

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrLocationUnavailable is returned by a Locator when no device position can
// be obtained: the capability is missing or the user denied permission.
var ErrLocationUnavailable = errors.New("location unavailable")

// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or
// longitudes outside [-180, 180].
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is an immutable WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the latitude/longitude bounds.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// Place is one forward-search candidate.
type Place struct {
	Coordinate
	DisplayName string `json:"displayName"`
}

// FallbackLabel is the address text used when reverse geocoding yields nothing.
func FallbackLabel(c Coordinate) string {
	return "Latitude: " + formatDegrees(c.Latitude) + ", Longitude: " + formatDegrees(c.Longitude)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PositionReport is what the browser sends for a "locate me" request: either the
// position it obtained, or a flag saying the user refused the permission prompt.
type PositionReport struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Denied    bool     `json:"denied,omitempty"`
	// ClientIP is filled in by the HTTP layer for IP-based lookups.
	ClientIP string `json:"-"`
}

// HasPosition reports whether both coordinates were supplied.
func (r PositionReport) HasPosition() bool {
	return r.Latitude != nil && r.Longitude != nil
}
