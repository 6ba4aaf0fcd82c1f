package geocoding

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// ProviderGoogle selects the Google Maps Geocoding + Places backend.
	ProviderGoogle = "google"

	defaultGoogleMapsURL = "https://maps.googleapis.com/maps/api"

	googleStatusOK          = "OK"
	googleStatusZeroResults = "ZERO_RESULTS"
)

// GoogleProvider uses the Geocoding API for reverse lookups and the Places
// Text Search API for forward search.
type GoogleProvider struct {
	baseURL string
	apiKey  string
	api     *upstream
}

// NewGoogleProvider creates a Google Maps provider.
func NewGoogleProvider(baseURL, apiKey string, timeout time.Duration) *GoogleProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGoogleMapsURL
	}
	return &GoogleProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		api:     newUpstream(timeout, "", nil),
	}
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location googleLatLng `json:"location"`
	} `json:"geometry"`
}

type googleResponse struct {
	Results      []googleResult `json:"results"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
}

func (r googleResponse) err() error {
	switch r.Status {
	case googleStatusOK, googleStatusZeroResults:
		return nil
	default:
		if r.ErrorMessage != "" {
			return fmt.Errorf("status %s: %s", r.Status, r.ErrorMessage)
		}
		return fmt.Errorf("status %s", r.Status)
	}
}

// Reverse returns the first formatted_address for the coordinate.
func (p *GoogleProvider) Reverse(ctx context.Context, c Coordinate) (string, error) {
	params := url.Values{}
	params.Set("latlng", formatDegrees(c.Latitude)+","+formatDegrees(c.Longitude))
	params.Set("key", p.apiKey)

	var raw googleResponse
	if err := p.api.getJSON(ctx, p.baseURL+"/geocode/json?"+params.Encode(), &raw); err != nil {
		return "", fmt.Errorf("google reverse: %w", err)
	}
	if err := raw.err(); err != nil {
		return "", fmt.Errorf("google reverse: %w", err)
	}
	if len(raw.Results) == 0 || strings.TrimSpace(raw.Results[0].FormattedAddress) == "" {
		return "", fmt.Errorf("google reverse: %w", errNoResult)
	}
	return strings.TrimSpace(raw.Results[0].FormattedAddress), nil
}

// Search runs a Places text search. Text Search has no limit parameter, so the
// result is truncated locally.
func (p *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", p.apiKey)

	var raw googleResponse
	if err := p.api.getJSON(ctx, p.baseURL+"/place/textsearch/json?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}
	if err := raw.err(); err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	places := make([]Place, 0, len(raw.Results))
	for _, result := range raw.Results {
		c := Coordinate{Latitude: result.Geometry.Location.Lat, Longitude: result.Geometry.Location.Lng}
		if c.Validate() != nil {
			continue
		}
		places = append(places, Place{Coordinate: c, DisplayName: strings.TrimSpace(result.FormattedAddress)})
		if limit > 0 && len(places) == limit {
			break
		}
	}
	return places, nil
}
