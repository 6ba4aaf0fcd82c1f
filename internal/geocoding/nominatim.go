package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProviderNominatim selects the OpenStreetMap Nominatim backend.
	ProviderNominatim = "nominatim"

	defaultNominatimURL = "https://nominatim.openstreetmap.org"
)

var errNoResult = errors.New("no result")

// NominatimProvider talks to an OpenStreetMap Nominatim instance. The public
// instance requires a User-Agent and allows one request per second.
type NominatimProvider struct {
	baseURL string
	api     *upstream
}

// NewNominatimProvider creates a Nominatim provider throttled to one request per second.
func NewNominatimProvider(baseURL, userAgent string, timeout time.Duration) *NominatimProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultNominatimURL
	}
	return &NominatimProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		api:     newUpstream(timeout, userAgent, rate.NewLimiter(rate.Every(time.Second), 1)),
	}
}

func (p *NominatimProvider) Name() string {
	return ProviderNominatim
}

type nominatimReverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// nominatimPlace mirrors the relevant parts of the OSM search payload.
type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Reverse resolves a coordinate to Nominatim's display_name.
func (p *NominatimProvider) Reverse(ctx context.Context, c Coordinate) (string, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", formatDegrees(c.Latitude))
	params.Set("lon", formatDegrees(c.Longitude))
	params.Set("zoom", "18")
	params.Set("addressdetails", "0")

	var raw nominatimReverseResponse
	if err := p.api.getJSON(ctx, p.baseURL+"/reverse?"+params.Encode(), &raw); err != nil {
		return "", fmt.Errorf("nominatim reverse: %w", err)
	}
	if raw.Error != "" {
		return "", fmt.Errorf("nominatim reverse: %s", raw.Error)
	}

	label := strings.TrimSpace(raw.DisplayName)
	if label == "" {
		return "", fmt.Errorf("nominatim reverse: %w", errNoResult)
	}
	return label, nil
}

// Search returns up to limit candidates in Nominatim's relevance order.
// Entries with unparseable coordinates are skipped.
func (p *NominatimProvider) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var raw []nominatimPlace
	if err := p.api.getJSON(ctx, p.baseURL+"/search?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, item := range raw {
		place, ok := buildNominatimPlace(item)
		if !ok {
			continue
		}
		places = append(places, place)
	}
	return places, nil
}

func buildNominatimPlace(raw nominatimPlace) (Place, bool) {
	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil {
		return Place{}, false
	}
	lon, err := strconv.ParseFloat(raw.Lon, 64)
	if err != nil {
		return Place{}, false
	}

	c := Coordinate{Latitude: lat, Longitude: lon}
	if c.Validate() != nil {
		return Place{}, false
	}
	return Place{Coordinate: c, DisplayName: strings.TrimSpace(raw.DisplayName)}, true
}
