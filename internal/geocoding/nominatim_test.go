package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestNominatim(t *testing.T, h http.HandlerFunc) *NominatimProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p := NewNominatimProvider(srv.URL, "LocationSaverTest/1.0", time.Second)
	p.api.limiter = nil
	p.api.backoff = time.Millisecond
	return p
}

func TestNominatimReverse(t *testing.T) {
	p := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != "LocationSaverTest/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		q := r.URL.Query()
		if q.Get("lat") != "51.5007" || q.Get("lon") != "-0.1246" || q.Get("format") != "jsonv2" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"display_name":"Big Ben, London"}`))
	})

	label, err := p.Reverse(context.Background(), Coordinate{Latitude: 51.5007, Longitude: -0.1246})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "Big Ben, London" {
		t.Fatalf("label = %q", label)
	}
}

func TestNominatimReverseUnableToGeocode(t *testing.T) {
	p := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	})

	if _, err := p.Reverse(context.Background(), Coordinate{Latitude: 0, Longitude: -150}); err == nil {
		t.Fatal("expected error for ocean coordinate")
	}
}

func TestNominatimRetriesTransientFailures(t *testing.T) {
	var calls int32
	p := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"display_name":"Dam, Amsterdam"}`))
	})

	label, err := p.Reverse(context.Background(), Coordinate{Latitude: 52.373, Longitude: 4.893})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "Dam, Amsterdam" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("label = %q after %d calls", label, calls)
	}
}

func TestNominatimDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	p := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := p.Reverse(context.Background(), Coordinate{Latitude: 1, Longitude: 1}); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestNominatimSearchSkipsMalformedEntries(t *testing.T) {
	p := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`[
			{"display_name":"Eiffel Tower, Paris","lat":"48.8584","lon":"2.2945"},
			{"display_name":"Broken","lat":"north","lon":"2.0"},
			{"display_name":"Tour Eiffel, Las Vegas","lat":"36.1125","lon":"-115.1707"}
		]`))
	})

	places, err := p.Search(context.Background(), "Eiffel Tower", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if places[0].DisplayName != "Eiffel Tower, Paris" || places[0].Latitude != 48.8584 {
		t.Fatalf("unexpected first place %+v", places[0])
	}
}
