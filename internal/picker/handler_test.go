package picker

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"location_saver_backend/internal/geocoding"
	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/httpkit"
	"location_saver_backend/platform/logger"
	"location_saver_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(t *testing.T, userID uuid.UUID, persister Persister) (*gin.Engine, *session.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	if err := RegisterValidators(val); err != nil {
		t.Fatalf("RegisterValidators: %v", err)
	}
	sessions := session.NewRegistry(time.Hour, time.Minute, logger.Discard())
	geo := &fakeGeocoder{labels: map[geocoding.Coordinate]string{bigBen: "Big Ben, London"}}
	machines := NewManager(sessions, geo, fakeLocator{err: geocoding.ErrLocationUnavailable}, persister, logger.Discard())
	module := &Module{machines: machines, handler: NewHandler(machines, val)}

	engine := gin.New()
	protected := engine.Group("/api/v1", func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(httpkit.ContextUserIDKey, userID)
		}
		c.Next()
	})
	module.RegisterRoutes(&apphttp.RouterContext{Engine: engine, Protected: protected})
	return engine, sessions
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPickerHTTPFlow(t *testing.T) {
	userID := uuid.New()
	persister := &fakePersister{}
	engine, sessions := newTestRouter(t, userID, persister)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/picker/click", map[string]float64{"latitude": 51.5007, "longitude": -0.1246})
	if rec.Code != http.StatusOK {
		t.Fatalf("click: status %d body %s", rec.Code, rec.Body.String())
	}
	if snap := decode[Snapshot](t, rec); snap.State != StateAnnotatingDetails || snap.Label != "Big Ben, London" {
		t.Fatalf("click: unexpected snapshot %+v", snap)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/picker/save", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("save before details: status %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPatch, "/api/v1/picker/details", map[string]string{"category": "Gym"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: status %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPatch, "/api/v1/picker/details", map[string]string{
		"houseNumber":     "1",
		"apartmentOrRoad": "Westminster",
		"category":        "Home",
	})
	if rec.Code != http.StatusOK || !decode[Snapshot](t, rec).CanSave {
		t.Fatalf("details: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/picker/save", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: status %d body %s", rec.Code, rec.Body.String())
	}
	saved := decode[SaveResponse](t, rec)
	if saved.Address.FullAddress != "Big Ben, London" || saved.Address.Category != "Home" || saved.Picker.State != StateSelecting {
		t.Fatalf("save: unexpected response %+v", saved)
	}

	store, ok := sessions.Lookup(userID)
	if !ok || len(store.Snapshot().SavedAddresses) != 1 {
		t.Fatal("expected the address in the user's session")
	}
	if len(persister.calls) != 1 {
		t.Fatalf("expected one persistence call, got %d", len(persister.calls))
	}
}

func TestPickerHTTPErrors(t *testing.T) {
	engine, _ := newTestRouter(t, uuid.New(), nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{name: "click out of range", method: http.MethodPost, path: "/api/v1/picker/click", body: map[string]float64{"latitude": 91, "longitude": 0}, want: http.StatusBadRequest},
		{name: "click missing longitude", method: http.MethodPost, path: "/api/v1/picker/click", body: map[string]float64{"latitude": 1}, want: http.StatusBadRequest},
		{name: "details without selection", method: http.MethodPatch, path: "/api/v1/picker/details", body: map[string]string{"houseNumber": "1"}, want: http.StatusConflict},
		{name: "save without selection", method: http.MethodPost, path: "/api/v1/picker/save", want: http.StatusConflict},
		{name: "locate denied", method: http.MethodPost, path: "/api/v1/picker/locate", body: map[string]bool{"denied": true}, want: http.StatusOK},
		{name: "empty search", method: http.MethodPost, path: "/api/v1/picker/search", body: map[string]string{"query": ""}, want: http.StatusBadRequest},
		{name: "search without results", method: http.MethodPost, path: "/api/v1/picker/search", body: map[string]string{"query": "nowhere"}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, engine, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestLocateDeniedKeepsSelecting(t *testing.T) {
	engine, sessions := newTestRouter(t, uuid.New(), nil)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/picker/locate", map[string]bool{"denied": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	snap := decode[Snapshot](t, rec)
	if snap.State != StateSelecting || snap.Coordinate != nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if sessions.Len() != 1 {
		t.Fatalf("sessions = %d", sessions.Len())
	}
}

func TestPickerRequiresIdentity(t *testing.T) {
	engine, _ := newTestRouter(t, uuid.Nil, nil)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/picker", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t, uuid.New(), nil)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/picker/categories", nil)
	options := decode[[]CategoryOption](t, rec)
	if len(options) != 3 || options[2].Label != "Friends & Family" {
		t.Fatalf("unexpected categories %+v", options)
	}
}
