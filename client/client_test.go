package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	addresstransport "location_saver_backend/internal/addresses/transport"
	authtransport "location_saver_backend/internal/auth/transport"

	"github.com/google/uuid"
)

const testToken = "token-123"

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req authtransport.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct horse" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, authtransport.AuthResponse{
			Token: testToken,
			User:  authtransport.UserResponse{ID: uuid.NewString(), Email: req.Email},
		})
	})
	mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	})
	mux.HandleFunc("/api/v1/addresses", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		switch r.Method {
		case http.MethodPost:
			var req addresstransport.CreateAddressRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			writeJSON(w, http.StatusCreated, addresstransport.AddressResponse{
				ID:          uuid.New(),
				FullAddress: req.FullAddress,
				Category:    req.Category,
			})
		case http.MethodGet:
			writeJSON(w, http.StatusOK, addresstransport.ListAddressesResponse{
				Items: []addresstransport.AddressResponse{{ID: uuid.New(), FullAddress: "Big Ben, London"}},
				Total: 1,
			})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newGateways(t *testing.T, baseURL string) (*AuthGateway, *AddressGateway, *FileCredentialStore) {
	t.Helper()
	creds := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	auth := NewAuthGateway(baseURL, creds, nil)
	return auth, NewAddressGateway(baseURL, auth, nil), creds
}

func displayMessage(t *testing.T, err error) string {
	t.Helper()
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	return apiErr.Message
}

func TestLoginCachesCredential(t *testing.T) {
	srv := newFakeAPI(t)
	auth, _, creds := newGateways(t, srv.URL+"/api/v1")

	if auth.IsAuthenticated() {
		t.Fatal("fresh store must not be authenticated")
	}
	if got := auth.AuthHeader().Get("Authorization"); got != "" {
		t.Fatalf("AuthHeader without token = %q", got)
	}

	user, err := auth.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("user = %+v", user)
	}

	token, ok, _ := creds.Get(KeyToken)
	if !ok || token != testToken {
		t.Fatalf("token not cached: %q", token)
	}
	if cached, ok := auth.CurrentUser(); !ok || cached.Email != user.Email {
		t.Fatalf("cached user = %+v, %v", cached, ok)
	}
	if got := auth.AuthHeader().Get("Authorization"); got != "Bearer "+testToken {
		t.Fatalf("AuthHeader = %q", got)
	}
}

func TestAuthFailureMessages(t *testing.T) {
	srv := newFakeAPI(t)
	auth, _, _ := newGateways(t, srv.URL+"/api/v1")

	_, err := auth.Login(context.Background(), "ada@example.com", "wrong")
	if msg := displayMessage(t, err); msg != "invalid credentials" {
		t.Fatalf("login message = %q", msg)
	}

	_, err = auth.Register(context.Background(), "ada@example.com", "correct horse")
	if msg := displayMessage(t, err); msg != "Registration failed" {
		t.Fatalf("register message = %q", msg)
	}
	if auth.IsAuthenticated() {
		t.Fatal("failed auth must not cache a token")
	}
}

func TestUnreachableServerUsesFallback(t *testing.T) {
	srv := newFakeAPI(t)
	baseURL := srv.URL + "/api/v1"
	srv.Close()

	auth, addresses, _ := newGateways(t, baseURL)
	_, err := auth.Login(context.Background(), "ada@example.com", "correct horse")
	if msg := displayMessage(t, err); msg != "Login failed" {
		t.Fatalf("login message = %q", msg)
	}
	_, err = addresses.List(context.Background())
	if msg := displayMessage(t, err); msg != "Failed to fetch addresses" {
		t.Fatalf("list message = %q", msg)
	}
}

func TestAddressGatewayAttachesBearer(t *testing.T) {
	srv := newFakeAPI(t)
	auth, addresses, _ := newGateways(t, srv.URL+"/api/v1")

	_, err := addresses.Create(context.Background(), addresstransport.CreateAddressRequest{FullAddress: "x", Category: "Home"})
	if msg := displayMessage(t, err); msg != "unauthorized" {
		t.Fatalf("anonymous create message = %q", msg)
	}

	if _, err := auth.Login(context.Background(), "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	created, err := addresses.Create(context.Background(), addresstransport.CreateAddressRequest{FullAddress: "Big Ben, London", Category: "Office"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.FullAddress != "Big Ben, London" || created.Category != "Office" {
		t.Fatalf("created = %+v", created)
	}

	items, err := addresses.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}
}

func TestRevokeSessionClearsCredential(t *testing.T) {
	srv := newFakeAPI(t)
	auth, _, creds := newGateways(t, srv.URL+"/api/v1")

	if _, err := auth.Login(context.Background(), "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := auth.RevokeSession(context.Background()); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if auth.IsAuthenticated() {
		t.Fatal("credential must be cleared")
	}
	if _, ok, _ := creds.Get(KeyUser); ok {
		t.Fatal("cached user must be cleared")
	}
}

func TestFileCredentialStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store := NewFileCredentialStore(path)

	if _, ok, err := store.Get(KeyToken); err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}
	if err := store.Set(KeyToken, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened := NewFileCredentialStore(path)
	if value, ok, err := reopened.Get(KeyToken); err != nil || !ok || value != "abc" {
		t.Fatalf("Get after reopen = %q, %v, %v", value, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("credential file mode = %v, want 0600", perm)
	}

	if err := reopened.Delete(KeyToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := reopened.Delete(KeyToken); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
	if _, ok, _ := store.Get(KeyToken); ok {
		t.Fatal("token still present after Delete")
	}
}
