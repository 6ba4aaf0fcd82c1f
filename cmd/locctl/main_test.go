package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"location_saver_backend/client"

	"github.com/google/uuid"
)

func newTestCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()
	var saved []client.Address
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "tok",
			"user":  client.User{ID: uuid.NewString(), Email: req.Email},
		})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/v1/addresses", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		var req client.CreateAddressRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a := client.Address{ID: uuid.New(), FullAddress: req.FullAddress, Latitude: *req.Latitude, Longitude: *req.Longitude, Category: req.Category}
		saved = append(saved, a)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(a)
	})
	mux.HandleFunc("GET /api/v1/addresses", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": saved, "total": len(saved)})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	creds := client.NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	return newCLI(srv.URL+"/api/v1", creds, &out), &out
}

func TestCLIFlow(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	steps := [][]string{
		{"login", "ada@example.com", "correct horse"},
		{"whoami"},
		{"add", "51.5007", "-0.1246", "1", "Westminster", "Office", "Big", "Ben,", "London"},
		{"list"},
		{"logout"},
		{"whoami"},
	}
	for _, args := range steps {
		if err := c.run(ctx, args); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	got := out.String()
	for _, want := range []string{"signed in as ada@example.com", `"fullAddress": "Big Ben, London"`, "not signed in"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestCLIRejectsBadArguments(t *testing.T) {
	c, _ := newTestCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown", args: []string{"teleport"}},
		{name: "login without password", args: []string{"login", "ada@example.com"}},
		{name: "add too short", args: []string{"add", "1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.run(context.Background(), tt.args); !errors.Is(err, errUsage) {
				t.Fatalf("err = %v, want usage", err)
			}
		})
	}

	if err := c.run(context.Background(), []string{"add", "north", "2", "1", "Rd", "Home", "x"}); err == nil || errors.Is(err, errUsage) {
		t.Fatalf("bad latitude: err = %v", err)
	}
}
