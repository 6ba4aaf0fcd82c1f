package httpkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"location_saver_backend/platform/apperr"
	"location_saver_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const testSecret = "middleware-secret"

type secretConfig struct{}

func (secretConfig) GetJWTAccessSecret() string { return testSecret }

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r[tokenID], nil
}

func signToken(t *testing.T, claims AccessClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func validClaims(userID uuid.UUID, jti string) AccessClaims {
	return AccessClaims{
		Type: AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	expired := validClaims(userID, "expired")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongType := validClaims(userID, "refresh")
	wrongType.Type = "refresh"

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + signToken(t, validClaims(userID, "ok"), testSecret), want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, validClaims(userID, "x"), "other"), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, expired, testSecret), want: http.StatusUnauthorized},
		{name: "wrong type", header: "Bearer " + signToken(t, wrongType, testSecret), want: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer " + signToken(t, validClaims(userID, "gone"), testSecret), want: http.StatusUnauthorized},
	}

	engine := gin.New()
	engine.GET("/me", AuthRequired(secretConfig{}, revokedSet{"gone": true}), func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		if id.UserID() != userID || id.TokenID() == "" || id.TokenExpiresAt().IsZero() {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2, nil)

	engine := gin.New()
	engine.POST("/login", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := hit("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, code)
		}
	}
	if code := hit("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", code)
	}
	if code := hit("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other ip: status %d", code)
	}
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
		body string
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "typed", err: apperr.Conflict("email already registered"), want: http.StatusConflict, body: `{"error":"email already registered"}`},
		{name: "untyped hides text", err: errors.New("pq: password leaked"), want: http.StatusInternalServerError, body: `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			if handled := HandleError(c, tt.err); handled != (tt.err != nil) {
				t.Fatalf("handled = %v", handled)
			}
			if tt.err == nil {
				return
			}
			if rec.Code != tt.want || rec.Body.String() != tt.body {
				t.Fatalf("got %d %s, want %d %s", rec.Code, rec.Body.String(), tt.want, tt.body)
			}
		})
	}
}

func TestRequestLoggerTagsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	tests := []struct {
		name     string
		incoming string
		withUser bool
	}{
		{name: "generated id", incoming: ""},
		{name: "caller id kept", incoming: "trace-123", withUser: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			engine := gin.New()
			engine.Use(RequestLogger(logger.NewWithWriter("production", &buf)))
			var seen string
			engine.GET("/ping", func(c *gin.Context) {
				seen, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
				if tt.withUser {
					c.Set(ContextUserIDKey, userID)
				}
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("response id %q, handler saw %q", got, seen)
			}
			if tt.incoming != "" && got != tt.incoming {
				t.Fatalf("id = %q, want %q", got, tt.incoming)
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log %q: %v", buf.String(), err)
			}
			if entry["request_id"] != got {
				t.Fatalf("logged request_id = %v, want %s", entry["request_id"], got)
			}
			if tt.withUser && entry["user_id"] != userID.String() {
				t.Fatalf("logged user_id = %v", entry["user_id"])
			}
			if !tt.withUser && entry["user_id"] != nil {
				t.Fatalf("unexpected user_id %v", entry["user_id"])
			}
		})
	}
}
