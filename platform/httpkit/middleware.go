// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"location_saver_backend/platform/config"
	"location_saver_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// ContextUserIDKey is the gin context key for the authenticated user ID.
	ContextUserIDKey = "userID"
	// ContextTokenIDKey is the gin context key for the access token's jti.
	ContextTokenIDKey = "tokenID"
	// ContextTokenExpiryKey is the gin context key for the access token's expiry.
	ContextTokenExpiryKey = "tokenExpiresAt"

	// AccessTokenType is the value of the "type" claim on access tokens.
	AccessTokenType = "access"

	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128

	errMissingToken = "missing token"
	errInvalidToken = "invalid token"
)

// RevocationChecker reports whether an access token id has been revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RequestLogger tags each request with an id (kept from X-Request-ID when the
// caller sends one) and logs it with timing once the handler chain is done.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if userID, ok := c.Get(ContextUserIDKey); ok {
			if id, ok := userID.(uuid.UUID); ok {
				ctx = context.WithValue(ctx, logger.UserIDKey, id.String())
			}
		}
		latency := time.Since(start)
		log.WithContext(ctx).HTTPRequest(c.Request.Method, path, c.Writer.Status(), float64(latency.Milliseconds()), c.ClientIP())
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// IPRateLimiter manages per-IP rate limiters.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
		log:   log,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return limiter.(*rate.Limiter)
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !i.getLimiter(ip).Allow() {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// NewAuthRateLimiter creates the stricter limiter used on login and register
// (10 requests per minute, burst of 10).
func NewAuthRateLimiter(log *logger.Logger) *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(10.0/60.0), 10, log)
}

// AuthRequired returns middleware that validates JWT access tokens from the
// Authorization header. When revoked is non-nil, logged-out tokens are rejected.
func AuthRequired(cfg config.JWTConfig, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}

		claims, err := ParseAccessToken(rawToken, cfg.GetJWTAccessSecret())
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil || isRevoked {
				abortUnauthorized(c, errInvalidToken)
				return
			}
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextTokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// AccessClaims are the registered claims plus the token type marker.
type AccessClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// ParseAccessToken verifies an HS256 access token and returns its claims.
func ParseAccessToken(rawToken, secret string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New(errInvalidToken)
	}

	if claims.Type != AccessTokenType {
		return nil, errors.New(errInvalidToken)
	}

	return claims, nil
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}

	return rawToken, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
