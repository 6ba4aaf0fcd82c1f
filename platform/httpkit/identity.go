// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated user's identity.
// Handlers read it without depending on how the token was parsed.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// TokenID returns the jti of the access token that authenticated the request.
	TokenID() string
	// TokenExpiresAt returns when the presented access token expires.
	TokenExpiresAt() time.Time
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	tokenID       string
	expiresAt     time.Time
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) TokenID() string {
	return i.tokenID
}

func (i *identity) TokenExpiresAt() time.Time {
	return i.expiresAt
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	if !userOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	tokenID := c.GetString(ContextTokenIDKey)
	expiresAt := c.GetTime(ContextTokenExpiryKey)

	return &identity{
		userID:        uid,
		tokenID:       tokenID,
		expiresAt:     expiresAt,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
