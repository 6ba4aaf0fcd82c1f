// Package adapters contains adapters that bridge different bounded contexts.
// These adapters implement interfaces defined by consuming domains while
// wrapping services from providing domains.
package adapters

import (
	"location_saver_backend/internal/auth"
	"location_saver_backend/internal/picker"
	"location_saver_backend/internal/session"

	"github.com/google/uuid"
)

// AuthSessionHooks lets the auth service drive the in-memory application
// session without knowing about it.
type AuthSessionHooks struct {
	sessions *session.Registry
	machines *picker.Manager
}

// NewAuthSessionHooks creates the adapter. machines may be nil.
func NewAuthSessionHooks(sessions *session.Registry, machines *picker.Manager) *AuthSessionHooks {
	return &AuthSessionHooks{sessions: sessions, machines: machines}
}

// OnAuthenticated marks the user's session as logged in.
func (h *AuthSessionHooks) OnAuthenticated(userID uuid.UUID, email string) {
	h.sessions.Get(userID).SetAuthenticated(email)
}

// OnLoggedOut clears the session and drops any half-finished selection.
func (h *AuthSessionHooks) OnLoggedOut(userID uuid.UUID) {
	if h.machines != nil {
		h.machines.Forget(userID)
	}
	if store, ok := h.sessions.Lookup(userID); ok {
		store.Reset()
	}
}

var _ auth.SessionHooks = (*AuthSessionHooks)(nil)
