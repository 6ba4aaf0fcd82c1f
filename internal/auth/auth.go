// Package auth provides the authentication bounded context: account
// registration, login, logout and the bearer-token session check.
// Only types defined here should be imported by other domains.
package auth

import "location_saver_backend/internal/auth/service"

// SessionHooks is implemented by the application session to follow logins
// and logouts.
type SessionHooks = service.SessionHooks

// RevocationStore records logged-out access tokens.
type RevocationStore = service.RevocationStore
