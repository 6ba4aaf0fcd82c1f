package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	authtransport "location_saver_backend/internal/auth/transport"
)

const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
)

// AuthGateway logs in against the API and caches the result in a
// CredentialStore.
type AuthGateway struct {
	api   api
	creds CredentialStore
}

// NewAuthGateway creates a gateway. baseURL points at /api/v1; httpClient may
// be nil.
func NewAuthGateway(baseURL string, creds CredentialStore, httpClient *http.Client) *AuthGateway {
	return &AuthGateway{api: newAPI(baseURL, httpClient), creds: creds}
}

func (g *AuthGateway) Login(ctx context.Context, email, password string) (User, error) {
	return g.authenticate(ctx, "/auth/login", email, password, msgLoginFailed)
}

func (g *AuthGateway) Register(ctx context.Context, email, password string) (User, error) {
	return g.authenticate(ctx, "/auth/register", email, password, msgRegistrationFailed)
}

func (g *AuthGateway) authenticate(ctx context.Context, path, email, password, fallback string) (User, error) {
	var resp authtransport.AuthResponse
	body := authtransport.LoginRequest{Email: email, Password: password}
	if err := g.api.do(ctx, http.MethodPost, path, nil, body, &resp, fallback); err != nil {
		return User{}, err
	}

	if resp.Token != "" {
		user, err := json.Marshal(resp.User)
		if err != nil {
			return User{}, err
		}
		if err := g.creds.Set(KeyUser, string(user)); err != nil {
			return User{}, err
		}
		if err := g.creds.Set(KeyToken, resp.Token); err != nil {
			return User{}, err
		}
	}
	return resp.User, nil
}

// Logout forgets the cached credential. The server-side token is left to
// expire; call RevokeSession to end it early.
func (g *AuthGateway) Logout() error {
	return errors.Join(g.creds.Delete(KeyUser), g.creds.Delete(KeyToken))
}

// RevokeSession asks the server to revoke the cached token, then forgets it.
func (g *AuthGateway) RevokeSession(ctx context.Context) error {
	header := g.AuthHeader()
	var revokeErr error
	if header.Get("Authorization") != "" {
		revokeErr = g.api.do(ctx, http.MethodPost, "/auth/logout", header, nil, nil, "Logout failed")
	}
	return errors.Join(revokeErr, g.Logout())
}

// IsAuthenticated reports whether a token is cached.
func (g *AuthGateway) IsAuthenticated() bool {
	token, ok, err := g.creds.Get(KeyToken)
	return err == nil && ok && token != ""
}

// CurrentUser returns the cached user, if any.
func (g *AuthGateway) CurrentUser() (User, bool) {
	raw, ok, err := g.creds.Get(KeyUser)
	if err != nil || !ok {
		return User{}, false
	}
	var user User
	if json.Unmarshal([]byte(raw), &user) != nil {
		return User{}, false
	}
	return user, true
}

// AuthHeader returns the bearer header for the cached token, or an empty
// header when logged out.
func (g *AuthGateway) AuthHeader() http.Header {
	header := http.Header{}
	token, ok, err := g.creds.Get(KeyToken)
	if err == nil && ok && token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header
}
