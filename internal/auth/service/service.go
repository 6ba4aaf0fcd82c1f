package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"location_saver_backend/internal/auth/password"
	"location_saver_backend/internal/auth/repository"
	"location_saver_backend/internal/auth/token"
	"location_saver_backend/platform/apperr"
	"location_saver_backend/platform/config"
	"location_saver_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgEmailTaken         = "email already registered"
	msgUserNotFound       = "user not found"
)

// SessionHooks lets the auth flow drive the in-memory application session.
type SessionHooks interface {
	OnAuthenticated(userID uuid.UUID, email string)
	OnLoggedOut(userID uuid.UUID)
}

// RevocationStore records logged-out access tokens until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// User is the public view of an account.
type User struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

// Result is returned by Register and Login.
type Result struct {
	Token string
	User  User
}

type Service struct {
	repo    repository.UserRepository
	tokens  *token.Issuer
	revoked RevocationStore
	hooks   SessionHooks
	log     *logger.Logger
}

// New creates the service. hooks may be nil.
func New(repo repository.UserRepository, cfg config.AuthServiceConfig, revoked RevocationStore, hooks SessionHooks, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		tokens:  token.NewIssuer(cfg.GetJWTAccessSecret(), cfg.GetAccessTokenTTL()),
		revoked: revoked,
		hooks:   hooks,
		log:     log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, email, plainPassword string) (Result, error) {
	email = normalizeEmail(email)

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return Result{}, err
	}

	user, err := s.repo.CreateUser(ctx, email, hash)
	if errors.Is(err, repository.ErrEmailTaken) {
		s.log.AuthEvent("register", email, false, "email taken")
		return Result{}, apperr.Conflict(msgEmailTaken)
	}
	if err != nil {
		s.log.DatabaseError("create user", err)
		return Result{}, err
	}

	s.log.AuthEvent("register", email, true, "")
	return s.authenticate(user)
}

func (s *Service) Login(ctx context.Context, email, plainPassword string) (Result, error) {
	email = normalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("login", email, false, "unknown email")
		return Result{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		s.log.DatabaseError("get user by email", err)
		return Result{}, err
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return Result{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	s.log.AuthEvent("login", email, true, "")
	return s.authenticate(user)
}

func (s *Service) authenticate(user repository.User) (Result, error) {
	issued, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Result{}, err
	}
	if s.hooks != nil {
		s.hooks.OnAuthenticated(user.ID, user.Email)
	}
	return Result{Token: issued.Token, User: toUser(user)}, nil
}

// Logout revokes the presented token and ends the application session.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, tokenID string, expiresAt time.Time) error {
	if tokenID != "" {
		if err := s.revoked.Revoke(ctx, tokenID, expiresAt); err != nil {
			return err
		}
	}
	if s.hooks != nil {
		s.hooks.OnLoggedOut(userID)
	}
	s.log.Info("auth_event", "event", "logout", "user_id", userID.String())
	return nil
}

// CurrentUser returns the account behind a validated token.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return User{}, apperr.Unauthorized(msgUserNotFound)
	}
	if err != nil {
		return User{}, err
	}
	return toUser(user), nil
}

func toUser(u repository.User) User {
	return User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
