package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")
var ErrEmailTaken = errors.New("email already registered")

const uniqueViolation = "23505"

const createUserQuery = `
	INSERT INTO users (email, password_hash)
	VALUES ($1, $2)
	RETURNING id, email, password_hash, created_at, updated_at`

const getUserByEmailQuery = `
	SELECT id, email, password_hash, created_at, updated_at
	FROM users WHERE lower(email) = lower($1)`

const getUserByIDQuery = `
	SELECT id, email, password_hash, created_at, updated_at
	FROM users WHERE id = $1`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, createUserQuery, email, passwordHash))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return User{}, ErrEmailTaken
	}
	return user, err
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, getUserByEmailQuery, email))
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, getUserByIDQuery, userID))
}
