package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIDConflict = errors.New("address id already in use")

// The no-op update makes RETURNING yield the existing row on a replay of the
// same insert, while the WHERE keeps other users' rows out of reach.
const insertAddressQuery = `
	INSERT INTO saved_addresses (id, user_id, full_address, latitude, longitude, house_number, apartment_or_road, category, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET id = saved_addresses.id
	WHERE saved_addresses.user_id = EXCLUDED.user_id
	RETURNING id, user_id, full_address, latitude, longitude, house_number, apartment_or_road, category, created_at`

const listAddressesByUserQuery = `
	SELECT id, user_id, full_address, latitude, longitude, house_number, apartment_or_road, category, created_at
	FROM saved_addresses
	WHERE user_id = $1
	ORDER BY created_at DESC, id`

type Address struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	FullAddress     string
	Latitude        float64
	Longitude       float64
	HouseNumber     string
	ApartmentOrRoad string
	Category        string
	CreatedAt       time.Time
}

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func scanAddress(row pgx.Row) (Address, error) {
	var a Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.FullAddress,
		&a.Latitude,
		&a.Longitude,
		&a.HouseNumber,
		&a.ApartmentOrRoad,
		&a.Category,
		&a.CreatedAt,
	)
	return a, err
}

func (r *Repo) Insert(ctx context.Context, a Address) (Address, error) {
	stored, err := scanAddress(r.pool.QueryRow(ctx, insertAddressQuery,
		a.ID, a.UserID, a.FullAddress, a.Latitude, a.Longitude,
		a.HouseNumber, a.ApartmentOrRoad, a.Category, a.CreatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Address{}, ErrIDConflict
	}
	if err != nil {
		return Address{}, fmt.Errorf("insert address: %w", err)
	}
	return stored, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	items := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}
	return items, nil
}
