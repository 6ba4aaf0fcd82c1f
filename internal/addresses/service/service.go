// Package service implements saved-address persistence rules.
package service

import (
	"context"
	"errors"
	"time"

	"location_saver_backend/internal/addresses/repository"
	"location_saver_backend/internal/geocoding"
	"location_saver_backend/internal/picker"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/apperr"
	"location_saver_backend/platform/logger"
	"location_saver_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgSaveFailed  = "Failed to save address"
	msgFetchFailed = "Failed to fetch addresses"
)

type Service struct {
	repo repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Create stores a committed address for userID. A missing id or timestamp is
// filled in; replaying the same address is harmless.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, a session.SavedAddress) (session.SavedAddress, error) {
	a.FullAddress = sanitize.Text(a.FullAddress)
	a.HouseNumber = sanitize.Text(a.HouseNumber)
	a.ApartmentOrRoad = sanitize.Text(a.ApartmentOrRoad)
	if err := validate(a); err != nil {
		return session.SavedAddress{}, err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}

	stored, err := s.repo.Insert(ctx, repository.Address{
		ID:              a.ID,
		UserID:          userID,
		FullAddress:     a.FullAddress,
		Latitude:        a.Latitude,
		Longitude:       a.Longitude,
		HouseNumber:     a.HouseNumber,
		ApartmentOrRoad: a.ApartmentOrRoad,
		Category:        a.Category,
		CreatedAt:       a.CreatedAt,
	})
	if errors.Is(err, repository.ErrIDConflict) {
		return session.SavedAddress{}, apperr.Conflict("address id already in use")
	}
	if err != nil {
		s.log.DatabaseError("insert saved address", err)
		return session.SavedAddress{}, apperr.Wrap(apperr.KindInternal, msgSaveFailed, err).WithOp("insert saved address")
	}
	return toSavedAddress(stored), nil
}

// List returns the user's addresses, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]session.SavedAddress, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.log.DatabaseError("list saved addresses", err)
		return nil, apperr.Wrap(apperr.KindInternal, msgFetchFailed, err).WithOp("list saved addresses")
	}

	out := make([]session.SavedAddress, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSavedAddress(row))
	}
	return out, nil
}

func validate(a session.SavedAddress) error {
	switch {
	case a.FullAddress == "":
		return apperr.Validation("full address is required")
	case a.HouseNumber == "":
		return apperr.Validation("house number is required")
	case a.ApartmentOrRoad == "":
		return apperr.Validation("apartment or road is required")
	case !picker.Category(a.Category).Valid():
		return apperr.Validation("category must be Home, Office or FriendsAndFamily")
	}
	c := geocoding.Coordinate{Latitude: a.Latitude, Longitude: a.Longitude}
	if err := c.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

func toSavedAddress(a repository.Address) session.SavedAddress {
	return session.SavedAddress{
		ID:              a.ID,
		FullAddress:     a.FullAddress,
		Latitude:        a.Latitude,
		Longitude:       a.Longitude,
		HouseNumber:     a.HouseNumber,
		ApartmentOrRoad: a.ApartmentOrRoad,
		Category:        a.Category,
		CreatedAt:       a.CreatedAt,
	}
}

var _ picker.Persister = (*Service)(nil)
