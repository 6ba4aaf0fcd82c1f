// Package session holds the per-user application session: authentication
// flag, current location, selected address and the addresses saved during
// the session.
package session

import (
	"sync"
	"time"

	"location_saver_backend/internal/geocoding"

	"github.com/google/uuid"
)

// SavedAddress is a committed address. It is created once and never mutated.
type SavedAddress struct {
	ID              uuid.UUID `json:"id"`
	FullAddress     string    `json:"fullAddress"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	HouseNumber     string    `json:"houseNumber"`
	ApartmentOrRoad string    `json:"apartmentOrRoad"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Snapshot is a copy of the store contents safe to hand out.
type Snapshot struct {
	Authenticated   bool                  `json:"authenticated"`
	Email           string                `json:"email,omitempty"`
	CurrentLocation *geocoding.Coordinate `json:"currentLocation"`
	SelectedAddress *SavedAddress         `json:"selectedAddress"`
	SavedAddresses  []SavedAddress        `json:"savedAddresses"`
}

// Store is a single user's session state. All writes go through its methods
// and are serialized by the mutex.
type Store struct {
	mu sync.RWMutex

	authenticated   bool
	email           string
	currentLocation *geocoding.Coordinate
	selected        *SavedAddress
	saved           []SavedAddress
	lastSeen        time.Time
}

// NewStore returns an empty, unauthenticated store.
func NewStore() *Store {
	return &Store{lastSeen: time.Now()}
}

// SetAuthenticated marks the session as logged in. An empty email keeps the
// one already recorded.
func (s *Store) SetAuthenticated(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	if email != "" {
		s.email = email
	}
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Store) SetCurrentLocation(c geocoding.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentLocation = &c
}

func (s *Store) SetSelectedAddress(a SavedAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &a
}

// AppendSavedAddress adds a to the session list. The list is append-only.
func (s *Store) AppendSavedAddress(a SavedAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, a)
}

// Reset is the logout transition: it drops the authentication, the current
// location and the selected address. Addresses saved earlier stay listed.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.email = ""
	s.currentLocation = nil
	s.selected = nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Authenticated:  s.authenticated,
		Email:          s.email,
		SavedAddresses: make([]SavedAddress, len(s.saved)),
	}
	copy(snap.SavedAddresses, s.saved)
	if s.currentLocation != nil {
		c := *s.currentLocation
		snap.CurrentLocation = &c
	}
	if s.selected != nil {
		a := *s.selected
		snap.SelectedAddress = &a
	}
	return snap
}

func (s *Store) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Store) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}
