package session

import (
	"sync"
	"testing"
	"time"

	"location_saver_backend/internal/geocoding"
	"location_saver_backend/platform/logger"

	"github.com/google/uuid"
)

func testAddress(label string) SavedAddress {
	return SavedAddress{
		ID:              uuid.New(),
		FullAddress:     label,
		Latitude:        51.5007,
		Longitude:       -0.1246,
		HouseNumber:     "1",
		ApartmentOrRoad: "Westminster",
		Category:        "Home",
		CreatedAt:       time.Now(),
	}
}

func TestStoreResetKeepsSavedAddresses(t *testing.T) {
	s := NewStore()
	s.SetAuthenticated("ada@example.com")
	s.SetCurrentLocation(geocoding.Coordinate{Latitude: 1, Longitude: 2})
	a := testAddress("Big Ben, London")
	s.AppendSavedAddress(a)
	s.SetSelectedAddress(a)

	s.Reset()
	snap := s.Snapshot()

	if snap.Authenticated || snap.Email != "" {
		t.Fatalf("expected logged out snapshot, got %+v", snap)
	}
	if snap.CurrentLocation != nil || snap.SelectedAddress != nil {
		t.Fatalf("expected location and selection cleared, got %+v", snap)
	}
	if len(snap.SavedAddresses) != 1 || snap.SavedAddresses[0].ID != a.ID {
		t.Fatalf("saved addresses should survive logout, got %+v", snap.SavedAddresses)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.AppendSavedAddress(testAddress("first"))
	s.SetCurrentLocation(geocoding.Coordinate{Latitude: 10, Longitude: 20})

	snap := s.Snapshot()
	snap.SavedAddresses[0].FullAddress = "mutated"
	snap.CurrentLocation.Latitude = -1

	again := s.Snapshot()
	if again.SavedAddresses[0].FullAddress != "first" || again.CurrentLocation.Latitude != 10 {
		t.Fatalf("store leaked internal state: %+v", again)
	}
}

func TestSetAuthenticatedKeepsEmail(t *testing.T) {
	s := NewStore()
	s.SetAuthenticated("ada@example.com")
	s.SetAuthenticated("")

	if got := s.Snapshot().Email; got != "ada@example.com" {
		t.Fatalf("email = %q", got)
	}
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendSavedAddress(testAddress("x"))
		}()
	}
	wg.Wait()

	if got := len(s.Snapshot().SavedAddresses); got != 50 {
		t.Fatalf("expected 50 addresses, got %d", got)
	}
}

func TestRegistrySweepEvictsIdleStores(t *testing.T) {
	r := NewRegistry(time.Hour, time.Minute, logger.Discard())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	idle := uuid.New()
	active := uuid.New()
	r.Get(idle)
	r.Get(active)

	var evicted []uuid.UUID
	r.OnEvict(func(id uuid.UUID) { evicted = append(evicted, id) })

	now = now.Add(90 * time.Minute)
	r.Get(active)

	if n := r.sweep(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, ok := r.Lookup(idle); ok {
		t.Fatal("idle store should be gone")
	}
	if _, ok := r.Lookup(active); !ok {
		t.Fatal("active store should remain")
	}
	if len(evicted) != 1 || evicted[0] != idle {
		t.Fatalf("unexpected evict hooks %v", evicted)
	}
}

func TestRegistryGetReturnsSameStore(t *testing.T) {
	r := NewRegistry(0, 0, logger.Discard())
	id := uuid.New()
	if r.Get(id) != r.Get(id) {
		t.Fatal("expected the same store for the same user")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d", r.Len())
	}
}
