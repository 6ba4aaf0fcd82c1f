package picker

import (
	"sync"

	"location_saver_backend/internal/geocoding"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/logger"

	"github.com/google/uuid"
)

// Manager hands out one Machine per user, bound to that user's session store.
type Manager struct {
	sessions  *session.Registry
	geocoder  Geocoder
	locator   geocoding.Locator
	persister Persister
	log       *logger.Logger

	mu       sync.Mutex
	machines map[uuid.UUID]*Machine
}

// NewManager creates a manager. Machines are dropped together with their
// session store when it is evicted.
func NewManager(sessions *session.Registry, geocoder Geocoder, locator geocoding.Locator, persister Persister, log *logger.Logger) *Manager {
	m := &Manager{
		sessions:  sessions,
		geocoder:  geocoder,
		locator:   locator,
		persister: persister,
		log:       log,
		machines:  make(map[uuid.UUID]*Machine),
	}
	sessions.OnEvict(m.Forget)
	return m
}

// Machine returns the user's machine, creating it on first use.
func (m *Manager) Machine(userID uuid.UUID) *Machine {
	store := m.sessions.Get(userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if machine, ok := m.machines[userID]; ok {
		return machine
	}
	machine := NewMachine(userID, Deps{
		Geocoder:  m.geocoder,
		Locator:   m.locator,
		Session:   store,
		Persister: m.persister,
		Log:       m.log,
	})
	m.machines[userID] = machine
	return machine
}

// Forget drops the user's machine and any in-progress selection. A lookup
// still running on the dropped machine will not write to the session.
func (m *Manager) Forget(userID uuid.UUID) {
	m.mu.Lock()
	machine, ok := m.machines[userID]
	delete(m.machines, userID)
	m.mu.Unlock()

	if ok {
		machine.close()
	}
}
