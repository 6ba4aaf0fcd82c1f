// Package picker implements the two-phase location selection flow: pick a
// point (map click, device position or search), then annotate and commit it.
package picker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"location_saver_backend/internal/geocoding"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/apperr"
	"location_saver_backend/platform/logger"
	"location_saver_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgAlreadySelecting  = "a location is already selected; save it or go back first"
	msgNothingSelected   = "no location is selected"
	msgStillResolving    = "the address is still being resolved"
	msgDetailsIncomplete = "house number, apartment or road and category are required"
	msgSessionEnded      = "session ended"

	persistTimeout = 15 * time.Second
)

// Geocoder is the never-failing geocoding gateway.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c geocoding.Coordinate) string
	SearchPlaces(ctx context.Context, query string) []geocoding.Place
}

// SessionWriter is the part of the session store the flow writes to.
type SessionWriter interface {
	SetCurrentLocation(c geocoding.Coordinate)
	SetSelectedAddress(a session.SavedAddress)
	AppendSavedAddress(a session.SavedAddress)
}

// Persister mirrors a committed address to durable storage.
type Persister interface {
	Create(ctx context.Context, userID uuid.UUID, a session.SavedAddress) (session.SavedAddress, error)
}

// Deps are a machine's collaborators. Persister may be nil.
type Deps struct {
	Geocoder  Geocoder
	Locator   geocoding.Locator
	Session   SessionWriter
	Persister Persister
	Log       *logger.Logger
}

// Machine is one user's selection flow. It is safe for concurrent use; each
// trigger leaves Selecting under the lock before the reverse-geocoding call
// is issued, so only one lookup is ever in flight per selection.
type Machine struct {
	userID uuid.UUID
	deps   Deps
	now    func() time.Time
	newID  func() uuid.UUID

	mu        sync.Mutex
	state     State
	seq       uint64
	coord     *geocoding.Coordinate
	label     string
	resolving bool
	details   Details
	mapCenter geocoding.Coordinate
	closed    bool
}

func NewMachine(userID uuid.UUID, deps Deps) *Machine {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	return &Machine{
		userID:    userID,
		deps:      deps,
		now:       time.Now,
		newID:     uuid.New,
		state:     StateSelecting,
		mapCenter: DefaultMapCenter,
	}
}

// Snapshot returns the current view of the machine.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     m.state,
		Label:     m.label,
		Resolving: m.resolving,
		Details:   m.details,
		MapCenter: m.mapCenter,
	}
	if m.coord != nil {
		c := *m.coord
		snap.Coordinate = &c
	}
	snap.CanSave = m.canSaveLocked()
	return snap
}

func (m *Machine) canSaveLocked() bool {
	return m.state == StateAnnotatingDetails && !m.resolving && m.details.Complete()
}

// SelectPoint handles a map click on c.
func (m *Machine) SelectPoint(ctx context.Context, c geocoding.Coordinate) (Snapshot, error) {
	if err := c.Validate(); err != nil {
		return m.Snapshot(), apperr.Validation(err.Error())
	}
	return m.selectCoordinate(ctx, c)
}

// Locate selects the user's current device position. When the position is
// unavailable the machine stays where it is and nothing is reported.
func (m *Machine) Locate(ctx context.Context, report geocoding.PositionReport) (Snapshot, error) {
	if err := m.ensureSelecting(); err != nil {
		return m.Snapshot(), err
	}

	c, err := m.deps.Locator.CurrentPosition(ctx, report)
	if err != nil {
		m.deps.Log.WithContext(ctx).Info("locate failed", "user_id", m.userID.String(), "error", err)
		if errors.Is(err, geocoding.ErrInvalidCoordinate) {
			return m.Snapshot(), apperr.Validation(err.Error())
		}
		return m.Snapshot(), nil
	}
	return m.selectCoordinate(ctx, c)
}

// Search selects the first candidate for query. No candidates is a no-op.
func (m *Machine) Search(ctx context.Context, query string) (Snapshot, error) {
	if err := m.ensureSelecting(); err != nil {
		return m.Snapshot(), err
	}

	places := m.deps.Geocoder.SearchPlaces(ctx, query)
	if len(places) == 0 {
		return m.Snapshot(), nil
	}
	return m.selectCoordinate(ctx, places[0].Coordinate)
}

func (m *Machine) ensureSelecting() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateSelecting {
		return apperr.Conflict(msgAlreadySelecting)
	}
	return nil
}

// selectCoordinate moves to AnnotatingDetails and resolves the label. The
// result is applied only if the selection it was issued for is still current.
func (m *Machine) selectCoordinate(ctx context.Context, c geocoding.Coordinate) (Snapshot, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return m.Snapshot(), apperr.Unauthorized(msgSessionEnded)
	}
	if m.state != StateSelecting {
		m.mu.Unlock()
		return m.Snapshot(), apperr.Conflict(msgAlreadySelecting)
	}
	m.seq++
	seq := m.seq
	m.state = StateAnnotatingDetails
	m.coord = &c
	m.label = ""
	m.resolving = true
	m.details = Details{}
	m.mapCenter = c
	m.deps.Session.SetCurrentLocation(c)
	m.mu.Unlock()

	// Stored rows are sanitized; the session copy must carry the same label.
	label := sanitize.Text(m.deps.Geocoder.ReverseGeocode(ctx, c))
	if label == "" {
		label = geocoding.FallbackLabel(c)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq == seq && m.state == StateAnnotatingDetails {
		m.label = label
		m.resolving = false
	} else {
		m.deps.Log.Debug("discarding stale reverse geocode result", "user_id", m.userID.String())
	}
	return m.snapshotLocked(), nil
}

// UpdateDetails applies the non-nil fields of patch.
func (m *Machine) UpdateDetails(patch DetailsPatch) (Snapshot, error) {
	if patch.Category != nil && *patch.Category != "" && !patch.Category.Valid() {
		return m.Snapshot(), apperr.Validation("unknown address category")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAnnotatingDetails {
		return m.snapshotLocked(), apperr.Conflict(msgNothingSelected)
	}

	if patch.HouseNumber != nil {
		m.details.HouseNumber = sanitize.Text(*patch.HouseNumber)
	}
	if patch.ApartmentOrRoad != nil {
		m.details.ApartmentOrRoad = sanitize.Text(*patch.ApartmentOrRoad)
	}
	if patch.Category != nil {
		m.details.Category = *patch.Category
	}
	return m.snapshotLocked(), nil
}

// Commit saves the annotated selection. It appends the address to the
// session, marks it selected, mirrors it to the persister and returns to
// Selecting. A persister failure is logged and does not undo the commit.
func (m *Machine) Commit(ctx context.Context) (session.SavedAddress, Snapshot, error) {
	m.mu.Lock()
	switch {
	case m.state != StateAnnotatingDetails:
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return session.SavedAddress{}, snap, apperr.Conflict(msgNothingSelected)
	case m.resolving:
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return session.SavedAddress{}, snap, apperr.Conflict(msgStillResolving)
	case !m.details.Complete():
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return session.SavedAddress{}, snap, apperr.Incomplete(msgDetailsIncomplete)
	}

	saved := session.SavedAddress{
		ID:              m.newID(),
		FullAddress:     m.label,
		Latitude:        m.coord.Latitude,
		Longitude:       m.coord.Longitude,
		HouseNumber:     strings.TrimSpace(m.details.HouseNumber),
		ApartmentOrRoad: strings.TrimSpace(m.details.ApartmentOrRoad),
		Category:        string(m.details.Category),
		CreatedAt:       m.now().UTC(),
	}

	m.deps.Session.AppendSavedAddress(saved)
	m.deps.Session.SetSelectedAddress(saved)

	m.resetLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if m.deps.Persister != nil {
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if _, err := m.deps.Persister.Create(persistCtx, m.userID, saved); err != nil {
			m.deps.Log.Error("address persistence failed", "user_id", m.userID.String(), "address_id", saved.ID.String(), "error", err)
		}
	}
	return saved, snap, nil
}

// Back discards the in-progress selection without persisting anything.
func (m *Machine) Back() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return m.snapshotLocked()
}

// close ends the machine for good. Lookups still in flight are discarded and
// later triggers fail.
func (m *Machine) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.resetLocked()
}

func (m *Machine) resetLocked() {
	m.seq++
	m.state = StateSelecting
	m.coord = nil
	m.label = ""
	m.resolving = false
	m.details = Details{}
}
