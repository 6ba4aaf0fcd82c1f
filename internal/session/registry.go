package session

import (
	"context"
	"sync"
	"time"

	"location_saver_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultIdleTTL       = 2 * time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// EvictFunc is called after a user's store was dropped for inactivity.
type EvictFunc func(userID uuid.UUID)

// Registry owns one Store per user.
type Registry struct {
	mu      sync.Mutex
	stores  map[uuid.UUID]*Store
	onEvict []EvictFunc

	idleTTL  time.Duration
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger
}

func NewRegistry(idleTTL, interval time.Duration, log *logger.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Registry{
		stores:   make(map[uuid.UUID]*Store),
		idleTTL:  idleTTL,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

// OnEvict registers fn to run whenever a store is evicted.
func (r *Registry) OnEvict(fn EvictFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

// Get returns the user's store, creating it on first use, and marks it active.
func (r *Registry) Get(userID uuid.UUID) *Store {
	now := r.now()

	r.mu.Lock()
	store, ok := r.stores[userID]
	if !ok {
		store = NewStore()
		r.stores[userID] = store
	}
	r.mu.Unlock()

	store.touch(now)
	return store
}

// Lookup returns the user's store without creating one.
func (r *Registry) Lookup(userID uuid.UUID) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[userID]
	return store, ok
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Run evicts idle stores until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() int {
	now := r.now()

	r.mu.Lock()
	var evicted []uuid.UUID
	for id, store := range r.stores {
		if store.idleSince(now) >= r.idleTTL {
			delete(r.stores, id)
			evicted = append(evicted, id)
		}
	}
	hooks := append([]EvictFunc(nil), r.onEvict...)
	r.mu.Unlock()

	for _, id := range evicted {
		for _, fn := range hooks {
			fn(id)
		}
	}
	if len(evicted) > 0 {
		r.log.Info("session sweep evicted idle stores", "evicted", len(evicted))
	}
	return len(evicted)
}
