package adapters

import (
	"context"

	"location_saver_backend/internal/picker"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/logger"

	"github.com/google/uuid"
)

// QueuedPersister hands committed addresses to the task queue and writes them
// directly when the queue is unreachable.
type QueuedPersister struct {
	queue  picker.Persister
	direct picker.Persister
	log    *logger.Logger
}

func NewQueuedPersister(queue, direct picker.Persister, log *logger.Logger) *QueuedPersister {
	return &QueuedPersister{queue: queue, direct: direct, log: log}
}

func (p *QueuedPersister) Create(ctx context.Context, userID uuid.UUID, a session.SavedAddress) (session.SavedAddress, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	queued, err := p.queue.Create(ctx, userID, a)
	if err == nil {
		return queued, nil
	}

	p.log.Warn("address enqueue failed, writing directly", "addressId", a.ID, "error", err)
	return p.direct.Create(ctx, userID, a)
}

var _ picker.Persister = (*QueuedPersister)(nil)
