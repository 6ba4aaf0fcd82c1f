package scheduler

import (
	"context"
	"fmt"

	"location_saver_backend/internal/session"
	"location_saver_backend/platform/apperr"
	"location_saver_backend/platform/config"
	"location_saver_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// AddressWriter performs the durable insert.
type AddressWriter interface {
	Create(ctx context.Context, userID uuid.UUID, a session.SavedAddress) (session.SavedAddress, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	writer AddressWriter
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, writer AddressWriter, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		writer: writer,
		log:    log,
	}

	mux.HandleFunc(TaskPersistAddress, w.handlePersistAddress)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handlePersistAddress(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePersistAddressPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	userID, err := payload.userID()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	_, err = w.writer.Create(ctx, userID, payload.Address)
	switch {
	case err == nil:
		w.log.Info("address persisted", "addressId", payload.Address.ID, "userId", userID)
		return nil
	case apperr.Is(err, apperr.KindValidation), apperr.Is(err, apperr.KindConflict):
		// Retrying cannot fix a rejected address.
		w.log.Warn("address rejected", "addressId", payload.Address.ID, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}
