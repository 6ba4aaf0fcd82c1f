package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"location_saver_backend/internal/session"
	"location_saver_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const persistMaxRetry = 10

// Client enqueues address writes for the worker. It satisfies the picker's
// Persister so commits return as soon as the task is queued.
type Client struct {
	client *asynq.Client
	queue  string
	now    func() time.Time
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
		now:    time.Now,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Create enqueues the address under a task id derived from the address id, so
// a second enqueue of the same address is a no-op.
func (c *Client) Create(ctx context.Context, userID uuid.UUID, a session.SavedAddress) (session.SavedAddress, error) {
	if c == nil || c.client == nil {
		return session.SavedAddress{}, fmt.Errorf("scheduler client not configured")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = c.now().UTC()
	}

	task, err := NewPersistAddressTask(PersistAddressPayload{UserID: userID.String(), Address: a})
	if err != nil {
		return session.SavedAddress{}, err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(persistTaskID(a.ID)),
		asynq.MaxRetry(persistMaxRetry),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return session.SavedAddress{}, fmt.Errorf("enqueue address: %w", err)
	}
	return a, nil
}

func persistTaskID(addressID uuid.UUID) string {
	return TaskPersistAddress + ":" + addressID.String()
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
