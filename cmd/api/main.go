package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"location_saver_backend/internal/adapters"
	"location_saver_backend/internal/addresses"
	"location_saver_backend/internal/auth"
	"location_saver_backend/internal/auth/revocation"
	"location_saver_backend/internal/geocoding"
	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/internal/http/router"
	"location_saver_backend/internal/picker"
	"location_saver_backend/internal/scheduler"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/config"
	"location_saver_backend/platform/db"
	"location_saver_backend/platform/logger"
	"location_saver_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	health := map[string]apphttp.HealthChecker{
		"database": db.NewPoolAdapter(pool),
	}

	redisClient := initRedis(cfg, log)
	var revocations auth.RevocationStore = revocation.NewMemoryStore()
	if redisClient != nil {
		defer redisClient.Close()
		revocations = revocation.NewRedisStore(redisClient)
		health["redis"] = redisPinger{client: redisClient}
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	sessionModule := session.NewModule(cfg, log)
	geocodingModule := geocoding.NewModule(cfg, redisClient, log)

	addressesModule, err := addresses.NewModule(pool, val, log)
	if err != nil {
		log.Error("failed to initialize addresses module", "error", err)
		panic("failed to initialize addresses module: " + err.Error())
	}

	persister, closeQueue := initPersister(cfg, addressesModule, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	pickerModule, err := picker.NewModule(sessionModule.Registry(), geocodingModule, persister, val, log)
	if err != nil {
		log.Error("failed to initialize picker module", "error", err)
		panic("failed to initialize picker module: " + err.Error())
	}

	// Login and logout drive the in-memory session and selection flow
	hooks := adapters.NewAuthSessionHooks(sessionModule.Registry(), pickerModule.Machines())
	authModule := auth.NewModule(pool, cfg, revocations, hooks, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:      cfg,
		Logger:      log,
		Health:      health,
		Revocations: revocations,
		Modules: []apphttp.Module{
			authModule,
			sessionModule,
			geocodingModule,
			pickerModule,
			addressesModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessionModule.RunJanitor(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// initPersister picks how committed addresses reach Postgres: through the
// task queue when Redis is configured, directly otherwise.
func initPersister(cfg config.SchedulerConfig, addressesModule *addresses.Module, log *logger.Logger) (picker.Persister, func()) {
	direct := addressesModule.Service()
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; addresses are written synchronously")
		return direct, nil
	}

	queue, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize address queue client", "error", err)
		return direct, nil
	}

	return adapters.NewQueuedPersister(queue, direct, log), func() {
		_ = queue.Close()
	}
}

func initRedis(cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; geocode cache disabled, token revocation kept in memory")
		return nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		panic("invalid REDIS_URL: " + err.Error())
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt)
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
