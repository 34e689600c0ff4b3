package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/recurring-payments/internal/api"
	"github.com/LeventeLantos/recurring-payments/internal/cache"
	"github.com/LeventeLantos/recurring-payments/internal/config"
	"github.com/LeventeLantos/recurring-payments/internal/logger"
	"github.com/LeventeLantos/recurring-payments/internal/scheduled"
	"github.com/LeventeLantos/recurring-payments/internal/scheduler"
	"github.com/LeventeLantos/recurring-payments/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("recurring payments service failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.FromContext(ctx)
	log.Info().
		Str("addr", cfg.Server.Address).
		Str("interval", cfg.Scheduler.Interval.String()).
		Str("storage", cfg.Storage.Backend).
		Str("payment_mode", cfg.Payment.Mode).
		Bool("redis", cfg.Redis.Enabled).
		Msg("recurring payments starting")

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return err
		}
	}

	store, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	payments, err := newPaymentClient(cfg.Payment)
	if err != nil {
		return err
	}

	exec := service.NewExecutor(payments, cfg.Scheduler.PaymentTimeout, log.With().Str("component", "executor").Logger())

	var receipts cache.ReceiptCache
	if rdb != nil {
		receipts = cache.NewRedisCache(rdb, cfg.Redis.TTL)
		exec.WithHooks(receiptHook(receipts), nil)
	}

	mgr, err := scheduled.New(ctx, store, exec,
		scheduled.WithLogger(log.With().Str("component", "scheduled").Logger()),
		scheduled.WithSaveTimeout(cfg.Storage.SaveTimeout),
	)
	if err != nil {
		return err
	}

	if cfg.Seed {
		n, err := mgr.SeedIfEmpty(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("definitions", n).Msg("seeded sample scheduled transactions")
		}
	}

	sched, err := scheduler.New(cfg.Scheduler.Interval, func(ctx context.Context) { mgr.RunDue(ctx) },
		scheduler.WithLogger(log.With().Str("component", "scheduler").Logger()),
		scheduler.WithRunOnStart(cfg.Scheduler.RunOnStart),
	)
	if err != nil {
		return err
	}

	h := api.NewHandler(sched, mgr, cfg.Scheduler.HorizonDays).WithReceipts(receipts)
	if sc, ok := payments.(api.StatusChecker); ok {
		h.WithStatusChecker(sc, cfg.Scheduler.PaymentTimeout)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.Router(h, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
	}

	// Let an in-flight tick finish before the store is closed.
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}

	log.Info().Interface("stats", mgr.Stats()).Msg("recurring payments stopped")
	return serveErr
}
