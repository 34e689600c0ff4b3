package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/recurring-payments/internal/cache"
	"github.com/LeventeLantos/recurring-payments/internal/client"
	"github.com/LeventeLantos/recurring-payments/internal/config"
	"github.com/LeventeLantos/recurring-payments/internal/model"
	"github.com/LeventeLantos/recurring-payments/internal/repo"
	"github.com/LeventeLantos/recurring-payments/internal/service"
)

func noClose() error { return nil }

// openStore builds the configured persistence backend. The returned func
// releases its connection.
func openStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (repo.Persistence, func() error, error) {
	sc := cfg.Storage

	switch sc.Backend {
	case config.BackendMemory:
		return repo.NewMemoryStore(), noClose, nil

	case config.BackendFile:
		s, err := repo.NewFileStore(sc.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return s, noClose, nil

	case config.BackendPostgres:
		db, err := repo.OpenPostgres(ctx, sc.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		s := repo.NewPostgresStore(db)
		if err := s.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil

	case config.BackendRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("redis backend selected without a redis client")
		}
		return repo.NewRedisStore(rdb, cfg.Redis.Key), noClose, nil

	case config.BackendSQLite:
		s, err := repo.OpenSQLite(sc.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.BackendGCS:
		s, err := repo.NewGCSStore(ctx, sc.GCSBucket, sc.GCSObject)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
}

func newPaymentClient(pc config.PaymentConfig) (service.PaymentClient, error) {
	switch pc.Mode {
	case config.PaymentSimulated:
		return client.SimulatedClient{}, nil
	case config.PaymentMomo:
		return client.NewMomoClient(client.MomoConfig{
			BaseURL:         pc.BaseURL,
			SubscriptionKey: pc.SubscriptionKey,
			APIUserID:       pc.APIUserID,
			APIKey:          pc.APIKey,
			Environment:     pc.Environment,
		}), nil
	}
	return nil, fmt.Errorf("unknown payment mode %q", pc.Mode)
}

// receiptHook caches a receipt for every successful execution.
func receiptHook(c cache.ReceiptCache) service.Hook {
	return func(ctx context.Context, def model.ScheduledTransaction, exec model.TransactionExecution) error {
		return c.StoreReceipt(ctx, cache.ReceiptFor(exec))
	}
}
