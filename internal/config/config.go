package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendGCS      = "gcs"

	PaymentSimulated = "simulated"
	PaymentMomo      = "momo"
)

type Config struct {
	Server    ServerConfig
	Scheduler SchedulerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Payment   PaymentConfig
	Log       LogConfig
	Seed      bool
}

type ServerConfig struct {
	Address string
}

type SchedulerConfig struct {
	Interval       time.Duration
	PaymentTimeout time.Duration
	HorizonDays    int
	RunOnStart     bool
}

type StorageConfig struct {
	Backend     string
	FilePath    string
	PostgresURL string
	SQLitePath  string
	GCSBucket   string
	GCSObject   string
	SaveTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
	Key      string
}

type PaymentConfig struct {
	Mode            string
	BaseURL         string
	SubscriptionKey string
	APIUserID       string
	APIKey          string
	Environment     string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// LoadAll reads the whole configuration from the environment and reports
// every problem at once.
func LoadAll() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	intervalSec, err := getEnvInt("SCHED_INTERVAL_SECONDS", 60)
	collect(err)
	timeoutSec, err := getEnvInt("PAYMENT_TIMEOUT_SECONDS", 30)
	collect(err)
	horizon, err := getEnvInt("UPCOMING_HORIZON_DAYS", 7)
	collect(err)
	runOnStart, err := getEnvBool("SCHED_RUN_ON_START", true)
	collect(err)
	pretty, err := getEnvBool("LOG_PRETTY", false)
	collect(err)
	seed, err := getEnvBool("SEED_SAMPLE", false)
	collect(err)
	saveSec, err := getEnvInt("STORAGE_SAVE_TIMEOUT_SECONDS", 10)
	collect(err)

	redis, err := loadRedisConfig()
	collect(err)
	storage, err := loadStorageConfig(redis.Enabled)
	collect(err)
	payment, err := loadPaymentConfig()
	collect(err)

	storage.SaveTimeout = time.Duration(saveSec) * time.Second

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Scheduler: SchedulerConfig{
			Interval:       time.Duration(intervalSec) * time.Second,
			PaymentTimeout: time.Duration(timeoutSec) * time.Second,
			HorizonDays:    horizon,
			RunOnStart:     runOnStart,
		},
		Storage: storage,
		Redis:   redis,
		Payment: payment,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
		Seed: seed,
	}

	errs = append(errs, validate(cfg)...)
	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	db, dbErr := getEnvInt("REDIS_DB", 0)
	ttl, ttlErr := getEnvInt("REDIS_TTL_SECONDS", 86400)

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttl) * time.Second,
		Key:      getEnv("REDIS_KEY", "scheduled:snapshot"),
	}, errors.Join(dbErr, ttlErr)
}

func loadStorageConfig(redisEnabled bool) (StorageConfig, error) {
	sc := StorageConfig{
		Backend:   strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		FilePath:  getEnv("STORAGE_FILE", "data/scheduled.json"),
		GCSObject: getEnv("GCS_OBJECT", "scheduled/snapshot.json"),
	}

	var err error
	switch sc.Backend {
	case BackendMemory, BackendFile:
	case BackendPostgres:
		sc.PostgresURL, err = requireEnv("POSTGRES_URL")
	case BackendSQLite:
		sc.SQLitePath = getEnv("SQLITE_PATH", "data/scheduled.db")
	case BackendGCS:
		sc.GCSBucket, err = requireEnv("GCS_BUCKET")
	case BackendRedis:
		if !redisEnabled {
			err = errors.New("STORAGE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		err = fmt.Errorf("STORAGE_BACKEND must be one of memory, file, postgres, redis, sqlite, gcs (got %q)", sc.Backend)
	}
	return sc, err
}

func loadPaymentConfig() (PaymentConfig, error) {
	pc := PaymentConfig{
		Mode:        strings.ToLower(getEnv("PAYMENT_MODE", PaymentSimulated)),
		Environment: getEnv("MOMO_ENVIRONMENT", "sandbox"),
	}

	switch pc.Mode {
	case PaymentSimulated:
		return pc, nil
	case PaymentMomo:
	default:
		return pc, fmt.Errorf("PAYMENT_MODE must be simulated or momo (got %q)", pc.Mode)
	}

	var errs []error
	var err error
	if pc.BaseURL, err = requireEnv("MOMO_BASE_URL"); err != nil {
		errs = append(errs, err)
	}
	if pc.SubscriptionKey, err = requireEnv("MOMO_SUBSCRIPTION_KEY"); err != nil {
		errs = append(errs, err)
	}
	if pc.APIUserID, err = requireEnv("MOMO_API_USER"); err != nil {
		errs = append(errs, err)
	}
	if pc.APIKey, err = requireEnv("MOMO_API_KEY"); err != nil {
		errs = append(errs, err)
	}
	return pc, joinErrors(errs)
}

func validate(cfg *Config) []error {
	var errs []error
	if cfg.Scheduler.Interval <= 0 {
		errs = append(errs, errors.New("SCHED_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.Scheduler.PaymentTimeout <= 0 {
		errs = append(errs, errors.New("PAYMENT_TIMEOUT_SECONDS must be > 0"))
	}
	if cfg.Storage.SaveTimeout <= 0 {
		errs = append(errs, errors.New("STORAGE_SAVE_TIMEOUT_SECONDS must be > 0"))
	}
	if cfg.Scheduler.HorizonDays <= 0 {
		errs = append(errs, errors.New("UPCOMING_HORIZON_DAYS must be > 0"))
	}
	if cfg.Redis.Enabled && cfg.Redis.TTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL_SECONDS must be > 0"))
	}
	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid bool for env %s: %s", key, v)
	}
	return b, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
