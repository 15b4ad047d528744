package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/target/todo-sync/config"
	"github.com/target/todo-sync/internal/adapters/filestore"
	"github.com/target/todo-sync/internal/adapters/pgstore"
	"github.com/target/todo-sync/internal/adapters/redisstore"
	"github.com/target/todo-sync/internal/ports"
)

// StoreBuildConfig contains configuration for the durable store.
type StoreBuildConfig struct {
	Store  config.StoreConfig
	Logger *slog.Logger
}

// StoreHandle bundles a durable store with the connections behind it so
// callers can close them on shutdown.
type StoreHandle struct {
	Store ports.DurableStore

	redisClient redis.UniversalClient
	db          *sql.DB
}

// Close releases any connections held by the store.
func (h *StoreHandle) Close() error {
	var errs []error
	if h.redisClient != nil {
		if err := h.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// BuildDurableStore creates a durable store based on the configured backend.
func BuildDurableStore(ctx context.Context, cfg StoreBuildConfig) (*StoreHandle, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendFile:
		store, err := filestore.New(cfg.Store.File.Dir)
		if err != nil {
			return nil, err
		}
		if cfg.Logger != nil {
			cfg.Logger.Info("using file store", "dir", cfg.Store.File.Dir)
		}
		return &StoreHandle{Store: store}, nil

	case config.StoreBackendRedis:
		client, err := ConnectRedis(cfg.Store.Redis, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return &StoreHandle{Store: redisstore.NewStore(client), redisClient: client}, nil

	case config.StoreBackendPostgres:
		db, err := ConnectDB(cfg.Store.Postgres, cfg.Logger)
		if err != nil {
			return nil, err
		}
		store := pgstore.NewStore(db)
		if cfg.Store.Postgres.RunMigrationsOnStart {
			if err := store.Migrate(ctx); err != nil {
				if closeErr := db.Close(); closeErr != nil {
					err = errors.Join(err, fmt.Errorf("close database: %w", closeErr))
				}
				return nil, err
			}
		}
		return &StoreHandle{Store: store, db: db}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// ConnectRedis establishes a connection to Redis.
//
//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	}
	return client, nil
}

// ConnectDB establishes a connection to the PostgreSQL database.
func ConnectDB(cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if logger != nil {
		logger.Info("database connected", "host", cfg.Host, "port", cfg.Port, "database", cfg.Name)
	}
	return db, nil
}
