package config

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/memengine"
	"github.com/MrMariodude/LibraCore/lending/postgresengine"
)

// OpenStore builds the configured storage engine and returns a func that releases its resources.
// The postgres schema is migrated first when RunMigrations is set.
func OpenStore(ctx context.Context, cfg AppConfig, logger *slog.Logger) (lending.Store, func(), error) {
	if cfg.StorageEngine == StorageEngineMemory {
		store, err := memengine.NewStore(memengine.WithContextualLogger(logger))
		return store, func() {}, err
	}

	options := []postgresengine.Option{postgresengine.WithContextualLogger(logger)}

	switch cfg.AdapterType {
	case AdapterTypeSQLDB:
		db, err := PostgresSQLDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		if cfg.RunMigrations {
			if err := postgresengine.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}

		store, err := postgresengine.NewStoreFromSQLDB(db, options...)

		return store, func() { _ = db.Close() }, err

	case AdapterTypeSQLX:
		db, err := PostgresSQLX(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		if cfg.RunMigrations {
			if err := postgresengine.Migrate(ctx, db.DB); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}

		store, err := postgresengine.NewStoreFromSQLX(db, options...)

		return store, func() { _ = db.Close() }, err

	default:
		poolConfig, err := PostgresPGXPoolConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, err
		}

		if cfg.RunMigrations {
			if err := postgresengine.MigrateFromPGXPool(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}

		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)

		return store, pool.Close, err
	}
}
