package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/MrMariodude/LibraCore/app/shared/shell/config"
	"github.com/MrMariodude/LibraCore/lending/postgresengine"
)

const (
	envEnabled     = "LIBRACORE_POSTGRES_TESTS"
	envAdapterType = "ADAPTER_TYPE"
	truncateTables = "TRUNCATE TABLE loans, items"
)

// Wrapper abstracts over the supported postgres adapters.
type Wrapper interface {
	GetStore() *postgresengine.Store
	Exec(ctx context.Context, query string) error
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *postgresengine.Store
}

func (w *PGXPoolWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.pool.Exec(ctx, query)
	return err
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db    *sql.DB
	store *postgresengine.Store
}

func (w *SQLDBWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close()
}

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db    *sqlx.DB
	store *postgresengine.Store
}

func (w *SQLXWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close()
}

// SkipUnlessEnabled skips the test unless LIBRACORE_POSTGRES_TESTS=1.
func SkipUnlessEnabled(t testing.TB) {
	t.Helper()

	if os.Getenv(envEnabled) != "1" {
		t.Skipf("postgres tests disabled, set %s=1 to run them", envEnabled)
	}
}

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE, migrates the schema
// and registers cleanup. The test is skipped unless postgres tests are enabled.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()
	SkipUnlessEnabled(t)

	ctx := context.Background()
	dsn := config.PostgresTestDSN()

	poolConfig, err := config.PostgresPGXPoolConfig(dsn)
	require.NoError(t, err, "error building the pool config in test setup")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err, "error connecting to DB pool in test setup")
	require.NoError(t, postgresengine.MigrateFromPGXPool(ctx, pool), "error migrating the test DB")

	var wrapper Wrapper

	switch adapterType := strings.ToLower(os.Getenv(envAdapterType)); adapterType {
	case config.AdapterTypePGXPool, "":
		store, storeErr := postgresengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, storeErr)
		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case config.AdapterTypeSQLDB:
		pool.Close()
		db, dbErr := config.PostgresSQLDB(ctx, dsn)
		require.NoError(t, dbErr, "error connecting to DB in test setup")
		store, storeErr := postgresengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, storeErr)
		wrapper = &SQLDBWrapper{db: db, store: store}

	case config.AdapterTypeSQLX:
		pool.Close()
		db, dbErr := config.PostgresSQLX(ctx, dsn)
		require.NoError(t, dbErr, "error connecting to DB in test setup")
		store, storeErr := postgresengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, storeErr)
		wrapper = &SQLXWrapper{db: db, store: store}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	CleanUp(t, wrapper)
	t.Cleanup(func() {
		CleanUp(t, wrapper)
		wrapper.Close()
	})

	return wrapper
}

// CleanUp empties the loans and items tables.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	require.NoError(t, wrapper.Exec(context.Background(), truncateTables), "error cleaning up the tables")
}
