// Package postgresengine provides a PostgreSQL implementation of the lending.Store interface.
//
// All statements are rendered with goqu (postgres dialect, values inlined) and executed through
// one of three adapters (pgx, sql.DB, sqlx). Copy reservations are single conditional UPDATEs,
// so two transactions can never take the last copy of an item twice. Loan updates carry an
// optimistic version check; a stale version surfaces as lending.ErrConcurrencyConflict,
// as do serialization failures and deadlocks reported by the server.
//
// Usage:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	_ = postgresengine.MigrateFromPGXPool(ctx, pool)
//
//	store, _ := postgresengine.NewStoreFromPGXPool(
//		pool,
//		postgresengine.WithLogger(logger),
//		postgresengine.WithMetrics(metricsCollector),
//	)
//
//	err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
//		if err := tx.Ledger().TryReserve(ctx, itemID); err != nil {
//			return err
//		}
//
//		return tx.Loans().Insert(ctx, loan)
//	})
package postgresengine
