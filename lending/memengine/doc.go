// Package memengine provides an in-memory implementation of the lending.Store interface.
//
// Item counters are guarded by one mutex per item. A transaction locks every item it touches
// and keeps the locks until it commits or rolls back, so two transactions on the same item are
// serialized while transactions on different items never block each other.
// Loan and catalog writes are buffered inside the transaction and validated again at commit;
// loan updates use the same optimistic version check as the postgres engine.
//
// Usage:
//
//	store, _ := memengine.NewStore(memengine.WithLogger(slog.Default()))
//
//	err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
//		if err := tx.Ledger().TryReserve(ctx, itemID); err != nil {
//			return err
//		}
//
//		return tx.Loans().Insert(ctx, loan)
//	})
package memengine
