// Package lending provides the core abstractions and types for lending physical items
// with a limited number of copies.
//
// This package defines the domain types, the storage contracts and the common error definitions
// used across the different storage engines (memengine, postgresengine) and the application layer.
//
// Key types:
//   - Item: a catalog entry with TotalCopies and AvailableCopies
//   - Loan: one borrowing episode with its own LoanState
//   - Amount: money in minor units (cents)
//   - PenaltyPolicy: pure overdue penalty computation
//   - Clock: the single source of "now"
//   - InventoryLedger: the only code path allowed to change AvailableCopies
//   - Store: transactional access to the ledger, the loans and the catalog
//
// Common usage pattern:
//
//	err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
//		if err := tx.Ledger().TryReserve(ctx, itemID); err != nil {
//			return err // lending.ErrNoCopiesAvailable or lending.ErrItemNotFound
//		}
//
//		return tx.Loans().Insert(ctx, loan)
//	})
package lending
