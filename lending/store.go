package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InventoryLedger owns the number of available copies per item.
// It is the only component allowed to change AvailableCopies during lending.
type InventoryLedger interface {
	// TryReserve atomically checks AvailableCopies > 0 and decrements it by one.
	// It returns ErrNoCopiesAvailable without side effects if no copy is left,
	// and ErrItemNotFound if the item does not exist.
	TryReserve(ctx context.Context, itemID uuid.UUID) error

	// Release atomically increments AvailableCopies by one, capped at TotalCopies.
	// Hitting the cap is reported through OverRelease.
	Release(ctx context.Context, itemID uuid.UUID) error
}

// LoanRepository persists loans. Loans are never deleted.
type LoanRepository interface {
	Insert(ctx context.Context, loan Loan) error
	Get(ctx context.Context, loanID uuid.UUID) (Loan, error)

	// Update stores loan if the persisted version equals expectedVersion and bumps the version by one.
	// It returns ErrConcurrencyConflict if another writer got there first.
	Update(ctx context.Context, loan Loan, expectedVersion uint) error

	ListForBorrower(ctx context.Context, borrowerID string) ([]Loan, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]Loan, error)
	CountOutstanding(ctx context.Context, itemID uuid.UUID) (int, error)
}

// Catalog manages items.
type Catalog interface {
	AddItem(ctx context.Context, item Item) error
	GetItem(ctx context.Context, itemID uuid.UUID) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	SearchItems(ctx context.Context, field SearchField, term string) ([]Item, error)

	// SetTotalCopies changes TotalCopies and shifts AvailableCopies by the same delta in one atomic step.
	// It returns ErrCopiesOnLoan if the new total is below the number of copies on loan.
	SetTotalCopies(ctx context.Context, itemID uuid.UUID, totalCopies int) (Item, error)

	// RemoveItem deletes an item. Items referenced by any loan cannot be removed (ErrItemHasLoans).
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
}

// Tx gives access to the storage components inside one atomic unit of work.
type Tx interface {
	Ledger() InventoryLedger
	Loans() LoanRepository
	Catalog() Catalog
}

// TxFunc is the unit of work executed by Store.WithinTx.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is a storage engine for the lending core.
//
// Loans and Catalog operate outside any explicit transaction, each call being atomic on its own.
// WithinTx runs fn so that all of its changes commit together or none do.
type Store interface {
	Loans() LoanRepository
	Catalog() Catalog
	WithinTx(ctx context.Context, fn TxFunc) error
}
