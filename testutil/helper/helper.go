package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MrMariodude/LibraCore/lending"
)

// GivenUniqueID returns a new time-ordered id.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id
}

// FixtureItem builds a valid item with a unique title and all copies available.
func FixtureItem(t testing.TB, totalCopies int) lending.Item {
	id := GivenUniqueID(t)

	item, err := lending.BuildItem(
		id,
		"Learning Domain-Driven Design "+id.String(),
		"Vlad Khononov",
		"Software",
		time.Date(2021, time.October, 1, 0, 0, 0, 0, time.UTC),
		totalCopies,
	)
	require.NoError(t, err, "error in arranging test data")

	return item
}

// GivenItemInCatalog adds a fixture item with the given number of copies and returns it.
func GivenItemInCatalog(ctx context.Context, t testing.TB, catalog lending.Catalog, totalCopies int) lending.Item {
	item := FixtureItem(t, totalCopies)
	require.NoError(t, catalog.AddItem(ctx, item), "error in arranging test data")

	return item
}

// FixtureActiveLoan builds an active loan of item checked out at checkoutAt, due a week later.
func FixtureActiveLoan(t testing.TB, itemID uuid.UUID, borrowerID string, checkoutAt time.Time) lending.Loan {
	return lending.Loan{
		ID:         GivenUniqueID(t),
		ItemID:     itemID,
		BorrowerID: borrowerID,
		CheckoutAt: checkoutAt,
		DueAt:      checkoutAt.Add(7 * 24 * time.Hour),
		State:      lending.LoanStateActive,
		Version:    lending.InitialLoanVersion,
	}
}

// GivenActiveLoan reserves a copy of item and inserts an active loan for it in one transaction.
func GivenActiveLoan(
	ctx context.Context,
	t testing.TB,
	store lending.Store,
	itemID uuid.UUID,
	borrowerID string,
	checkoutAt time.Time,
) lending.Loan {

	loan := FixtureActiveLoan(t, itemID, borrowerID, checkoutAt)

	err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		if err := tx.Ledger().TryReserve(ctx, itemID); err != nil {
			return err
		}

		return tx.Loans().Insert(ctx, loan)
	})
	require.NoError(t, err, "error in arranging test data")

	return loan
}
