package memengine_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/memengine"
	"github.com/MrMariodude/LibraCore/testutil/helper"
)

func newStoreWithItem(t *testing.T, copies int, options ...memengine.Option) (*memengine.Store, lending.Item) {
	t.Helper()

	store, err := memengine.NewStore(options...)
	require.NoError(t, err)

	item, err := lending.BuildItem(uuid.New(), "Domain-Driven Design", "Eric Evans", "software", time.Time{}, copies)
	require.NoError(t, err)
	require.NoError(t, store.Catalog().AddItem(context.Background(), item))

	return store, item
}

func newLoan(itemID uuid.UUID, borrowerID string, checkoutAt time.Time) lending.Loan {
	return lending.Loan{
		ID:         uuid.New(),
		ItemID:     itemID,
		BorrowerID: borrowerID,
		CheckoutAt: checkoutAt,
		DueAt:      checkoutAt.Add(14 * 24 * time.Hour),
		State:      lending.LoanStateActive,
		Version:    lending.InitialLoanVersion,
	}
}

func Test_TryReserve_ConcurrentCheckoutsNeverOverAllocate(t *testing.T) {
	// setup
	const copies = 3
	const contenders = 50
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, item := newStoreWithItem(t, copies)

	// act
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, noCopies := 0, 0
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()
			<-start

			err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
				if err := tx.Ledger().TryReserve(ctx, item.ID); err != nil {
					return err
				}

				return tx.Loans().Insert(ctx, newLoan(item.ID, "reader", fakeClock.Add(time.Duration(n)*time.Second)))
			})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				successes++
			case errors.Is(err, lending.ErrNoCopiesAvailable):
				noCopies++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	// assert
	assert.Equal(t, copies, successes)
	assert.Equal(t, contenders-copies, noCopies)

	reloaded, err := store.Catalog().GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.AvailableCopies)

	outstanding, err := store.Loans().CountOutstanding(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, copies, outstanding)
}

func Test_TryReserve_UnknownItem(t *testing.T) {
	store, _ := newStoreWithItem(t, 1)

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().TryReserve(ctx, uuid.New())
	})

	assert.ErrorIs(t, err, lending.ErrItemNotFound)
}

func Test_Release_ClampsAtTotalCopies(t *testing.T) {
	// setup
	ctx := context.Background()
	logHandler := helper.NewLogHandlerSpy(false)
	metricsSpy := helper.NewMetricsCollectorSpy(true)
	store, item := newStoreWithItem(
		t,
		2,
		memengine.WithLogger(slog.New(logHandler)),
		memengine.WithMetrics(metricsSpy),
	)

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().Release(ctx, item.ID)
	})

	// assert
	if lending.StrictRelease {
		assert.ErrorIs(t, err, lending.ErrReleaseExceedsTotal)
	} else {
		assert.NoError(t, err)
	}

	reloaded, err := store.Catalog().GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.AvailableCopies)
	assert.True(t, logHandler.HasWarnLogWithMessage("release clamped at total copies").Assert())
	assert.Equal(t, 1, metricsSpy.CountCounter("lending_ledger_releases_total", "status", "clamped"))
}

func Test_WithinTx_RollsBackOnError(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, item := newStoreWithItem(t, 1)
	loan := newLoan(item.ID, "reader-1", fakeClock)
	failure := errors.New("boom")

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		require.NoError(t, tx.Ledger().TryReserve(ctx, item.ID))
		require.NoError(t, tx.Loans().Insert(ctx, loan))

		return failure
	})

	// assert
	assert.ErrorIs(t, err, failure)

	reloaded, err := store.Catalog().GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.AvailableCopies)

	_, err = store.Loans().Get(ctx, loan.ID)
	assert.ErrorIs(t, err, lending.ErrLoanNotFound)
}

func Test_WithinTx_RollsBackAndRethrowsPanics(t *testing.T) {
	ctx := context.Background()
	store, item := newStoreWithItem(t, 1)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
			_ = tx.Ledger().TryReserve(ctx, item.ID)
			panic("kaboom")
		})
	})

	reloaded, err := store.Catalog().GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.AvailableCopies, "the item lock must be released and the reservation undone")
}

func Test_WithinTx_HonorsCancelledContext(t *testing.T) {
	store, _ := newStoreWithItem(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WithinTx(ctx, func(context.Context, lending.Tx) error {
		t.Fatal("must not run")
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Update_DetectsStaleVersion(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, item := newStoreWithItem(t, 1)
	loan := newLoan(item.ID, "reader-1", fakeClock)
	require.NoError(t, store.Loans().Insert(ctx, loan))

	returned := loan
	returned.State = lending.LoanStateReturned
	closedAt := fakeClock.Add(time.Hour)
	returned.ClosedAt = &closedAt

	// act
	require.NoError(t, store.Loans().Update(ctx, returned, lending.InitialLoanVersion))
	err := store.Loans().Update(ctx, returned, lending.InitialLoanVersion)

	// assert
	assert.ErrorIs(t, err, lending.ErrConcurrencyConflict)

	reloaded, err := store.Loans().Get(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, lending.LoanStateReturned, reloaded.State)
	assert.Equal(t, lending.InitialLoanVersion+1, reloaded.Version)
	require.NotNil(t, reloaded.ClosedAt)
	assert.Equal(t, closedAt, *reloaded.ClosedAt)
}

func Test_Update_ConflictIsDetectedAtCommit(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, item := newStoreWithItem(t, 1)
	loan := newLoan(item.ID, "reader-1", fakeClock)
	require.NoError(t, store.Loans().Insert(ctx, loan))

	pending := loan
	pending.State = lending.LoanStatePendingPayment

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		if err := tx.Loans().Update(ctx, pending, lending.InitialLoanVersion); err != nil {
			return err
		}

		// a concurrent writer commits first
		return store.Loans().Update(ctx, pending, lending.InitialLoanVersion)
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrConcurrencyConflict)

	reloaded, err := store.Loans().Get(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, lending.InitialLoanVersion+1, reloaded.Version)
}

func Test_Insert_RequiresExistingItem(t *testing.T) {
	store, _ := newStoreWithItem(t, 1)

	err := store.Loans().Insert(context.Background(), newLoan(uuid.New(), "reader-1", time.Unix(0, 0).UTC()))

	assert.ErrorIs(t, err, lending.ErrItemNotFound)
}

func Test_ListForBorrower_And_ListOverdue(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, item := newStoreWithItem(t, 5)

	first := newLoan(item.ID, "reader-1", fakeClock)
	second := newLoan(item.ID, "reader-1", fakeClock.Add(20*24*time.Hour))
	other := newLoan(item.ID, "reader-2", fakeClock.Add(time.Hour))

	returned := newLoan(item.ID, "reader-2", fakeClock)
	returned.State = lending.LoanStateReturned

	for _, loan := range []lending.Loan{second, other, first, returned} {
		require.NoError(t, store.Loans().Insert(ctx, loan))
	}

	// act
	borrowerLoans, err := store.Loans().ListForBorrower(ctx, "reader-1")
	require.NoError(t, err)

	overdue, err := store.Loans().ListOverdue(ctx, fakeClock.Add(15*24*time.Hour))
	require.NoError(t, err)

	// assert
	require.Len(t, borrowerLoans, 2)
	assert.Equal(t, first.ID, borrowerLoans[0].ID)
	assert.Equal(t, second.ID, borrowerLoans[1].ID)

	require.Len(t, overdue, 2)
	assert.Equal(t, first.ID, overdue[0].ID)
	assert.Equal(t, other.ID, overdue[1].ID)

	none, err := store.Loans().ListForBorrower(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func Test_Catalog_AddItem_RejectsDuplicateTitle(t *testing.T) {
	store, item := newStoreWithItem(t, 1)

	duplicate, err := lending.BuildItem(uuid.New(), item.Title, "Another Author", "", time.Time{}, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Catalog().AddItem(context.Background(), duplicate), lending.ErrDuplicateTitle)
}

func Test_Catalog_AddItem_RolledBackFreesTitle(t *testing.T) {
	ctx := context.Background()
	store, err := memengine.NewStore()
	require.NoError(t, err)

	item, err := lending.BuildItem(uuid.New(), "Refactoring", "Martin Fowler", "software", time.Time{}, 1)
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		require.NoError(t, tx.Catalog().AddItem(ctx, item))
		return errors.New("abort")
	})
	require.Error(t, err)

	_, err = store.Catalog().GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, lending.ErrItemNotFound)
	assert.NoError(t, store.Catalog().AddItem(ctx, item))
}

func Test_Catalog_SetTotalCopies(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, item := newStoreWithItem(t, 3)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		if err := tx.Ledger().TryReserve(ctx, item.ID); err != nil {
			return err
		}

		return tx.Loans().Insert(ctx, newLoan(item.ID, "reader-1", fakeClock))
	}))

	// act & assert
	updated, err := store.Catalog().SetTotalCopies(ctx, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCopies)
	assert.Equal(t, 4, updated.AvailableCopies)

	updated, err = store.Catalog().SetTotalCopies(ctx, item.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.AvailableCopies)

	_, err = store.Catalog().SetTotalCopies(ctx, item.ID, 0)
	assert.ErrorIs(t, err, lending.ErrCopiesOnLoan)

	_, err = store.Catalog().SetTotalCopies(ctx, item.ID, -1)
	assert.ErrorIs(t, err, lending.ErrInvalidCopyCount)
}

func Test_Catalog_RemoveItem(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, borrowed := newStoreWithItem(t, 1)

	unused, err := lending.BuildItem(uuid.New(), "Working Effectively with Legacy Code", "Michael Feathers", "software", time.Time{}, 1)
	require.NoError(t, err)
	require.NoError(t, store.Catalog().AddItem(ctx, unused))
	require.NoError(t, store.Loans().Insert(ctx, newLoan(borrowed.ID, "reader-1", fakeClock)))

	// act & assert
	assert.ErrorIs(t, store.Catalog().RemoveItem(ctx, borrowed.ID), lending.ErrItemHasLoans)
	require.NoError(t, store.Catalog().RemoveItem(ctx, unused.ID))

	_, err = store.Catalog().GetItem(ctx, unused.ID)
	assert.ErrorIs(t, err, lending.ErrItemNotFound)
	assert.ErrorIs(t, store.Catalog().RemoveItem(ctx, unused.ID), lending.ErrItemNotFound)

	items, err := store.Catalog().ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, borrowed.ID, items[0].ID)
}

func Test_Catalog_SearchItems(t *testing.T) {
	// setup
	ctx := context.Background()
	store, _ := newStoreWithItem(t, 1)

	other, err := lending.BuildItem(uuid.New(), "The Left Hand of Darkness", "Ursula K. Le Guin", "science fiction", time.Time{}, 2)
	require.NoError(t, err)
	require.NoError(t, store.Catalog().AddItem(ctx, other))

	// act
	byAuthor, err := store.Catalog().SearchItems(ctx, lending.SearchByAuthor, "le guin")
	require.NoError(t, err)

	byGenre, err := store.Catalog().SearchItems(ctx, lending.SearchByGenre, "SOFTWARE")
	require.NoError(t, err)

	byTitle, err := store.Catalog().SearchItems(ctx, lending.SearchByTitle, "design")
	require.NoError(t, err)

	all, err := store.Catalog().SearchItems(ctx, lending.SearchByTitle, "  ")
	require.NoError(t, err)

	// assert
	require.Len(t, byAuthor, 1)
	assert.Equal(t, other.ID, byAuthor[0].ID)
	require.Len(t, byGenre, 1)
	assert.Equal(t, "Domain-Driven Design", byGenre[0].Title)
	assert.Len(t, byTitle, 1)
	assert.Len(t, all, 2)
}

func Test_WithinTx_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	metricsSpy := helper.NewMetricsCollectorSpy(true)
	store, item := newStoreWithItem(t, 1, memengine.WithMetrics(metricsSpy))

	_ = store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().TryReserve(ctx, item.ID)
	})
	_ = store.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().TryReserve(ctx, item.ID)
	})

	assert.Equal(t, 1, metricsSpy.CountCounter("lending_ledger_reservations_total", "status", "reserved"))
	assert.Equal(t, 1, metricsSpy.CountCounter("lending_ledger_reservations_total", "status", "no_copies"))
	assert.GreaterOrEqual(t, len(metricsSpy.GetDurationRecords()), 3)
}
