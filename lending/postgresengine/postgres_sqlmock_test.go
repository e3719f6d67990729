package postgresengine_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/postgresengine"
	"github.com/MrMariodude/LibraCore/testutil/helper"
)

const (
	reserveStatement    = `^UPDATE "items" SET "available_copies"=available_copies - 1 WHERE`
	releaseStatement    = `^UPDATE "items" SET "available_copies"=available_copies \+ 1 WHERE`
	itemExistsQuery     = `^SELECT 1 FROM "items" WHERE`
	loanExistsQuery     = `^SELECT 1 FROM "loans" WHERE`
	insertLoanStatement = `^INSERT INTO "loans"`
	insertItemStatement = `^INSERT INTO "items"`
	updateLoanStatement = `^UPDATE "loans" SET .* WHERE \(\("id" = '.+'\) AND \("version" = 1\)\)`
	selectLoanQuery     = `^SELECT CAST\("id" AS TEXT\) AS "id", CAST\("item_id" AS TEXT\) AS "item_id", .* FROM "loans" WHERE`
	setTotalCopiesQuery = `^UPDATE "items" SET .*"total_copies"=4 .*RETURNING`
	deleteItemStatement = `^DELETE FROM "items" WHERE`
)

func newMockedStore(t *testing.T, options ...postgresengine.Option) (*postgresengine.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := postgresengine.NewStoreFromSQLDB(db, options...)
	require.NoError(t, err)

	return store, mock
}

func Test_Constructors_RejectNilConnections(t *testing.T) {
	_, err := postgresengine.NewStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromSQLX(nil)
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)
}

func Test_WithinTx_ReserveAndInsertCommit(t *testing.T) {
	// setup
	store, mock := newMockedStore(t)
	fakeClock := time.Unix(0, 0).UTC()
	itemID := uuid.New()

	// arrange
	mock.ExpectBegin()
	mock.ExpectExec(reserveStatement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertLoanStatement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		if err := tx.Ledger().TryReserve(ctx, itemID); err != nil {
			return err
		}

		return tx.Loans().Insert(ctx, lending.Loan{
			ID:         uuid.New(),
			ItemID:     itemID,
			BorrowerID: "reader-1",
			CheckoutAt: fakeClock,
			DueAt:      fakeClock.Add(24 * time.Hour),
			State:      lending.LoanStateActive,
		})
	})

	// assert
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_TryReserve_NoCopiesRollsBack(t *testing.T) {
	// setup
	metricsSpy := helper.NewMetricsCollectorSpy(true)
	store, mock := newMockedStore(t, postgresengine.WithMetrics(metricsSpy))

	// arrange
	mock.ExpectBegin()
	mock.ExpectExec(reserveStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(itemExistsQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().TryReserve(ctx, uuid.New())
	})

	// assert
	assert.ErrorIs(t, err, lending.ErrNoCopiesAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, metricsSpy.CountCounter("lending_ledger_reservations_total", "status", "no_copies"))
}

func Test_TryReserve_UnknownItem(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(reserveStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(itemExistsQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().TryReserve(ctx, uuid.New())
	})

	assert.ErrorIs(t, err, lending.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Release_AtTotalCopiesIsClamped(t *testing.T) {
	logHandler := helper.NewLogHandlerSpy(false)
	store, mock := newMockedStore(t, postgresengine.WithContextualLogger(slog.New(logHandler)))

	mock.ExpectBegin()
	mock.ExpectExec(releaseStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(itemExistsQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	if lending.StrictRelease {
		mock.ExpectRollback()
	} else {
		mock.ExpectCommit()
	}

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().Release(ctx, uuid.New())
	})

	if lending.StrictRelease {
		assert.ErrorIs(t, err, lending.ErrReleaseExceedsTotal)
	} else {
		assert.NoError(t, err)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, logHandler.HasWarnLogWithMessage("release clamped at total copies").Assert())
}

func Test_UpdateLoan_StaleVersionIsConflict(t *testing.T) {
	// setup
	store, mock := newMockedStore(t)
	loan := lending.Loan{ID: uuid.New(), ItemID: uuid.New(), State: lending.LoanStateReturned}

	// arrange
	mock.ExpectExec(updateLoanStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(loanExistsQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	// act
	err := store.Loans().Update(context.Background(), loan, lending.InitialLoanVersion)

	// assert
	assert.ErrorIs(t, err, lending.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_UpdateLoan_UnknownLoan(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectExec(updateLoanStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(loanExistsQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	err := store.Loans().Update(
		context.Background(),
		lending.Loan{ID: uuid.New(), State: lending.LoanStateReturned},
		lending.InitialLoanVersion,
	)

	assert.ErrorIs(t, err, lending.ErrLoanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SerializationFailureIsConcurrencyConflict(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(reserveStatement).WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx lending.Tx) error {
		return tx.Ledger().TryReserve(ctx, uuid.New())
	})

	assert.ErrorIs(t, err, lending.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CommitFailureWithDeadlockIsConcurrencyConflict(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})

	err := store.WithinTx(context.Background(), func(context.Context, lending.Tx) error {
		return nil
	})

	assert.ErrorIs(t, err, lending.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_WithinTx_RollsBackAndRethrowsPanics(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = store.WithinTx(context.Background(), func(context.Context, lending.Tx) error {
			panic("kaboom")
		})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_WithinTx_BeginFailure(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := store.WithinTx(context.Background(), func(context.Context, lending.Tx) error {
		t.Fatal("must not run")
		return nil
	})

	assert.ErrorIs(t, err, lending.ErrTransactionFailed)
}

func Test_AddItem_DuplicateTitle(t *testing.T) {
	store, mock := newMockedStore(t)
	item, err := lending.BuildItem(uuid.New(), "Refactoring", "Martin Fowler", "software", time.Time{}, 2)
	require.NoError(t, err)

	mock.ExpectExec(insertItemStatement).WillReturnError(&pq.Error{Code: "23505", Constraint: "items_title_key"})

	assert.ErrorIs(t, store.Catalog().AddItem(context.Background(), item), lending.ErrDuplicateTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RemoveItem(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectExec(deleteItemStatement).WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectExec(deleteItemStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteItemStatement).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.ErrorIs(t, store.Catalog().RemoveItem(context.Background(), uuid.New()), lending.ErrItemHasLoans)
	assert.ErrorIs(t, store.Catalog().RemoveItem(context.Background(), uuid.New()), lending.ErrItemNotFound)
	assert.NoError(t, store.Catalog().RemoveItem(context.Background(), uuid.New()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SetTotalCopies_BelowCopiesOnLoan(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectQuery(setTotalCopiesQuery).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(itemExistsQuery).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	_, err := store.Catalog().SetTotalCopies(context.Background(), uuid.New(), 4)

	assert.ErrorIs(t, err, lending.ErrCopiesOnLoan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetLoan_ScansAllColumns(t *testing.T) {
	// setup
	store, mock := newMockedStore(t)
	fakeClock := time.Unix(0, 0).UTC()
	loanID, itemID := uuid.New(), uuid.New()
	closedAt := fakeClock.Add(20 * 24 * time.Hour)

	// arrange
	mock.ExpectQuery(selectLoanQuery).WillReturnRows(sqlmock.NewRows([]string{
		"id", "item_id", "borrower_id", "checkout_at", "due_at", "state", "penalty_snapshot_cents", "closed_at", "version",
	}).AddRow(
		loanID.String(), itemID.String(), "reader-1", fakeClock, fakeClock.Add(14*24*time.Hour),
		"returned", int64(1300), closedAt, int64(3),
	))

	// act
	loan, err := store.Loans().Get(context.Background(), loanID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, loanID, loan.ID)
	assert.Equal(t, itemID, loan.ItemID)
	assert.Equal(t, lending.LoanStateReturned, loan.State)
	assert.Equal(t, lending.Cents(1300), loan.SnapshotOrZero())
	require.NotNil(t, loan.ClosedAt)
	assert.Equal(t, closedAt, *loan.ClosedAt)
	assert.Equal(t, uint(3), loan.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetLoan_NotFound(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectQuery(selectLoanQuery).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Loans().Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, lending.ErrLoanNotFound)
}

func Test_QueryFailureIsWrapped(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectQuery(`^SELECT .* FROM "items"`).WillReturnError(sql.ErrConnDone)

	_, err := store.Catalog().ListItems(context.Background())

	assert.ErrorIs(t, err, lending.ErrQueryingFailed)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
