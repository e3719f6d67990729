package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/postgresengine/internal/adapters"
)

const (
	dialectPostgres       = "postgres"
	tableItems            = "items"
	tableLoans            = "loans"
	colID                 = "id"
	colTitle              = "title"
	colAuthor             = "author"
	colGenre              = "genre"
	colPublishedAt        = "published_at"
	colTotalCopies        = "total_copies"
	colAvailableCopies    = "available_copies"
	colItemID             = "item_id"
	colBorrowerID         = "borrower_id"
	colCheckoutAt         = "checkout_at"
	colDueAt              = "due_at"
	colState              = "state"
	colPenaltySnapshot    = "penalty_snapshot_cents"
	colClosedAt           = "closed_at"
	colVersion            = "version"
	castText              = "TEXT"
	constraintItemsTitle  = "items_title_key"
	constraintItemsCopies = "items_available_copies_check"
)

// Store is a PostgreSQL-backed lending.Store.
type Store struct {
	db               adapters.DBAdapter
	dialect          goqu.DialectWrapper
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
	tracingCollector lending.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:      db,
		dialect: goqu.Dialect(dialectPostgres),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Loans returns a LoanRepository where every statement commits on its own.
func (s *Store) Loans() lending.LoanRepository {
	return loans{s: s, q: s.db}
}

// Catalog returns a Catalog where every statement commits on its own.
func (s *Store) Catalog() lending.Catalog {
	return catalog{s: s, q: s.db}
}

// WithinTx runs fn inside one database transaction.
// It commits if fn returns nil and rolls back otherwise. Panics roll back and are rethrown.
func (s *Store) WithinTx(ctx context.Context, fn lending.TxFunc) (err error) {
	observer, ctx := s.startTracing(ctx, spanNameTx, nil)
	start := time.Now()

	dbTx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginFailed, beginErr)
		observer.finishError(errorTypeBegin)

		return errors.Join(lending.ErrTransactionFailed, beginErr)
	}

	defer func() {
		rollbackCtx := context.WithoutCancel(ctx)

		if p := recover(); p != nil {
			_ = dbTx.Rollback(rollbackCtx)
			observer.finishError(errorTypePanic)
			panic(p)
		}

		if err != nil {
			if rollbackErr := dbTx.Rollback(rollbackCtx); rollbackErr != nil {
				s.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
			}

			s.recordDuration(ctx, metricTxDuration, time.Since(start), operationTx, statusRolledBack)
			observer.finishError(errorTypeOf(err))

			return
		}

		if commitErr := dbTx.Commit(ctx); commitErr != nil {
			err = s.mapDriverError(ctx, operationCommit, commitErr, lending.ErrTransactionFailed)
			s.recordDuration(ctx, metricTxDuration, time.Since(start), operationTx, statusError)
			observer.finishError(errorTypeOf(err))

			return
		}

		s.recordDuration(ctx, metricTxDuration, time.Since(start), operationTx, statusCommitted)
		observer.finishSuccess()
	}()

	return fn(ctx, txView{s: s, q: dbTx})
}

// txView binds the repositories to one open transaction.
type txView struct {
	s *Store
	q adapters.Queryer
}

func (t txView) Ledger() lending.InventoryLedger {
	return ledger{s: t.s, q: t.q}
}

func (t txView) Loans() lending.LoanRepository {
	return loans{s: t.s, q: t.q}
}

func (t txView) Catalog() lending.Catalog {
	return catalog{s: t.s, q: t.q}
}

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func toSQL(builder sqlBuilder) (string, error) {
	sqlQuery, _, err := builder.ToSQL()
	if err != nil {
		return "", errors.Join(lending.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// query runs a statement that returns rows. The caller must close the rows.
func (s *Store) query(ctx context.Context, q adapters.Queryer, operation string, builder sqlBuilder) (adapters.DBRows, error) {
	sqlQuery, err := toSQL(builder)
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err, logAttrOperation, operation)
		return nil, err
	}

	start := time.Now()
	rows, err := q.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if err != nil {
		s.recordDuration(ctx, metricQueryDuration, duration, operation, statusError)
		return nil, s.mapDriverError(ctx, operation, err, lending.ErrQueryingFailed)
	}

	s.recordDuration(ctx, metricQueryDuration, duration, operation, statusSuccess)

	return rows, nil
}

// exec runs a statement and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, q adapters.Queryer, operation string, builder sqlBuilder) (int64, error) {
	sqlQuery, err := toSQL(builder)
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err, logAttrOperation, operation)
		return 0, err
	}

	start := time.Now()
	result, err := q.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if err != nil {
		s.recordDuration(ctx, metricQueryDuration, duration, operation, statusError)
		return 0, s.mapDriverError(ctx, operation, err, lending.ErrExecutingFailed)
	}

	s.recordDuration(ctx, metricQueryDuration, duration, operation, statusSuccess)

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, err, logAttrOperation, operation)
		return 0, errors.Join(lending.ErrGettingRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

// exists reports whether the statement returns at least one row.
func (s *Store) exists(ctx context.Context, q adapters.Queryer, operation string, builder sqlBuilder) (bool, error) {
	rows, err := s.query(ctx, q, operation, builder)
	if err != nil {
		return false, err
	}
	defer s.closeRows(ctx, rows)

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, errors.Join(lending.ErrQueryingFailed, err)
	}

	return found, nil
}

func (s *Store) itemExists(ctx context.Context, q adapters.Queryer, itemID string) (bool, error) {
	return s.exists(ctx, q, operationItemExists, s.dialect.
		From(tableItems).
		Select(goqu.L("1")).
		Where(goqu.C(colID).Eq(itemID)).
		Limit(1))
}

func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logError(ctx, logMsgCloseRowsFailed, err)
	}
}

// collect scans all rows and closes them.
func collect[T any](ctx context.Context, s *Store, rows adapters.DBRows, scan func(adapters.DBRows) (T, error)) ([]T, error) {
	defer s.closeRows(ctx, rows)

	result := make([]T, 0)

	for rows.Next() {
		value, err := scan(rows)
		if err != nil {
			s.logError(ctx, logMsgScanRowFailed, err)
			return nil, err
		}

		result = append(result, value)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(lending.ErrQueryingFailed, err)
	}

	return result, nil
}

var _ lending.Store = (*Store)(nil)
