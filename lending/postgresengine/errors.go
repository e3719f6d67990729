package postgresengine

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/MrMariodude/LibraCore/lending"
)

// sqlStateOf extracts the SQLSTATE and constraint name from pgx and lib/pq errors.
func sqlStateOf(err error) (code string, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}

	return "", ""
}

func isConcurrencyFailure(code string) bool {
	return code == pgerrcode.SerializationFailure || code == pgerrcode.DeadlockDetected
}

// mapDriverError turns serialization failures and deadlocks into lending.ErrConcurrencyConflict
// and wraps everything else with the given sentinel.
func (s *Store) mapDriverError(ctx context.Context, operation string, err error, sentinel error) error {
	code, _ := sqlStateOf(err)

	if isConcurrencyFailure(code) {
		s.logInfo(ctx, logMsgConcurrencyConflict, logAttrOperation, operation, logAttrSQLState, code)
		s.recordConcurrencyConflict(ctx, operation)

		return errors.Join(lending.ErrConcurrencyConflict, err)
	}

	// constraint violations are translated into domain errors by the callers
	if !pgerrcode.IsIntegrityConstraintViolation(code) {
		s.logError(ctx, logMsgDBFailed, err, logAttrOperation, operation, logAttrSQLState, code)
		s.recordErrorMetrics(ctx, operation, errorTypeOf(err))
	}

	return errors.Join(sentinel, err)
}

func errorTypeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, lending.ErrConcurrencyConflict):
		return errorTypeConflict
	case errors.Is(err, lending.ErrNoCopiesAvailable):
		return errorTypeNoCopies
	case errors.Is(err, lending.ErrItemNotFound), errors.Is(err, lending.ErrLoanNotFound):
		return errorTypeNotFound
	}

	if code, _ := sqlStateOf(err); code != "" {
		return errorTypeSQLStatePrefix + code
	}

	return errorTypeUnknown
}
