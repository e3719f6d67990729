package postgresengine

import (
	"context"
	"math"
	"time"

	"github.com/MrMariodude/LibraCore/lending"
)

const (
	logMsgSQLExecuted          = "executed sql for: "
	logMsgBuildQueryFailed     = "failed to build query"
	logMsgDBFailed             = "database statement failed"
	logMsgRowsAffectedFailed   = "failed to get rows affected count"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgBeginFailed          = "failed to begin transaction"
	logMsgRollbackFailed       = "failed to roll back transaction"
	logMsgConcurrencyConflict  = "concurrency conflict detected"
	logMsgClampedRelease       = "release clamped at total copies"
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrDurationMS          = "duration_ms"
	logAttrOperation           = "operation"
	logAttrSQLState            = "sqlstate"
	logAttrItemID              = "item_id"
	metricQueryDuration        = "lending_postgres_query_duration_seconds"
	metricTxDuration           = "lending_postgres_tx_duration_seconds"
	metricDatabaseErrors       = "lending_postgres_errors_total"
	metricConcurrencyConflicts = "lending_concurrency_conflicts_total"
	metricReservations         = "lending_ledger_reservations_total"
	metricReleases             = "lending_ledger_releases_total"
	spanNameTx                 = "lending.tx"
	spanNameTryReserve         = "lending.ledger.try_reserve"
	spanNameRelease            = "lending.ledger.release"
	spanAttrItemID             = "item_id"
	spanAttrErrorType          = "error_type"
	labelOperation             = "operation"
	labelStatus                = "status"
	labelErrorType             = "error_type"
	labelEngine                = "engine"
	engineName                 = "postgres"
)

const (
	operationTx             = "tx"
	operationCommit         = "commit"
	operationItemExists     = "item_exists"
	operationLoanExists     = "loan_exists"
	operationTryReserve     = "try_reserve"
	operationRelease        = "release"
	operationInsertLoan     = "insert_loan"
	operationGetLoan        = "get_loan"
	operationUpdateLoan     = "update_loan"
	operationListLoans      = "list_loans"
	operationListOverdue    = "list_overdue"
	operationCountLoans     = "count_outstanding"
	operationAddItem        = "add_item"
	operationGetItem        = "get_item"
	operationListItems      = "list_items"
	operationSearchItems    = "search_items"
	operationSetTotalCopies = "set_total_copies"
	operationRemoveItem     = "remove_item"
	statusSuccess           = "success"
	statusError             = "error"
	statusCommitted         = "committed"
	statusRolledBack        = "rolled_back"
	statusReserved          = "reserved"
	statusNoCopies          = "no_copies"
	statusNotFound          = "not_found"
	statusReleased          = "released"
	statusClamped           = "clamped"
	errorTypeBegin          = "begin_failed"
	errorTypePanic          = "panic"
	errorTypeConflict       = "concurrency_conflict"
	errorTypeNoCopies       = "no_copies"
	errorTypeNotFound       = "not_found"
	errorTypeUnknown        = "unknown"
	errorTypeSQLStatePrefix = "sqlstate_"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

func (s *Store) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Store) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	labels[labelEngine] = engineName

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation, labelStatus: status, labelEngine: engineName}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

func (s *Store) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	s.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
		labelOperation: operation,
		labelStatus:    statusError,
		labelErrorType: errorType,
	})
}

func (s *Store) recordConcurrencyConflict(ctx context.Context, operation string) {
	s.incrementCounter(ctx, metricConcurrencyConflicts, map[string]string{labelOperation: operation})
}

func (s *Store) recordReservation(ctx context.Context, status string) {
	s.incrementCounter(ctx, metricReservations, map[string]string{labelStatus: status})
}

func (s *Store) recordRelease(ctx context.Context, itemID string, status string) {
	if status == statusClamped {
		s.logWarn(ctx, logMsgClampedRelease, logAttrItemID, itemID)
	}

	s.incrementCounter(ctx, metricReleases, map[string]string{labelStatus: status})
}

// tracingObserver encapsulates the lifecycle of one span. A nil span is a no-op.
type tracingObserver struct {
	s    *Store
	span lending.SpanContext
}

func (s *Store) startTracing(ctx context.Context, name string, attrs map[string]string) (*tracingObserver, context.Context) {
	if s.tracingCollector == nil {
		return &tracingObserver{s: s}, ctx
	}

	newCtx, span := s.tracingCollector.StartSpan(ctx, name, attrs)

	return &tracingObserver{s: s, span: span}, newCtx
}

func (o *tracingObserver) finishSuccess() {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusSuccess)
	o.s.tracingCollector.FinishSpan(o.span, statusSuccess, nil)
}

func (o *tracingObserver) finishError(errorType string) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusError)
	o.span.AddAttribute(spanAttrErrorType, errorType)
	o.s.tracingCollector.FinishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// finish picks the outcome from err.
func (o *tracingObserver) finish(err error) {
	if err != nil {
		o.finishError(errorTypeOf(err))
		return
	}

	o.finishSuccess()
}
