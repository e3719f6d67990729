package memengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

var (
	errDuplicateLoanID = errors.New("a loan with this id already exists")
	errDuplicateItemID = errors.New("an item with this id already exists")
)

// Store is an in-memory lending.Store.
type Store struct {
	mu     sync.RWMutex // guards the maps, never held while waiting for an item lock
	items  map[uuid.UUID]*itemRecord
	titles map[string]uuid.UUID
	loans  map[uuid.UUID]lending.Loan

	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
}

// itemRecord holds one item; mu serializes every change of its counters.
type itemRecord struct {
	mu      sync.Mutex
	item    lending.Item
	removed bool
}

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
//
// Debug level: transaction outcomes
// Warn level: clamped releases
func WithLogger(logger lending.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store. It takes precedence over WithLogger.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives reservation and release outcomes as well as transaction durations.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// NewStore creates an empty in-memory Store with optional configuration.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{
		items:  make(map[uuid.UUID]*itemRecord),
		titles: make(map[string]uuid.UUID),
		loans:  make(map[uuid.UUID]lending.Loan),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// WithinTx runs fn as one atomic unit of work: all of its changes commit together or none do.
// Panics inside fn roll the transaction back and are rethrown.
func (s *Store) WithinTx(ctx context.Context, fn lending.TxFunc) (err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	start := time.Now()
	tx := newTx(s)

	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}

		if err != nil {
			tx.rollback()
			s.recordTxMetrics(ctx, statusRolledBack, time.Since(start))
			return
		}

		err = tx.commit()
		if err != nil {
			s.recordTxMetrics(ctx, statusConflict, time.Since(start))
			return
		}

		s.recordTxMetrics(ctx, statusCommitted, time.Since(start))
	}()

	err = fn(ctx, tx)

	return err
}

// Loans returns a LoanRepository where every call is its own transaction.
func (s *Store) Loans() lending.LoanRepository {
	return autoCommitLoans{s: s}
}

// Catalog returns a Catalog where every call is its own transaction.
func (s *Store) Catalog() lending.Catalog {
	return autoCommitCatalog{s: s}
}

// lookup returns the record of an item that has not been removed.
func (s *Store) lookup(itemID uuid.UUID) (*itemRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[itemID]

	return rec, ok
}

// itemIDs returns a snapshot of all item ids.
func (s *Store) itemIDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}

	return ids
}

func cloneLoan(loan lending.Loan) lending.Loan {
	if loan.PenaltySnapshot != nil {
		snapshot := *loan.PenaltySnapshot
		loan.PenaltySnapshot = &snapshot
	}

	if loan.ClosedAt != nil {
		closedAt := *loan.ClosedAt
		loan.ClosedAt = &closedAt
	}

	return loan
}

var _ lending.Store = (*Store)(nil)
