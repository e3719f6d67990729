package memengine

import (
	"errors"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

type pendingUpdate struct {
	loan          lending.Loan
	storedVersion uint // the version the committed loan must still have at commit time
}

// tx is one unit of work. It is used by a single goroutine.
type tx struct {
	s    *Store
	held map[uuid.UUID]*itemRecord
	undo []func()

	loanInserts  map[uuid.UUID]lending.Loan
	loanUpdates  map[uuid.UUID]pendingUpdate
	itemRemovals map[uuid.UUID]*itemRecord
}

func newTx(s *Store) *tx {
	return &tx{
		s:            s,
		held:         make(map[uuid.UUID]*itemRecord),
		loanInserts:  make(map[uuid.UUID]lending.Loan),
		loanUpdates:  make(map[uuid.UUID]pendingUpdate),
		itemRemovals: make(map[uuid.UUID]*itemRecord),
	}
}

func (t *tx) Ledger() lending.InventoryLedger {
	return ledger{tx: t}
}

func (t *tx) Loans() lending.LoanRepository {
	return loans{tx: t}
}

func (t *tx) Catalog() lending.Catalog {
	return catalog{tx: t}
}

// lockItem acquires the item lock for the rest of the transaction.
func (t *tx) lockItem(itemID uuid.UUID) (*itemRecord, error) {
	if rec, ok := t.held[itemID]; ok {
		if rec.removed || t.isRemoved(itemID) {
			return nil, lending.ErrItemNotFound
		}

		return rec, nil
	}

	rec, ok := t.s.lookup(itemID)
	if !ok {
		return nil, lending.ErrItemNotFound
	}

	rec.mu.Lock()
	t.held[itemID] = rec

	if rec.removed {
		return nil, lending.ErrItemNotFound
	}

	return rec, nil
}

// readItem returns a consistent copy of an item without keeping its lock.
func (t *tx) readItem(itemID uuid.UUID) (lending.Item, error) {
	if rec, ok := t.held[itemID]; ok {
		if rec.removed || t.isRemoved(itemID) {
			return lending.Item{}, lending.ErrItemNotFound
		}

		return rec.item, nil
	}

	rec, ok := t.s.lookup(itemID)
	if !ok {
		return lending.Item{}, lending.ErrItemNotFound
	}

	return readRecord(rec)
}

func readRecord(rec *itemRecord) (lending.Item, error) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.removed {
		return lending.Item{}, lending.ErrItemNotFound
	}

	return rec.item, nil
}

func (t *tx) isRemoved(itemID uuid.UUID) bool {
	_, ok := t.itemRemovals[itemID]
	return ok
}

// commit validates the buffered loan writes and item removals against the committed state and applies them.
// On a validation failure it rolls back and returns the error.
func (t *tx) commit() error {
	defer t.unlockAll()

	t.s.mu.Lock()

	if err := t.validate(); err != nil {
		t.s.mu.Unlock()
		t.runUndo()

		return err
	}

	for id, loan := range t.loanInserts {
		t.s.loans[id] = cloneLoan(loan)
	}

	for id, update := range t.loanUpdates {
		t.s.loans[id] = cloneLoan(update.loan)
	}

	for id, rec := range t.itemRemovals {
		delete(t.s.items, id)
		delete(t.s.titles, rec.item.Title)
		rec.removed = true
	}

	t.s.mu.Unlock()

	return nil
}

// validate must be called with s.mu held.
func (t *tx) validate() error {
	for id, update := range t.loanUpdates {
		current, ok := t.s.loans[id]
		if !ok {
			return lending.ErrLoanNotFound
		}

		if current.Version != update.storedVersion {
			return lending.ErrConcurrencyConflict
		}
	}

	for id := range t.loanInserts {
		if _, exists := t.s.loans[id]; exists {
			return errors.Join(lending.ErrExecutingFailed, errDuplicateLoanID)
		}
	}

	for itemID := range t.itemRemovals {
		for _, loan := range t.s.loans {
			if loan.ItemID == itemID {
				return lending.ErrItemHasLoans
			}
		}
	}

	return nil
}

func (t *tx) rollback() {
	t.runUndo()
	t.unlockAll()
}

func (t *tx) runUndo() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}

	t.undo = nil
}

func (t *tx) unlockAll() {
	for id, rec := range t.held {
		rec.mu.Unlock()
		delete(t.held, id)
	}
}
