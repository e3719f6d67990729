package main

import (
	"sync"

	"github.com/google/uuid"
)

type openLoan struct {
	itemID     uuid.UUID
	borrowerID string
}

// SimulationState tracks what the simulation believes the store holds.
// It is safe for concurrent use by the worker pool.
type SimulationState struct {
	mu sync.RWMutex

	items       []uuid.UUID
	outstanding map[uuid.UUID]int // itemID -> loans holding a copy

	active   map[uuid.UUID]openLoan // loanID -> Active loan
	pending  map[uuid.UUID]openLoan // loanID -> PendingPayment loan
	reserved map[uuid.UUID]bool     // loanIDs a worker is currently acting on

	completedLoans int
	lateReturns    int
}

// NewSimulationState creates an empty state.
func NewSimulationState() *SimulationState {
	return &SimulationState{
		outstanding: make(map[uuid.UUID]int),
		active:      make(map[uuid.UUID]openLoan),
		pending:     make(map[uuid.UUID]openLoan),
		reserved:    make(map[uuid.UUID]bool),
	}
}

func (s *SimulationState) AddItem(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, itemID)
	s.outstanding[itemID] = 0
}

// CheckedOut records a new Active loan.
func (s *SimulationState) CheckedOut(loanID, itemID uuid.UUID, borrowerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active[loanID] = openLoan{itemID: itemID, borrowerID: borrowerID}
	s.outstanding[itemID]++
}

// Returned records a successful return. A late return keeps the copy until it is paid.
func (s *SimulationState) Returned(loanID uuid.UUID, pendingPayment bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.active[loanID]
	if !ok {
		return
	}

	delete(s.active, loanID)

	if pendingPayment {
		s.pending[loanID] = loan
		s.lateReturns++

		return
	}

	s.outstanding[loan.itemID]--
	s.completedLoans++
}

// Paid records a successful penalty payment.
func (s *SimulationState) Paid(loanID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.pending[loanID]
	if !ok {
		return
	}

	delete(s.pending, loanID)
	s.outstanding[loan.itemID]--
	s.completedLoans++
}

// Reserve claims an open loan for one worker. It returns false if another worker holds it or
// the loan is no longer Active (or PendingPayment when pendingPayment is set).
func (s *SimulationState) Reserve(loanID uuid.UUID, pendingPayment bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := s.active
	if pendingPayment {
		open = s.pending
	}

	if _, ok := open[loanID]; !ok || s.reserved[loanID] {
		return false
	}

	s.reserved[loanID] = true

	return true
}

func (s *SimulationState) Release(loanID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reserved, loanID)
}

// Outstanding returns the number of copies of itemID the simulation holds open.
func (s *SimulationState) Outstanding(itemID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.outstanding[itemID]
}

// Snapshot returns copies of the item, active loan and pending loan IDs.
func (s *SimulationState) Snapshot() (items, active, pending []uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items = append(items, s.items...)

	for loanID := range s.active {
		active = append(active, loanID)
	}

	for loanID := range s.pending {
		pending = append(pending, loanID)
	}

	return items, active, pending
}

// BorrowerOf returns the borrower of an open loan.
func (s *SimulationState) BorrowerOf(loanID uuid.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if loan, ok := s.active[loanID]; ok {
		return loan.borrowerID, true
	}

	if loan, ok := s.pending[loanID]; ok {
		return loan.borrowerID, true
	}

	return "", false
}

// Stats returns the current counts for reporting.
func (s *SimulationState) Stats() (items, active, pending, completed, late int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items), len(s.active), len(s.pending), s.completedLoans, s.lateReturns
}
