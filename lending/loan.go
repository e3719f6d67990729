package lending

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownLoanState is returned when a persisted state string is not a LoanState.
var ErrUnknownLoanState = errors.New("unknown loan state")

// LoanState is the lifecycle state of a Loan.
//
//	active -> returned
//	active -> pending_payment -> returned
type LoanState string

const (
	LoanStateActive         LoanState = "active"
	LoanStatePendingPayment LoanState = "pending_payment"
	LoanStateReturned       LoanState = "returned"
)

// ParseLoanState converts a persisted string into a LoanState.
func ParseLoanState(s string) (LoanState, error) {
	state := LoanState(s)

	if !state.IsValid() {
		return "", errors.Join(ErrUnknownLoanState, errors.New(s))
	}

	return state, nil
}

// IsValid reports whether s is one of the known states.
func (s LoanState) IsValid() bool {
	switch s {
	case LoanStateActive, LoanStatePendingPayment, LoanStateReturned:
		return true
	default:
		return false
	}
}

// IsOutstanding reports whether a loan in this state still holds a copy.
func (s LoanState) IsOutstanding() bool {
	return s == LoanStateActive || s == LoanStatePendingPayment
}

// Loan is one borrowing episode of an Item by a borrower.
type Loan struct {
	ID              uuid.UUID
	ItemID          uuid.UUID
	BorrowerID      string
	CheckoutAt      time.Time
	DueAt           time.Time
	State           LoanState
	PenaltySnapshot *Amount    // frozen at the first return
	ClosedAt        *time.Time // set once returned
	Version         uint
}

// InitialLoanVersion is the version of a freshly inserted Loan.
const InitialLoanVersion uint = 1

// IsOverdueAt reports whether the loan is past due at the given instant.
func (l Loan) IsOverdueAt(at time.Time) bool {
	return !at.Before(l.DueAt)
}

// SnapshotOrZero returns the frozen penalty, or zero if none has been recorded.
func (l Loan) SnapshotOrZero() Amount {
	if l.PenaltySnapshot == nil {
		return 0
	}

	return *l.PenaltySnapshot
}
