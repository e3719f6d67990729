package lending

import (
	"time"

	"github.com/google/uuid"
)

// LoanView is the read model of a Loan handed to callers.
//
// For an active loan AccruedPenalty is what a return would charge at the time of the read.
// For pending_payment and returned loans it is the frozen snapshot.
type LoanView struct {
	ID              uuid.UUID
	ItemID          uuid.UUID
	BorrowerID      string
	CheckoutAt      time.Time
	DueAt           time.Time
	State           LoanState
	PenaltySnapshot *Amount
	ClosedAt        *time.Time
	Overdue         bool
	AccruedPenalty  Amount
}

// ViewOf builds the LoanView of a loan as seen at the instant now.
func ViewOf(loan Loan, now time.Time, policy PenaltyPolicy) LoanView {
	view := LoanView{
		ID:              loan.ID,
		ItemID:          loan.ItemID,
		BorrowerID:      loan.BorrowerID,
		CheckoutAt:      loan.CheckoutAt,
		DueAt:           loan.DueAt,
		State:           loan.State,
		PenaltySnapshot: loan.PenaltySnapshot,
		ClosedAt:        loan.ClosedAt,
	}

	switch loan.State {
	case LoanStateActive:
		view.AccruedPenalty = policy.Compute(loan.DueAt, now)
		view.Overdue = loan.IsOverdueAt(now)

	default:
		view.AccruedPenalty = loan.SnapshotOrZero()
		view.Overdue = view.AccruedPenalty > 0
	}

	return view
}

// ViewsOf builds the LoanViews of several loans as seen at the instant now.
func ViewsOf(loans []Loan, now time.Time, policy PenaltyPolicy) []LoanView {
	views := make([]LoanView, 0, len(loans))

	for _, loan := range loans {
		views = append(views, ViewOf(loan, now, policy))
	}

	return views
}
