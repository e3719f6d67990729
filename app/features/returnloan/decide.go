package returnloan

import (
	"time"

	"github.com/MrMariodude/LibraCore/app/shared/core"
	"github.com/MrMariodude/LibraCore/lending"
)

// Decide determines the outcome of returning a loan at returnedAt.
//
// Business Rules:
//
//	GIVEN: an active loan
//	WHEN: ReturnLoan command is received
//	THEN: the penalty at returnedAt is frozen into the loan
//	  penalty == 0: the loan is returned and its copy is released
//	  penalty  > 0: the loan is pending payment and keeps its copy
//	ERROR: ErrAlreadyPendingPayment if the loan waits for a payment
//	ERROR: ErrAlreadyReturned if the loan is closed
//
// The returned loan keeps the version it was read with.
func Decide(loan lending.Loan, returnedAt time.Time, policy lending.PenaltyPolicy) core.DecisionResult {
	switch loan.State {
	case lending.LoanStatePendingPayment:
		return core.ErrorDecision(lending.ErrAlreadyPendingPayment)
	case lending.LoanStateReturned:
		return core.ErrorDecision(lending.ErrAlreadyReturned)
	}

	penalty := policy.Compute(loan.DueAt, returnedAt)
	loan.PenaltySnapshot = &penalty

	if penalty.IsZero() {
		loan.State = lending.LoanStateReturned
		loan.ClosedAt = &returnedAt

		return core.SuccessDecision(loan, true)
	}

	loan.State = lending.LoanStatePendingPayment

	return core.SuccessDecision(loan, false)
}
