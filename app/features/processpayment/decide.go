package processpayment

import (
	"time"

	"github.com/MrMariodude/LibraCore/app/shared/core"
	"github.com/MrMariodude/LibraCore/lending"
)

// Decide determines the outcome of a payment received at paidAt.
//
// Business Rules:
//
//	GIVEN: a loan pending payment
//	WHEN: ProcessPayment command is received
//	THEN: the loan is returned and its copy is released
//	ERROR: ErrNotPendingPayment for active and returned loans
func Decide(loan lending.Loan, paidAt time.Time) core.DecisionResult {
	if loan.State != lending.LoanStatePendingPayment {
		return core.ErrorDecision(lending.ErrNotPendingPayment)
	}

	loan.State = lending.LoanStateReturned
	loan.ClosedAt = &paidAt

	return core.SuccessDecision(loan, true)
}
