package checkoutitem

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/app/shared/core"
	"github.com/MrMariodude/LibraCore/lending"
)

// Decide validates a checkout and builds the loan to insert.
//
// Business Rules:
//
//	GIVEN: a borrower and a due date
//	WHEN: CheckoutItem command is received at checkoutAt
//	THEN: an active loan with version 1 is created
//	ERROR: ErrInvalidBorrower if the borrower id is empty
//	ERROR: ErrInvalidDueDate if the due date is not strictly after checkoutAt
//
// Availability of a copy is not decided here, the InventoryLedger reserves it atomically.
func Decide(command Command, loanID uuid.UUID, checkoutAt time.Time) core.DecisionResult {
	if command.BorrowerID == "" {
		return core.ErrorDecision(lending.ErrInvalidBorrower)
	}

	if !command.DueAt.After(checkoutAt) {
		return core.ErrorDecision(lending.ErrInvalidDueDate)
	}

	return core.SuccessDecision(
		lending.Loan{
			ID:         loanID,
			ItemID:     command.ItemID,
			BorrowerID: command.BorrowerID,
			CheckoutAt: checkoutAt,
			DueAt:      command.DueAt,
			State:      lending.LoanStateActive,
			Version:    lending.InitialLoanVersion,
		},
		false,
	)
}
