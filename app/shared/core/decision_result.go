package core

import (
	"github.com/MrMariodude/LibraCore/lending"
)

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// SuccessDecision(loan, release) or ErrorDecision(err).
type DecisionResult struct {
	Outcome     string       // "success" or "error"
	Loan        lending.Loan // the loan to persist, zero for error decisions
	ReleaseCopy bool         // whether the copy goes back to the shelf in the same transaction
	Err         error
}

const (
	successOutcome = "success"
	errorOutcome   = "error"
)

// SuccessDecision creates a DecisionResult with the loan to persist.
func SuccessDecision(loan lending.Loan, releaseCopy bool) DecisionResult {
	return DecisionResult{
		Outcome:     successOutcome,
		Loan:        loan,
		ReleaseCopy: releaseCopy,
	}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// HasLoanToPersist returns true if the decision carries a loan to write.
func (r DecisionResult) HasLoanToPersist() bool {
	return r.Outcome == successOutcome
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
