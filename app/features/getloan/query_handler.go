package getloan

import (
	"context"

	"github.com/MrMariodude/LibraCore/lending"
)

// QueryHandler reads a loan and projects it into a LoanView.
type QueryHandler struct {
	loans  lending.LoanRepository
	clock  lending.Clock
	policy lending.PenaltyPolicy
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithPenaltyPolicy replaces lending.DefaultPenaltyPolicy for the accrued penalty of active loans.
func WithPenaltyPolicy(policy lending.PenaltyPolicy) Option {
	return func(h *QueryHandler) {
		h.policy = policy
	}
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(loans lending.LoanRepository, clock lending.Clock, opts ...Option) QueryHandler {
	handler := QueryHandler{
		loans:  loans,
		clock:  clock,
		policy: lending.DefaultPenaltyPolicy(),
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle returns the view of the loan or lending.ErrLoanNotFound.
func (h QueryHandler) Handle(ctx context.Context, query Query) (lending.LoanView, error) {
	loan, err := h.loans.Get(ctx, query.LoanID)
	if err != nil {
		return lending.LoanView{}, err
	}

	return lending.ViewOf(loan, h.clock.Now(), h.policy), nil
}
