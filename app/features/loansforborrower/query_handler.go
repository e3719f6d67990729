package loansforborrower

import (
	"context"

	"github.com/MrMariodude/LibraCore/lending"
)

// QueryHandler lists the loans of a borrower as LoanViews, ordered by checkout time.
type QueryHandler struct {
	loans  lending.LoanRepository
	clock  lending.Clock
	policy lending.PenaltyPolicy
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithPenaltyPolicy replaces lending.DefaultPenaltyPolicy.
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

// Handle returns the views. An unknown or empty borrower id has no loans.
func (h QueryHandler) Handle(ctx context.Context, query Query) ([]lending.LoanView, error) {
	if query.BorrowerID == "" {
		return []lending.LoanView{}, nil
	}

	loans, err := h.loans.ListForBorrower(ctx, query.BorrowerID)
	if err != nil {
		return nil, err
	}

	return lending.ViewsOf(loans, h.clock.Now(), h.policy), nil
}
