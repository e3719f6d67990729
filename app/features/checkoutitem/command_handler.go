package checkoutitem

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/app/shared/shell"
	"github.com/MrMariodude/LibraCore/lending"
)

// CommandHandler runs a checkout: decide, then reserve a copy and insert the loan in one transaction.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store        lending.Store
	clock        lending.Clock
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store lending.Store, clock lending.Clock, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
		clock: clock,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the checkout with retry on concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, shell.HandlerResult, error) {
	loanID, err := uuid.NewV7()
	if err != nil {
		return Result{}, shell.HandlerResult{}, err
	}

	decision := Decide(command, loanID, h.clock.Now())
	if err := decision.HasError(); err != nil {
		return Result{}, shell.NewRejectedResult(shell.RetryMetrics{Attempts: 0, LastErrorType: "none"}), err
	}

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, tx lending.Tx) error {
			if err := tx.Ledger().TryReserve(txCtx, command.ItemID); err != nil {
				return err
			}

			return tx.Loans().Insert(txCtx, decision.Loan)
		})
	}, h.retryOptions...)

	if err != nil {
		if lending.IsRejection(err) {
			return Result{}, shell.NewRejectedResult(retryMetrics), err
		}

		return Result{}, shell.NewErrorResult(retryMetrics), err
	}

	return Result{LoanID: loanID}, shell.NewSuccessResult(retryMetrics), nil
}
