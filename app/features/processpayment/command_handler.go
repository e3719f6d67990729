package processpayment

import (
	"context"

	"github.com/MrMariodude/LibraCore/app/shared/shell"
	"github.com/MrMariodude/LibraCore/lending"
)

// CommandHandler settles a pending payment: read, decide, update and release in one transaction.
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

// Handle executes the payment with retry on concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, shell.HandlerResult, error) {
	var result Result

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, tx lending.Tx) error {
			loan, err := tx.Loans().Get(txCtx, command.LoanID)
			if err != nil {
				return err
			}

			decision := Decide(loan, h.clock.Now())
			if err := decision.HasError(); err != nil {
				return err
			}

			if err := tx.Loans().Update(txCtx, decision.Loan, loan.Version); err != nil {
				return err
			}

			if err := tx.Ledger().Release(txCtx, decision.Loan.ItemID); err != nil {
				return err
			}

			result = Result{
				LoanID:     decision.Loan.ID,
				State:      decision.Loan.State,
				AmountPaid: decision.Loan.SnapshotOrZero(),
			}

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		if lending.IsRejection(err) {
			return Result{}, shell.NewRejectedResult(retryMetrics), err
		}

		return Result{}, shell.NewErrorResult(retryMetrics), err
	}

	return result, shell.NewSuccessResult(retryMetrics), nil
}
