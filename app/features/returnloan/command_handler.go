package returnloan

import (
	"context"

	"github.com/MrMariodude/LibraCore/app/shared/core"
	"github.com/MrMariodude/LibraCore/app/shared/shell"
	"github.com/MrMariodude/LibraCore/lending"
)

// CommandHandler orchestrates the complete return workflow.
// It reads the loan, decides, and writes the loan plus the optional release in one transaction.
// A concurrent writer makes the versioned update fail, the whole read-decide-write cycle is then retried.
type CommandHandler struct {
	store        lending.Store
	clock        lending.Clock
	policy       lending.PenaltyPolicy
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

// WithPenaltyPolicy replaces lending.DefaultPenaltyPolicy.
func WithPenaltyPolicy(policy lending.PenaltyPolicy) Option {
	return func(h *CommandHandler) {
		h.policy = policy
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store lending.Store, clock lending.Clock, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store:  store,
		clock:  clock,
		policy: lending.DefaultPenaltyPolicy(),
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the return with retry on concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, shell.HandlerResult, error) {
	var result Result

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(txCtx context.Context, tx lending.Tx) error {
			loan, err := tx.Loans().Get(txCtx, command.LoanID)
			if err != nil {
				return err
			}

			decision := Decide(loan, h.clock.Now(), h.policy)
			if err := decision.HasError(); err != nil {
				return err
			}

			if err := persist(txCtx, tx, decision, loan.Version); err != nil {
				return err
			}

			result = Result{
				LoanID:     decision.Loan.ID,
				State:      decision.Loan.State,
				PenaltyDue: decision.Loan.SnapshotOrZero(),
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

func persist(ctx context.Context, tx lending.Tx, decision core.DecisionResult, expectedVersion uint) error {
	if err := tx.Loans().Update(ctx, decision.Loan, expectedVersion); err != nil {
		return err
	}

	if decision.ReleaseCopy {
		return tx.Ledger().Release(ctx, decision.Loan.ItemID)
	}

	return nil
}
