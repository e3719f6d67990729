package memengine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

type loans struct {
	tx *tx
}

func (r loans) Insert(_ context.Context, loan lending.Loan) error {
	if !loan.State.IsValid() {
		return lending.ErrUnknownLoanState
	}

	if _, pending := r.tx.loanInserts[loan.ID]; pending {
		return errors.Join(lending.ErrExecutingFailed, errDuplicateLoanID)
	}

	if _, err := r.tx.readItem(loan.ItemID); err != nil {
		return err
	}

	r.tx.s.mu.RLock()
	_, exists := r.tx.s.loans[loan.ID]
	r.tx.s.mu.RUnlock()

	if exists {
		return errors.Join(lending.ErrExecutingFailed, errDuplicateLoanID)
	}

	if loan.Version == 0 {
		loan.Version = lending.InitialLoanVersion
	}

	r.tx.loanInserts[loan.ID] = cloneLoan(loan)

	return nil
}

func (r loans) Get(_ context.Context, loanID uuid.UUID) (lending.Loan, error) {
	if loan, ok := r.tx.loanInserts[loanID]; ok {
		return cloneLoan(loan), nil
	}

	if update, ok := r.tx.loanUpdates[loanID]; ok {
		return cloneLoan(update.loan), nil
	}

	r.tx.s.mu.RLock()
	defer r.tx.s.mu.RUnlock()

	loan, ok := r.tx.s.loans[loanID]
	if !ok {
		return lending.Loan{}, lending.ErrLoanNotFound
	}

	return cloneLoan(loan), nil
}

func (r loans) Update(ctx context.Context, loan lending.Loan, expectedVersion uint) error {
	if !loan.State.IsValid() {
		return lending.ErrUnknownLoanState
	}

	current, err := r.Get(ctx, loan.ID)
	if err != nil {
		return err
	}

	if current.Version != expectedVersion {
		return lending.ErrConcurrencyConflict
	}

	loan = cloneLoan(loan)
	loan.Version = expectedVersion + 1

	if _, pending := r.tx.loanInserts[loan.ID]; pending {
		r.tx.loanInserts[loan.ID] = loan
		return nil
	}

	storedVersion := expectedVersion
	if prev, ok := r.tx.loanUpdates[loan.ID]; ok {
		storedVersion = prev.storedVersion
	}

	r.tx.loanUpdates[loan.ID] = pendingUpdate{loan: loan, storedVersion: storedVersion}

	return nil
}

func (r loans) ListForBorrower(_ context.Context, borrowerID string) ([]lending.Loan, error) {
	return r.list(func(loan lending.Loan) bool {
		return loan.BorrowerID == borrowerID
	}), nil
}

func (r loans) ListOverdue(_ context.Context, asOf time.Time) ([]lending.Loan, error) {
	return r.list(func(loan lending.Loan) bool {
		return loan.State == lending.LoanStateActive && loan.IsOverdueAt(asOf)
	}), nil
}

func (r loans) CountOutstanding(_ context.Context, itemID uuid.UUID) (int, error) {
	matching := r.list(func(loan lending.Loan) bool {
		return loan.ItemID == itemID && loan.State.IsOutstanding()
	})

	return len(matching), nil
}

// list returns the committed loans overlaid with the writes of this transaction, ordered by checkout time.
func (r loans) list(keep func(lending.Loan) bool) []lending.Loan {
	visible := make(map[uuid.UUID]lending.Loan)

	r.tx.s.mu.RLock()
	for id, loan := range r.tx.s.loans {
		visible[id] = loan
	}
	r.tx.s.mu.RUnlock()

	for id, update := range r.tx.loanUpdates {
		visible[id] = update.loan
	}

	for id, loan := range r.tx.loanInserts {
		visible[id] = loan
	}

	result := make([]lending.Loan, 0)
	for _, loan := range visible {
		if keep(loan) {
			result = append(result, cloneLoan(loan))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CheckoutAt.Equal(result[j].CheckoutAt) {
			return result[i].ID.String() < result[j].ID.String()
		}

		return result[i].CheckoutAt.Before(result[j].CheckoutAt)
	})

	return result
}
