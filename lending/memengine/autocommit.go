package memengine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

type autoCommitLoans struct {
	s *Store
}

func (a autoCommitLoans) Insert(ctx context.Context, loan lending.Loan) error {
	return a.s.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.Loans().Insert(ctx, loan)
	})
}

func (a autoCommitLoans) Get(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	return newTx(a.s).Loans().Get(ctx, loanID)
}

func (a autoCommitLoans) Update(ctx context.Context, loan lending.Loan, expectedVersion uint) error {
	return a.s.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.Loans().Update(ctx, loan, expectedVersion)
	})
}

func (a autoCommitLoans) ListForBorrower(ctx context.Context, borrowerID string) ([]lending.Loan, error) {
	return newTx(a.s).Loans().ListForBorrower(ctx, borrowerID)
}

func (a autoCommitLoans) ListOverdue(ctx context.Context, asOf time.Time) ([]lending.Loan, error) {
	return newTx(a.s).Loans().ListOverdue(ctx, asOf)
}

func (a autoCommitLoans) CountOutstanding(ctx context.Context, itemID uuid.UUID) (int, error) {
	return newTx(a.s).Loans().CountOutstanding(ctx, itemID)
}

type autoCommitCatalog struct {
	s *Store
}

func (a autoCommitCatalog) AddItem(ctx context.Context, item lending.Item) error {
	return a.s.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.Catalog().AddItem(ctx, item)
	})
}

func (a autoCommitCatalog) GetItem(ctx context.Context, itemID uuid.UUID) (lending.Item, error) {
	return newTx(a.s).Catalog().GetItem(ctx, itemID)
}

func (a autoCommitCatalog) ListItems(ctx context.Context) ([]lending.Item, error) {
	return newTx(a.s).Catalog().ListItems(ctx)
}

func (a autoCommitCatalog) SearchItems(
	ctx context.Context,
	field lending.SearchField,
	term string,
) ([]lending.Item, error) {

	return newTx(a.s).Catalog().SearchItems(ctx, field, term)
}

func (a autoCommitCatalog) SetTotalCopies(ctx context.Context, itemID uuid.UUID, totalCopies int) (lending.Item, error) {
	var item lending.Item

	err := a.s.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		var err error
		item, err = tx.Catalog().SetTotalCopies(ctx, itemID, totalCopies)

		return err
	})

	return item, err
}

func (a autoCommitCatalog) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return a.s.WithinTx(ctx, func(ctx context.Context, tx lending.Tx) error {
		return tx.Catalog().RemoveItem(ctx, itemID)
	})
}
