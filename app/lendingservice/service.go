package lendingservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/app/features/catalog"
	"github.com/MrMariodude/LibraCore/app/features/checkoutitem"
	"github.com/MrMariodude/LibraCore/app/features/getloan"
	"github.com/MrMariodude/LibraCore/app/features/loansforborrower"
	"github.com/MrMariodude/LibraCore/app/features/processpayment"
	"github.com/MrMariodude/LibraCore/app/features/returnloan"
	"github.com/MrMariodude/LibraCore/app/shared/shell"
	"github.com/MrMariodude/LibraCore/app/shared/shell/observable"
	"github.com/MrMariodude/LibraCore/lending"
)

// ErrNilStore is returned when NewService is called without a storage engine.
var ErrNilStore = errors.New("store must not be nil")

// Service offers the lending and catalog operations.
type Service struct {
	store  lending.Store
	clock  lending.Clock
	policy lending.PenaltyPolicy

	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
	tracingCollector lending.TracingCollector
	retryOptions     []shell.RetryOption

	checkout       *observable.CommandWrapper[checkoutitem.Command, checkoutitem.Result]
	returnLoan     *observable.CommandWrapper[returnloan.Command, returnloan.Result]
	processPayment *observable.CommandWrapper[processpayment.Command, processpayment.Result]
	getLoan        *observable.QueryWrapper[getloan.Query, lending.LoanView]
	borrowerLoans  *observable.QueryWrapper[loansforborrower.Query, []lending.LoanView]

	addItem        *observable.CommandWrapper[catalog.AddItemCommand, lending.Item]
	setTotalCopies *observable.CommandWrapper[catalog.SetTotalCopiesCommand, lending.Item]
	removeItem     *observable.CommandWrapper[catalog.RemoveItemCommand, uuid.UUID]
	getItem        *observable.QueryWrapper[catalog.GetItemQuery, lending.Item]
	listItems      *observable.QueryWrapper[catalog.ListItemsQuery, []lending.Item]
}

// NewService creates a Service on top of store.
// Without options it uses the system clock, the default penalty policy and no observability.
func NewService(store lending.Store, options ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	s := &Service{
		store:  store,
		clock:  lending.SystemClock{},
		policy: lending.DefaultPenaltyPolicy(),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	if err := s.wire(); err != nil {
		return nil, err
	}

	return s, nil
}

// Checkout lends one copy of the item to the borrower until dueAt and returns the new loan id.
func (s *Service) Checkout(ctx context.Context, itemID uuid.UUID, borrowerID string, dueAt time.Time) (uuid.UUID, error) {
	result, _, err := s.checkout.Handle(ctx, checkoutitem.BuildCommand(itemID, borrowerID, dueAt))
	if err != nil {
		return uuid.Nil, err
	}

	return result.LoanID, nil
}

// Return hands back the copy of a loan. Late returns end up pending payment.
func (s *Service) Return(ctx context.Context, loanID uuid.UUID) (returnloan.Result, error) {
	result, _, err := s.returnLoan.Handle(ctx, returnloan.BuildCommand(loanID))

	return result, err
}

// ProcessPayment settles the frozen penalty of a loan pending payment and releases its copy.
func (s *Service) ProcessPayment(ctx context.Context, loanID uuid.UUID) (processpayment.Result, error) {
	result, _, err := s.processPayment.Handle(ctx, processpayment.BuildCommand(loanID))

	return result, err
}

// GetLoan returns the current view of a loan.
func (s *Service) GetLoan(ctx context.Context, loanID uuid.UUID) (lending.LoanView, error) {
	return s.getLoan.Handle(ctx, getloan.BuildQuery(loanID))
}

// ListLoansForBorrower returns the views of all loans of a borrower, oldest checkout first.
func (s *Service) ListLoansForBorrower(ctx context.Context, borrowerID string) ([]lending.LoanView, error) {
	return s.borrowerLoans.Handle(ctx, loansforborrower.BuildQuery(borrowerID))
}

// AddItem adds a work with totalCopies copies to the catalog.
func (s *Service) AddItem(
	ctx context.Context,
	title string,
	author string,
	genre string,
	publishedAt time.Time,
	totalCopies int,
) (lending.Item, error) {

	item, _, err := s.addItem.Handle(ctx, catalog.BuildAddItemCommand(title, author, genre, publishedAt, totalCopies))

	return item, err
}

// SetTotalCopies recounts the copies of an item.
func (s *Service) SetTotalCopies(ctx context.Context, itemID uuid.UUID, totalCopies int) (lending.Item, error) {
	item, _, err := s.setTotalCopies.Handle(ctx, catalog.BuildSetTotalCopiesCommand(itemID, totalCopies))

	return item, err
}

// RemoveItem deletes an item no loan ever referenced.
func (s *Service) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	_, _, err := s.removeItem.Handle(ctx, catalog.BuildRemoveItemCommand(itemID))

	return err
}

// GetItem returns one item.
func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (lending.Item, error) {
	return s.getItem.Handle(ctx, catalog.BuildGetItemQuery(itemID))
}

// ListItems returns all items ordered by title, or the matches of term in field if term is not blank.
func (s *Service) ListItems(ctx context.Context, field string, term string) ([]lending.Item, error) {
	return s.listItems.Handle(ctx, catalog.BuildListItemsQuery(field, term))
}

// Clock returns the clock the service evaluates penalties with.
func (s *Service) Clock() lending.Clock {
	return s.clock
}

// PenaltyPolicy returns the policy the service evaluates penalties with.
func (s *Service) PenaltyPolicy() lending.PenaltyPolicy {
	return s.policy
}
