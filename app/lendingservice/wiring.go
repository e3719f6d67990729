package lendingservice

import (
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

func (s *Service) wire() error {
	var err error

	s.checkout, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[checkoutitem.Command, checkoutitem.Result](
			checkoutitem.NewCommandHandler(s.store, s.clock,
				checkoutitem.WithRetryOptions(s.retryOptions...)),
		),
		commandOptions[checkoutitem.Command, checkoutitem.Result](s)...,
	)
	if err != nil {
		return err
	}

	s.returnLoan, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[returnloan.Command, returnloan.Result](
			returnloan.NewCommandHandler(s.store, s.clock,
				returnloan.WithPenaltyPolicy(s.policy),
				returnloan.WithRetryOptions(s.retryOptions...)),
		),
		commandOptions[returnloan.Command, returnloan.Result](s)...,
	)
	if err != nil {
		return err
	}

	s.processPayment, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[processpayment.Command, processpayment.Result](
			processpayment.NewCommandHandler(s.store, s.clock,
				processpayment.WithRetryOptions(s.retryOptions...)),
		),
		commandOptions[processpayment.Command, processpayment.Result](s)...,
	)
	if err != nil {
		return err
	}

	s.getLoan, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[getloan.Query, lending.LoanView](
			getloan.NewQueryHandler(s.store.Loans(), s.clock, getloan.WithPenaltyPolicy(s.policy)),
		),
		queryOptions[getloan.Query, lending.LoanView](s)...,
	)
	if err != nil {
		return err
	}

	s.borrowerLoans, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[loansforborrower.Query, []lending.LoanView](
			loansforborrower.NewQueryHandler(s.store.Loans(), s.clock, loansforborrower.WithPenaltyPolicy(s.policy)),
		),
		queryOptions[loansforborrower.Query, []lending.LoanView](s)...,
	)
	if err != nil {
		return err
	}

	return s.wireCatalog()
}

func (s *Service) wireCatalog() error {
	var err error

	s.addItem, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[catalog.AddItemCommand, lending.Item](
			catalog.NewAddItemHandler(s.store.Catalog(),
				catalog.WithRetryOptions(s.retryOptions...)),
		),
		commandOptions[catalog.AddItemCommand, lending.Item](s)...,
	)
	if err != nil {
		return err
	}

	s.setTotalCopies, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[catalog.SetTotalCopiesCommand, lending.Item](
			catalog.NewSetTotalCopiesHandler(s.store.Catalog(),
				catalog.WithRetryOptions(s.retryOptions...)),
		),
		commandOptions[catalog.SetTotalCopiesCommand, lending.Item](s)...,
	)
	if err != nil {
		return err
	}

	s.removeItem, err = observable.NewCommandWrapper(
		shell.CoreCommandHandler[catalog.RemoveItemCommand, uuid.UUID](
			catalog.NewRemoveItemHandler(s.store.Catalog(),
				catalog.WithRetryOptions(s.retryOptions...)),
		),
		commandOptions[catalog.RemoveItemCommand, uuid.UUID](s)...,
	)
	if err != nil {
		return err
	}

	s.getItem, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[catalog.GetItemQuery, lending.Item](catalog.NewGetItemHandler(s.store.Catalog())),
		queryOptions[catalog.GetItemQuery, lending.Item](s)...,
	)
	if err != nil {
		return err
	}

	s.listItems, err = observable.NewQueryWrapper(
		shell.CoreQueryHandler[catalog.ListItemsQuery, []lending.Item](catalog.NewListItemsHandler(s.store.Catalog())),
		queryOptions[catalog.ListItemsQuery, []lending.Item](s)...,
	)

	return err
}

func commandOptions[C shell.Command, R any](s *Service) []observable.CommandOption[C, R] {
	var opts []observable.CommandOption[C, R]

	if s.metricsCollector != nil {
		opts = append(opts, observable.WithCommandMetrics[C, R](s.metricsCollector))
	}

	if s.tracingCollector != nil {
		opts = append(opts, observable.WithCommandTracing[C, R](s.tracingCollector))
	}

	if s.contextualLogger != nil {
		opts = append(opts, observable.WithCommandContextualLogging[C, R](s.contextualLogger))
	}

	if s.logger != nil {
		opts = append(opts, observable.WithCommandLogging[C, R](s.logger))
	}

	return opts
}

func queryOptions[Q shell.Query, R any](s *Service) []observable.QueryOption[Q, R] {
	var opts []observable.QueryOption[Q, R]

	if s.metricsCollector != nil {
		opts = append(opts, observable.WithQueryMetrics[Q, R](s.metricsCollector))
	}

	if s.tracingCollector != nil {
		opts = append(opts, observable.WithQueryTracing[Q, R](s.tracingCollector))
	}

	if s.contextualLogger != nil {
		opts = append(opts, observable.WithQueryContextualLogging[Q, R](s.contextualLogger))
	}

	if s.logger != nil {
		opts = append(opts, observable.WithQueryLogging[Q, R](s.logger))
	}

	return opts
}
