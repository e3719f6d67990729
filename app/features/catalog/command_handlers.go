package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/app/shared/shell"
	"github.com/MrMariodude/LibraCore/lending"
)

// Option configures the catalog command handlers.
type Option func(*handlerConfig)

type handlerConfig struct {
	retryOptions []shell.RetryOption
}

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(c *handlerConfig) {
		c.retryOptions = opts
	}
}

func buildConfig(opts []Option) handlerConfig {
	config := handlerConfig{}

	for _, opt := range opts {
		opt(&config)
	}

	return config
}

// AddItemHandler adds new items with all copies available.
type AddItemHandler struct {
	catalog lending.Catalog
	config  handlerConfig
}

// NewAddItemHandler creates a new AddItemHandler.
func NewAddItemHandler(catalog lending.Catalog, opts ...Option) AddItemHandler {
	return AddItemHandler{catalog: catalog, config: buildConfig(opts)}
}

// Handle validates and stores the item.
// It fails with ErrInvalidTitle, ErrInvalidAuthor, ErrInvalidCopyCount or ErrDuplicateTitle.
func (h AddItemHandler) Handle(ctx context.Context, command AddItemCommand) (lending.Item, shell.HandlerResult, error) {
	itemID, err := uuid.NewV7()
	if err != nil {
		return lending.Item{}, shell.HandlerResult{}, err
	}

	item, err := lending.BuildItem(
		itemID,
		command.Title,
		command.Author,
		command.Genre,
		command.PublishedAt,
		command.TotalCopies,
	)
	if err != nil {
		return lending.Item{}, shell.NewRejectedResult(shell.RetryMetrics{}), err
	}

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.catalog.AddItem(retryCtx, item)
	}, h.config.retryOptions...)

	if err != nil {
		return lending.Item{}, resultFor(err, retryMetrics), err
	}

	return item, shell.NewSuccessResult(retryMetrics), nil
}

// SetTotalCopiesHandler recounts the copies of an item.
type SetTotalCopiesHandler struct {
	catalog lending.Catalog
	config  handlerConfig
}

// NewSetTotalCopiesHandler creates a new SetTotalCopiesHandler.
func NewSetTotalCopiesHandler(catalog lending.Catalog, opts ...Option) SetTotalCopiesHandler {
	return SetTotalCopiesHandler{catalog: catalog, config: buildConfig(opts)}
}

// Handle changes the total and returns the updated item.
// It fails with ErrInvalidCopyCount, ErrItemNotFound or ErrCopiesOnLoan.
func (h SetTotalCopiesHandler) Handle(
	ctx context.Context,
	command SetTotalCopiesCommand,
) (lending.Item, shell.HandlerResult, error) {

	if command.TotalCopies < 0 {
		return lending.Item{}, shell.NewRejectedResult(shell.RetryMetrics{}), lending.ErrInvalidCopyCount
	}

	var item lending.Item

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		updated, err := h.catalog.SetTotalCopies(retryCtx, command.ItemID, command.TotalCopies)
		if err != nil {
			return err
		}

		item = updated

		return nil
	}, h.config.retryOptions...)

	if err != nil {
		return lending.Item{}, resultFor(err, retryMetrics), err
	}

	return item, shell.NewSuccessResult(retryMetrics), nil
}

// RemoveItemHandler deletes items that no loan references.
type RemoveItemHandler struct {
	catalog lending.Catalog
	config  handlerConfig
}

// NewRemoveItemHandler creates a new RemoveItemHandler.
func NewRemoveItemHandler(catalog lending.Catalog, opts ...Option) RemoveItemHandler {
	return RemoveItemHandler{catalog: catalog, config: buildConfig(opts)}
}

// Handle removes the item. It fails with ErrItemNotFound or ErrItemHasLoans.
func (h RemoveItemHandler) Handle(ctx context.Context, command RemoveItemCommand) (uuid.UUID, shell.HandlerResult, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.catalog.RemoveItem(retryCtx, command.ItemID)
	}, h.config.retryOptions...)

	if err != nil {
		return uuid.Nil, resultFor(err, retryMetrics), err
	}

	return command.ItemID, shell.NewSuccessResult(retryMetrics), nil
}

func resultFor(err error, retryMetrics shell.RetryMetrics) shell.HandlerResult {
	if lending.IsRejection(err) {
		return shell.NewRejectedResult(retryMetrics)
	}

	return shell.NewErrorResult(retryMetrics)
}
