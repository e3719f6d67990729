package catalog

import (
	"context"

	"github.com/MrMariodude/LibraCore/lending"
)

// GetItemHandler reads one item.
type GetItemHandler struct {
	catalog lending.Catalog
}

// NewGetItemHandler creates a new GetItemHandler.
func NewGetItemHandler(catalog lending.Catalog) GetItemHandler {
	return GetItemHandler{catalog: catalog}
}

func (h GetItemHandler) Handle(ctx context.Context, query GetItemQuery) (lending.Item, error) {
	return h.catalog.GetItem(ctx, query.ItemID)
}

// ListItemsHandler lists items ordered by title.
type ListItemsHandler struct {
	catalog lending.Catalog
}

// NewListItemsHandler creates a new ListItemsHandler.
func NewListItemsHandler(catalog lending.Catalog) ListItemsHandler {
	return ListItemsHandler{catalog: catalog}
}

func (h ListItemsHandler) Handle(ctx context.Context, query ListItemsQuery) ([]lending.Item, error) {
	if query.IsSearch() {
		return h.catalog.SearchItems(ctx, query.Field, query.Term)
	}

	return h.catalog.ListItems(ctx)
}
